package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/apptree/internal/update"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "apptree",
	Short: "Text menu navigation for terminals and serial consoles",
	Long: `Apptree shows a hierarchical menu one level at a time and lets the user
move through it with five keys: up, down, select, back and home.

Menus come from TOML or YAML files (or the built-in demo) and can be served
in a terminal UI, over a serial line, or from a Linux input device.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run [menu-file]",
	Short: "Show a menu in the terminal UI",
	Long: `Run opens the menu in a full-screen terminal UI. Without a menu file it
uses the configured menu, offers a picker when .apptree/menus holds several
menus, and falls back to the built-in demo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

var serialCmd = &cobra.Command{
	Use:   "serial [menu-file]",
	Short: "Serve a menu over a serial line or stdin/stdout",
	Long: `Serial repaints the menu as plain text lines after every key press. Each
byte read from the device is one key. With no device the menu is served on
stdin/stdout, switching the terminal to raw mode when it is one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSerial(cmd, args)
	},
}

var evdevCmd = &cobra.Command{
	Use:   "evdev [menu-file]",
	Short: "Drive a menu from a Linux input device",
	Long: `Evdev reads key presses from /dev/input (keypads, encoders, gamepads)
and prints each frame to stdout. Use --list to find the device.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvdev(cmd, args)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [menu-file]",
	Short: "Validate a menu file and print its structure",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd, args)
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade apptree to the latest version",
	Long:  `Downloads the latest release from GitHub and replaces the running binary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runtime.GOOS == "windows" {
			return fmt.Errorf("upgrade command is not supported on Windows, download the latest release manually from GitHub")
		}

		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		defer s.log.Close()
		u, err := newUpdater(s)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Current version: %s (%s install)\n", version, u.Method())
		fmt.Fprintln(out, "Checking for updates...")

		release, err := u.Update(cmd.Context())
		switch {
		case errors.Is(err, update.ErrUpToDate):
			fmt.Fprintln(out, "Already at the latest version.")
			return nil
		case err != nil:
			fmt.Fprintln(cmd.ErrOrStderr(), update.Instructions(u.Method()))
			return fmt.Errorf("upgrade: %w", err)
		}
		fmt.Fprintf(out, "Upgraded to %s.\n", release.Version)
		return nil
	},
}

func init() {
	// Shared flags
	rootCmd.PersistentFlags().String("dir", ".", "Project directory holding .apptree/")
	rootCmd.PersistentFlags().String("config", "", "Config file (default <dir>/.apptree/config.toml)")
	rootCmd.PersistentFlags().Int("frame-height", 0, "Menu rows shown at once (default from config, 19)")
	rootCmd.PersistentFlags().String("line-ending", "", "Line ending: crlf or lf (default from config, crlf)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Log file, - for stderr (default <dir>/.apptree/apptree.log)")

	// Serial command flags
	serialCmd.Flags().StringP("device", "d", "", "Serial tty to serve the menu on (default stdin/stdout)")
	serialCmd.Flags().Int("backlog", 0, "Buffered key presses before input is dropped")
	serialCmd.Flags().String("trace", "", "Write navigation events to this file, - for stderr")
	serialCmd.Flags().Bool("trace-json", false, "Write trace events as JSON Lines")

	// Evdev command flags
	evdevCmd.Flags().StringP("device", "d", "", "Input device, e.g. /dev/input/event0")
	evdevCmd.Flags().Bool("list", false, "List input devices and exit")
	evdevCmd.Flags().Bool("grab", false, "Grab the device so no other program sees its keys")
	evdevCmd.Flags().String("trace", "", "Write navigation events to this file, - for stderr")
	evdevCmd.Flags().Bool("trace-json", false, "Write trace events as JSON Lines")

	// Check command flags
	checkCmd.Flags().String("dump", "", "Print the normalized menu as toml or yaml")
	checkCmd.Flags().Bool("no-update-check", false, "Skip the daily update check")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serialCmd)
	rootCmd.AddCommand(evdevCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(upgradeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
