package main

import "github.com/pengelbrecht/apptree/internal/menufile"

// demoMenu is shown when no menu file is configured. It exercises every
// selection mode and the built-in actions.
func demoMenu() *menufile.Menu {
	return &menufile.Menu{
		Title: "Main Menu",
		Items: []menufile.Item{
			{
				Title: "Serial Port",
				Info:  "Line settings for the console port",
				Items: []menufile.Item{
					{
						Title: "Baud Rate",
						Info:  "One rate at a time",
						Mode:  "exclusive",
						Items: []menufile.Item{
							{Title: "9600", Action: "log"},
							{Title: "19200", Action: "log"},
							{Title: "57600", Action: "log"},
							{Title: "115200", Action: "log", Selected: true},
						},
					},
					{
						Title: "Flow Control",
						Mode:  "exclusive",
						Items: []menufile.Item{
							{Title: "None", Action: "log", Selected: true},
							{Title: "RTS/CTS", Action: "log"},
							{Title: "XON/XOFF", Action: "log"},
						},
					},
					{Title: "Local Echo", Info: "No action bound: selecting does nothing"},
				},
			},
			{
				Title: "Display",
				Info:  "Toggle display features",
				Mode:  "multi",
				Items: []menufile.Item{
					{Title: "Backlight", Action: "log", Selected: true},
					{Title: "Night Mode", Action: "log"},
					{Title: "Show Clock", Action: "log"},
				},
			},
			{
				Title: "Diagnostics",
				Info:  "Self tests",
				Items: []menufile.Item{
					{Title: "Run Memory Test", Info: "Logs the request", Action: "log"},
					{Title: "Run Key Test", Info: "Logs the request", Action: "log"},
					{Title: "Blink LEDs", Info: "Logs the request", Action: "log"},
				},
			},
			{Title: "About", Info: "apptree " + version},
			{Title: "Quit", Info: "Leave the menu", Action: "quit"},
		},
	}
}
