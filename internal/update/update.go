// Package update checks GitHub releases for newer apptree builds and replaces
// the running binary in place.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/BrandonKowalski/certifiable" // Add CA certificates to the default trust store
	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
)

const (
	repoOwner = "pengelbrecht"
	repoName  = "apptree"

	// DefaultInterval is the minimum time between release checks.
	DefaultInterval = 24 * time.Hour
)

var (
	ErrDevBuild  = errors.New("dev builds cannot be updated")
	ErrNoRelease = errors.New("no releases found")
	ErrUpToDate  = errors.New("already at latest version")
	ErrManaged   = errors.New("binary is managed by a package manager")
)

// InstallMethod represents how apptree was installed.
type InstallMethod int

const (
	// InstallUnknown means the binary path could not be resolved.
	InstallUnknown InstallMethod = iota
	// InstallHomebrew means apptree was installed via Homebrew.
	InstallHomebrew
	// InstallPackage means the system package manager owns the binary.
	InstallPackage
	// InstallDevice means apptree ships on a device image or SD card, where
	// nothing else updates it.
	InstallDevice
	// InstallScript means apptree was installed via shell script or go install.
	InstallScript
)

func (m InstallMethod) String() string {
	switch m {
	case InstallHomebrew:
		return "homebrew"
	case InstallPackage:
		return "package"
	case InstallDevice:
		return "device"
	case InstallScript:
		return "script"
	default:
		return "unknown"
	}
}

// Managed reports whether another tool owns upgrades of the binary.
func (m InstallMethod) Managed() bool {
	return m == InstallHomebrew || m == InstallPackage
}

// devicePrefixes are install roots of handheld and embedded images.
var devicePrefixes = []string{"/mnt/SDCARD/", "/opt/apptree/", "/userdata/"}

func installMethodFor(exe string) InstallMethod {
	if exe == "" {
		return InstallUnknown
	}
	// Homebrew: /opt/homebrew/Cellar/apptree/..., /usr/local/Cellar/apptree/...
	// and /home/linuxbrew/.linuxbrew/...
	if strings.Contains(exe, "/Cellar/") ||
		strings.HasPrefix(exe, "/opt/homebrew/") ||
		strings.HasPrefix(exe, "/usr/local/Homebrew/") ||
		strings.Contains(exe, "linuxbrew") {
		return InstallHomebrew
	}
	for _, p := range devicePrefixes {
		if strings.HasPrefix(exe, p) {
			return InstallDevice
		}
	}
	if strings.HasPrefix(exe, "/usr/bin/") || strings.HasPrefix(exe, "/usr/sbin/") {
		return InstallPackage
	}
	return InstallScript
}

// Release represents information about a release.
type Release struct {
	Version     string
	ReleaseURL  string
	ReleaseDate string
}

// Options configures an Updater. Zero values select the defaults.
type Options struct {
	// Version is the running build's version ("dev" disables updates).
	Version string

	// CacheDir holds update-cache.json (default the user config dir).
	CacheDir string

	// Executable is the binary to replace (default os.Executable).
	Executable string

	// Interval is the minimum time between checks (default 24h).
	Interval time.Duration

	Logger *slog.Logger
}

// Updater checks for and applies releases of one running build.
type Updater struct {
	version  string
	cacheDir string
	exe      string
	interval time.Duration
	log      *slog.Logger

	detect func(ctx context.Context) (*selfupdate.Release, bool, error)
	apply  func(ctx context.Context, rel *selfupdate.Release, exe string) error
	now    func() time.Time
}

// New creates an Updater for the running build.
func New(opts Options) *Updater {
	u := &Updater{
		version:  strings.TrimPrefix(opts.Version, "v"),
		cacheDir: opts.CacheDir,
		exe:      opts.Executable,
		interval: opts.Interval,
		log:      opts.Logger,
		detect:   detectLatest,
		apply:    applyRelease,
		now:      time.Now,
	}
	if u.cacheDir == "" {
		u.cacheDir = defaultCacheDir()
	}
	if u.exe == "" {
		u.exe = executable()
	}
	if u.interval <= 0 {
		u.interval = DefaultInterval
	}
	if u.log == nil {
		u.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return u
}

func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "apptree")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "apptree")
}

func executable() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		return resolved
	}
	return exe
}

func newGitHubUpdater() (*selfupdate.Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: source})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}
	return updater, nil
}

func detectLatest(ctx context.Context) (*selfupdate.Release, bool, error) {
	updater, err := newGitHubUpdater()
	if err != nil {
		return nil, false, err
	}
	latest, found, err := updater.DetectLatest(ctx, selfupdate.NewRepositorySlug(repoOwner, repoName))
	if err != nil {
		return nil, false, fmt.Errorf("failed to detect latest version: %w", err)
	}
	return latest, found, nil
}

func applyRelease(ctx context.Context, rel *selfupdate.Release, exe string) error {
	updater, err := newGitHubUpdater()
	if err != nil {
		return err
	}
	return updater.UpdateTo(ctx, rel, exe)
}

// Method reports how the running binary was installed.
func (u *Updater) Method() InstallMethod {
	return installMethodFor(u.exe)
}

func (u *Updater) devBuild() bool {
	return u.version == "" || u.version == "dev"
}

// Check asks GitHub for the latest release. Dev builds are never checked.
func (u *Updater) Check(ctx context.Context) (*Release, bool, error) {
	if u.devBuild() {
		return nil, false, nil
	}
	latest, found, err := u.detect(ctx)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	release := &Release{
		Version:     latest.Version(),
		ReleaseURL:  latest.URL,
		ReleaseDate: latest.PublishedAt.Format("2006-01-02"),
	}
	return release, isNewerVersion(release.Version, u.version), nil
}

// Update downloads the latest release and replaces the binary. Binaries
// owned by a package manager are left alone with ErrManaged.
func (u *Updater) Update(ctx context.Context) (*Release, error) {
	if method := u.Method(); method.Managed() {
		return nil, fmt.Errorf("%w (%s)", ErrManaged, method)
	}
	if u.devBuild() {
		return nil, ErrDevBuild
	}
	if u.exe == "" {
		return nil, fmt.Errorf("failed to get executable path")
	}

	latest, found, err := u.detect(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoRelease
	}
	if !isNewerVersion(latest.Version(), u.version) {
		return nil, fmt.Errorf("%w (%s)", ErrUpToDate, u.version)
	}

	u.log.Info("updating binary", "from", u.version, "to", latest.Version(), "path", u.exe)
	if err := u.apply(ctx, latest, u.exe); err != nil {
		return nil, fmt.Errorf("failed to update: %w", err)
	}
	u.saveCache(&updateCache{LastCheck: u.now(), LatestVersion: latest.Version()})
	return &Release{Version: latest.Version(), ReleaseURL: latest.URL}, nil
}

// Instructions returns how to update a binary installed by method.
func Instructions(method InstallMethod) string {
	switch method {
	case InstallHomebrew:
		return "Run: brew upgrade pengelbrecht/tap/apptree"
	case InstallPackage:
		return "Update the apptree package with your system package manager"
	case InstallDevice:
		return "Run: apptree upgrade (the device needs network access)\nOr copy a release binary over " + strings.Join(devicePrefixes, " or ")
	case InstallScript:
		return "Run: apptree upgrade\nOr reinstall: go install github.com/pengelbrecht/apptree/cmd/apptree@latest"
	default:
		return "Run: apptree upgrade"
	}
}

// Notice returns an update notice when a newer release exists, checking
// GitHub at most once per interval. Failures are logged and yield "".
func (u *Updater) Notice(ctx context.Context) string {
	if u.devBuild() {
		return ""
	}

	if cache := u.loadCache(); cache != nil && u.now().Sub(cache.LastCheck) < u.interval {
		// The binary may have been upgraded since the cache was written.
		if cache.UpdateAvailable && isNewerVersion(cache.LatestVersion, u.version) {
			return formatUpdateNotice(u.version, cache.LatestVersion, u.Method())
		}
		return ""
	}

	release, hasUpdate, err := u.Check(ctx)
	if err != nil {
		u.log.Warn("update check failed", "err", err)
	}
	cache := &updateCache{LastCheck: u.now(), UpdateAvailable: hasUpdate && err == nil}
	if release != nil {
		cache.LatestVersion = release.Version
	}
	u.saveCache(cache)

	if err != nil || !hasUpdate {
		return ""
	}
	u.log.Info("update available", "current", u.version, "latest", release.Version)
	return formatUpdateNotice(u.version, release.Version, u.Method())
}

// updateCache stores the last update check result.
type updateCache struct {
	LastCheck       time.Time `json:"last_check"`
	LatestVersion   string    `json:"latest_version,omitempty"`
	UpdateAvailable bool      `json:"update_available"`
}

func (u *Updater) cachePath() string {
	if u.cacheDir == "" {
		return ""
	}
	return filepath.Join(u.cacheDir, "update-cache.json")
}

func (u *Updater) loadCache() *updateCache {
	path := u.cachePath()
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			u.log.Debug("reading update cache", "path", path, "err", err)
		}
		return nil
	}
	var cache updateCache
	if err := json.Unmarshal(data, &cache); err != nil {
		u.log.Debug("ignoring corrupt update cache", "path", path, "err", err)
		return nil
	}
	return &cache
}

func (u *Updater) saveCache(cache *updateCache) {
	path := u.cachePath()
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		u.log.Debug("creating update cache dir", "err", err)
		return
	}
	data, err := json.Marshal(cache)
	if err != nil {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		u.log.Debug("writing update cache", "path", path, "err", err)
	}
}

// isNewerVersion reports whether version a is newer than b. Unparseable
// versions are never newer.
func isNewerVersion(a, b string) bool {
	va, err := semver.NewVersion(a)
	if err != nil {
		return false
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return false
	}
	return va.GreaterThan(vb)
}

func formatUpdateNotice(current, latest string, method InstallMethod) string {
	var cmd string
	switch method {
	case InstallHomebrew:
		cmd = "brew upgrade pengelbrecht/tap/apptree"
	case InstallPackage:
		cmd = "your package manager"
	default:
		cmd = "apptree upgrade"
	}
	return fmt.Sprintf("Update available: %s -> %s (run: %s)", current, latest, cmd)
}
