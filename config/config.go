// Package config provides configuration loading for wikiterm using TOML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Display settings
type Display struct {
	Theme                string `toml:"theme"`
	ShowStatusBar        bool   `toml:"showStatusBar"`
	ShowScrollPercentage bool   `toml:"showScrollPercentage"`
	DefaultWidth         int    `toml:"defaultWidth"` // width when printing with -p
}

// Fetcher settings for the encyclopedia API
type Fetcher struct {
	Language       string `toml:"language"` // wiki language edition, e.g. "en"
	UserAgent      string `toml:"userAgent"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
	BaseURL        string `toml:"baseURL"` // API endpoint, overrides https://<language>.wikipedia.org/w/api.php
}

// Timeout returns the request timeout.
func (f Fetcher) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Cache settings for the local article store
type Cache struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"` // empty = user cache dir
	MaxAgeHours int    `toml:"maxAgeHours"`
}

// MaxAge returns how long a cached article stays fresh.
func (c Cache) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeHours) * time.Hour
}

// History settings
type History struct {
	Capacity int `toml:"capacity"` // 0 = unbounded
}

// Session settings
type Session struct {
	RestoreSession bool `toml:"restoreSession"`
}

// Log settings. The terminal is in raw mode, so logs go to a file.
type Log struct {
	Level string `toml:"level"` // debug, info, warn, error
	Path  string `toml:"path"`  // empty = user cache dir
}

// SlogLevel returns the configured level, defaulting to info.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Keybindings configuration. Each binding is one or more key sequences
// separated by spaces, for example "j <down>". A sequence is a run of
// characters and named keys such as <up>, <pgdn>, <enter>, <esc>, <tab>,
// <s-tab>, <bs> and <c-x> for control keys.
type Keybindings struct {
	// Scrolling
	ScrollUp     string `toml:"scrollUp"`
	ScrollDown   string `toml:"scrollDown"`
	HalfPageUp   string `toml:"halfPageUp"`
	HalfPageDown string `toml:"halfPageDown"`
	PageUp       string `toml:"pageUp"`
	PageDown     string `toml:"pageDown"`
	Top          string `toml:"top"`
	Bottom       string `toml:"bottom"`

	// Links
	NextLink     string `toml:"nextLink"`
	PreviousLink string `toml:"previousLink"`
	FirstLink    string `toml:"firstLink"`
	LastLink     string `toml:"lastLink"`
	ActivateLink string `toml:"activateLink"`

	// Search
	StartSearch    string `toml:"startSearch"`
	SearchNext     string `toml:"searchNext"`
	SearchPrevious string `toml:"searchPrevious"`

	// History & other
	Back         string `toml:"back"`
	Forward      string `toml:"forward"`
	Contents     string `toml:"contents"`
	AddFavourite string `toml:"addFavourite"`
	Favourites   string `toml:"favourites"`
	ToggleTheme  string `toml:"toggleTheme"`
	Quit         string `toml:"quit"`
}

// Action names, as used in the [keybindings] table.
const (
	ActionScrollUp       = "scrollUp"
	ActionScrollDown     = "scrollDown"
	ActionHalfPageUp     = "halfPageUp"
	ActionHalfPageDown   = "halfPageDown"
	ActionPageUp         = "pageUp"
	ActionPageDown       = "pageDown"
	ActionTop            = "top"
	ActionBottom         = "bottom"
	ActionNextLink       = "nextLink"
	ActionPreviousLink   = "previousLink"
	ActionFirstLink      = "firstLink"
	ActionLastLink       = "lastLink"
	ActionActivateLink   = "activateLink"
	ActionStartSearch    = "startSearch"
	ActionSearchNext     = "searchNext"
	ActionSearchPrevious = "searchPrevious"
	ActionBack           = "back"
	ActionForward        = "forward"
	ActionContents       = "contents"
	ActionAddFavourite   = "addFavourite"
	ActionFavourites     = "favourites"
	ActionToggleTheme    = "toggleTheme"
	ActionQuit           = "quit"
)

// Actions returns every action with its binding, in a fixed order.
func (k Keybindings) Actions() [][2]string {
	return [][2]string{
		{ActionScrollUp, k.ScrollUp},
		{ActionScrollDown, k.ScrollDown},
		{ActionHalfPageUp, k.HalfPageUp},
		{ActionHalfPageDown, k.HalfPageDown},
		{ActionPageUp, k.PageUp},
		{ActionPageDown, k.PageDown},
		{ActionTop, k.Top},
		{ActionBottom, k.Bottom},
		{ActionNextLink, k.NextLink},
		{ActionPreviousLink, k.PreviousLink},
		{ActionFirstLink, k.FirstLink},
		{ActionLastLink, k.LastLink},
		{ActionActivateLink, k.ActivateLink},
		{ActionStartSearch, k.StartSearch},
		{ActionSearchNext, k.SearchNext},
		{ActionSearchPrevious, k.SearchPrevious},
		{ActionBack, k.Back},
		{ActionForward, k.Forward},
		{ActionContents, k.Contents},
		{ActionAddFavourite, k.AddFavourite},
		{ActionFavourites, k.Favourites},
		{ActionToggleTheme, k.ToggleTheme},
		{ActionQuit, k.Quit},
	}
}

// Config is the main configuration struct
type Config struct {
	Display     Display     `toml:"display"`
	Fetcher     Fetcher     `toml:"fetcher"`
	Cache       Cache       `toml:"cache"`
	History     History     `toml:"history"`
	Session     Session     `toml:"session"`
	Log         Log         `toml:"log"`
	Keybindings Keybindings `toml:"keybindings"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Display: Display{
			Theme:                "default-dark",
			ShowStatusBar:        true,
			ShowScrollPercentage: true,
			DefaultWidth:         80,
		},
		Fetcher: Fetcher{
			Language:       "en",
			UserAgent:      "wikiterm/1.0 (terminal encyclopedia reader)",
			TimeoutSeconds: 30,
		},
		Cache: Cache{
			Enabled:     true,
			MaxAgeHours: 24,
		},
		History: History{
			Capacity: 100,
		},
		Session: Session{
			RestoreSession: true,
		},
		Log: Log{
			Level: "info",
		},
		Keybindings: Keybindings{
			ScrollUp:       "k <up>",
			ScrollDown:     "j <down>",
			HalfPageUp:     "u",
			HalfPageDown:   "d",
			PageUp:         "<pgup> b",
			PageDown:       "<pgdn> <space>",
			Top:            "gg <home>",
			Bottom:         "G <end>",
			NextLink:       "<tab> l",
			PreviousLink:   "<s-tab> h",
			FirstLink:      "H",
			LastLink:       "L",
			ActivateLink:   "<enter>",
			StartSearch:    "/",
			SearchNext:     "n",
			SearchPrevious: "N",
			Back:           "<bs> <c-o>",
			Forward:        "f",
			Contents:       "t",
			AddFavourite:   "m",
			Favourites:     "'",
			ToggleTheme:    "z",
			Quit:           "q",
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wikiterm"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// cacheDir returns the directory for the article cache and log file.
func cacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wikiterm"), nil
}

// CachePath returns the article cache database path.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "articles.db"), nil
}

// LogPath returns the log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wikiterm.log"), nil
}

// Load loads configuration, layering user config on top of defaults.
// Returns the default config if no user config exists.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return Default(), nil // Return defaults if we can't determine path
	}
	return LoadFile(configPath)
}

// LoadFile loads the config at path over the defaults. A missing file
// yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	userCfg, md, err := loadFromTOML(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return merge(cfg, userCfg, md), nil
}

// loadFromTOML loads a TOML config file and returns the config along with
// the metadata recording which keys were present.
func loadFromTOML(path string) (*Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, md, fmt.Errorf("parsing config TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, md, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return &cfg, md, nil
}

// merge layers user config on top of defaults.
// Strings and numbers override when non-zero; booleans override when the
// key is present in the file.
func merge(defaults, user *Config, md toml.MetaData) *Config {
	result := *defaults

	// Display
	if user.Display.Theme != "" {
		result.Display.Theme = user.Display.Theme
	}
	mergeBool(&result.Display.ShowStatusBar, user.Display.ShowStatusBar, md, "display", "showStatusBar")
	mergeBool(&result.Display.ShowScrollPercentage, user.Display.ShowScrollPercentage, md, "display", "showScrollPercentage")
	if user.Display.DefaultWidth > 0 {
		result.Display.DefaultWidth = user.Display.DefaultWidth
	}

	// Fetcher
	if user.Fetcher.Language != "" {
		result.Fetcher.Language = user.Fetcher.Language
	}
	if user.Fetcher.UserAgent != "" {
		result.Fetcher.UserAgent = user.Fetcher.UserAgent
	}
	if user.Fetcher.TimeoutSeconds > 0 {
		result.Fetcher.TimeoutSeconds = user.Fetcher.TimeoutSeconds
	}
	if user.Fetcher.BaseURL != "" {
		result.Fetcher.BaseURL = user.Fetcher.BaseURL
	}

	// Cache
	mergeBool(&result.Cache.Enabled, user.Cache.Enabled, md, "cache", "enabled")
	if user.Cache.Path != "" {
		result.Cache.Path = user.Cache.Path
	}
	if user.Cache.MaxAgeHours > 0 {
		result.Cache.MaxAgeHours = user.Cache.MaxAgeHours
	}

	// History
	if md.IsDefined("history", "capacity") {
		result.History.Capacity = max(user.History.Capacity, 0)
	}

	// Session
	mergeBool(&result.Session.RestoreSession, user.Session.RestoreSession, md, "session", "restoreSession")

	// Log
	if user.Log.Level != "" {
		result.Log.Level = user.Log.Level
	}
	if user.Log.Path != "" {
		result.Log.Path = user.Log.Path
	}

	// Keybindings - override each if set
	kb, ukb := &result.Keybindings, user.Keybindings
	mergeKeybinding(&kb.ScrollUp, ukb.ScrollUp)
	mergeKeybinding(&kb.ScrollDown, ukb.ScrollDown)
	mergeKeybinding(&kb.HalfPageUp, ukb.HalfPageUp)
	mergeKeybinding(&kb.HalfPageDown, ukb.HalfPageDown)
	mergeKeybinding(&kb.PageUp, ukb.PageUp)
	mergeKeybinding(&kb.PageDown, ukb.PageDown)
	mergeKeybinding(&kb.Top, ukb.Top)
	mergeKeybinding(&kb.Bottom, ukb.Bottom)
	mergeKeybinding(&kb.NextLink, ukb.NextLink)
	mergeKeybinding(&kb.PreviousLink, ukb.PreviousLink)
	mergeKeybinding(&kb.FirstLink, ukb.FirstLink)
	mergeKeybinding(&kb.LastLink, ukb.LastLink)
	mergeKeybinding(&kb.ActivateLink, ukb.ActivateLink)
	mergeKeybinding(&kb.StartSearch, ukb.StartSearch)
	mergeKeybinding(&kb.SearchNext, ukb.SearchNext)
	mergeKeybinding(&kb.SearchPrevious, ukb.SearchPrevious)
	mergeKeybinding(&kb.Back, ukb.Back)
	mergeKeybinding(&kb.Forward, ukb.Forward)
	mergeKeybinding(&kb.Contents, ukb.Contents)
	mergeKeybinding(&kb.AddFavourite, ukb.AddFavourite)
	mergeKeybinding(&kb.Favourites, ukb.Favourites)
	mergeKeybinding(&kb.ToggleTheme, ukb.ToggleTheme)
	mergeKeybinding(&kb.Quit, ukb.Quit)

	return &result
}

func mergeBool(dst *bool, src bool, md toml.MetaData, key ...string) {
	if md.IsDefined(key...) {
		*dst = src
	}
}

func mergeKeybinding(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for --init-config to generate a user config file.
func DefaultTOML() string {
	return `# wikiterm configuration
# Save to ~/.config/wikiterm/config.toml and customize
# Only include settings you want to change from defaults

# Display settings
[display]
theme = "default-dark"        # see --themes for the built-in list
showStatusBar = true
showScrollPercentage = true   # Show scroll percentage in status bar
defaultWidth = 80             # Width used by -p when not in a terminal

# Encyclopedia API settings
[fetcher]
language = "en"               # Wikipedia language edition
userAgent = "wikiterm/1.0 (terminal encyclopedia reader)"
timeoutSeconds = 30
# baseURL = "https://en.wikipedia.org/w/api.php"

# Local article cache
[cache]
enabled = true
maxAgeHours = 24              # Refetch articles older than this
# path = "~/.cache/wikiterm/articles.db"

[history]
capacity = 100                # Pages kept per direction, 0 = unbounded

[session]
restoreSession = true         # Reopen the last page on startup

[log]
level = "info"                # debug, info, warn, error
# path = "~/.cache/wikiterm/wikiterm.log"

# Keybindings - space separated alternatives, <name> for special keys
[keybindings]
scrollUp = "k <up>"
scrollDown = "j <down>"
halfPageUp = "u"
halfPageDown = "d"
pageUp = "<pgup> b"
pageDown = "<pgdn> <space>"
top = "gg <home>"
bottom = "G <end>"
nextLink = "<tab> l"
previousLink = "<s-tab> h"
firstLink = "H"
lastLink = "L"
activateLink = "<enter>"
startSearch = "/"
searchNext = "n"
searchPrevious = "N"
back = "<bs> <c-o>"
forward = "f"
contents = "t"
addFavourite = "m"
favourites = "'"
toggleTheme = "z"
quit = "q"
`
}
