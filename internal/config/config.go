package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/storycrawl/internal/browser"
	"github.com/nao1215/storycrawl/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "storycrawl"

	// DefaultDepth means no depth limit.
	DefaultDepth = -1

	// DefaultTimeout bounds each browser action.
	DefaultTimeout = browser.DefaultTimeout

	// DefaultMaxPageSize is the largest page the http engine reads.
	DefaultMaxPageSize = browser.DefaultMaxBodySize

	// DefaultEngine drives a real browser, like the site expects.
	DefaultEngine = EngineChrome
)

// Engines that can drive a session.
const (
	EngineChrome = "chrome"
	EngineHTTP   = "http"
	EngineReplay = "replay"
)

// Config holds the options of one crawl invocation.
type Config struct {
	// StoryIDs are the stories to traverse, in order.
	StoryIDs []string

	// Depth limits the number of choices from the root. Negative is unlimited.
	Depth int

	// Output is the JSON file the forest is written to.
	Output string

	// Update keeps the stories already in Output and only adds new ids.
	Update bool

	// Headless hides the Chrome window.
	Headless bool

	// RandomWalks switches to random mode with this many walks per story.
	// Zero crawls exhaustively.
	RandomWalks int

	// Seed fixes the random walks. Only used when HasSeed is set.
	Seed    uint64
	HasSeed bool

	// Engine selects the session backend: chrome, http or replay.
	Engine string

	// ReplayFile is the story file served by the replay engine.
	ReplayFile string

	// ExecPath is the Chrome binary. Empty lets chromedp find one.
	ExecPath string

	// UserAgent overrides the browser user agent.
	UserAgent string

	// Timeout bounds every browser action.
	Timeout time.Duration

	// Delay is the minimum time between two browser actions.
	Delay time.Duration

	// MaxPageSize is the largest page, in bytes, the http engine accepts.
	MaxPageSize int64

	// Cookie and Headers are sent by the http engine.
	Cookie  string
	Headers map[string]string

	// Site holds the story URL and page locators.
	Site SiteLocators

	// Verbose enables debug logging; Quiet hides the status line.
	Verbose bool
	Quiet   bool

	// ConfigFilePath is the explicit --config path.
	ConfigFilePath string

	// File is the loaded configuration file, if any.
	File *File

	// JSONReport and MarkdownReport select the summary format.
	// They are mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile receives the summary instead of stdout.
	ReportFile string

	// DBDir holds the crawl history database.
	DBDir string

	// SaveToDB records every crawled story in the history.
	SaveToDB bool

	// SkipRecent reuses a stored crawl younger than this instead of
	// traversing the story again. Zero disables it.
	SkipRecent time.Duration
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Depth:       DefaultDepth,
		Engine:      DefaultEngine,
		Timeout:     DefaultTimeout,
		MaxPageSize: DefaultMaxPageSize,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory, where the history database lives.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate returns the first invalid setting.
// Valid story ids are rewritten in canonical form ("07" becomes "7").
func (c *Config) Validate() error {
	if len(c.StoryIDs) == 0 {
		return ErrNoStoryID
	}
	for i, id := range c.StoryIDs {
		n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("%w: %q", ErrInvalidStoryID, id)
		}
		c.StoryIDs[i] = strconv.FormatUint(n, 10)
	}
	if c.Output == "" {
		return ErrNoOutput
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.RandomWalks < 0 {
		return ErrInvalidRandomCount
	}
	if c.SkipRecent < 0 {
		return ErrInvalidSkipRecent
	}
	if c.MaxPageSize <= 0 {
		return ErrInvalidMaxPageSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	switch c.Engine {
	case EngineChrome, EngineHTTP:
	case EngineReplay:
		if c.ReplayFile == "" {
			return ErrReplayFileRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, c.Engine)
	}
	return nil
}

// Plan returns the depth and number of random walks for story id, with
// the story's entry in the configuration file taking precedence.
func (c *Config) Plan(id string) (depth, walks int) {
	depth, walks = c.Depth, c.RandomWalks
	if c.File == nil {
		return depth, walks
	}
	sc, ok := c.File.Stories[id]
	if !ok {
		sc, ok = c.findStory(id)
	}
	if !ok {
		return depth, walks
	}
	if sc.Depth != nil {
		depth = *sc.Depth
	}
	if sc.Random != 0 {
		walks = sc.Random
	}
	return depth, walks
}

// findStory looks up a story entry whose key names the same story as id.
func (c *Config) findStory(id string) (StoryConfig, bool) {
	id = model.CanonicalID(id)
	for key, sc := range c.File.Stories {
		if model.CanonicalID(key) == id {
			return sc, true
		}
	}
	return StoryConfig{}, false
}

// ApplyFile copies settings from f into c. A setting is skipped when
// explicit reports that its flag was given on the command line.
func (c *Config) ApplyFile(f *File, explicit func(flag string) bool) {
	if f == nil {
		return
	}
	c.File = f

	d := f.Defaults
	if d.Depth != nil && !explicit("depth") {
		c.Depth = *d.Depth
	}
	if d.Random != 0 && !explicit("random") {
		c.RandomWalks = d.Random
	}
	if d.Delay != 0 && !explicit("delay") {
		c.Delay = d.Delay
	}
	if d.Cookie != "" {
		c.Cookie = d.Cookie
	}
	if len(d.Headers) > 0 {
		c.Headers = d.Headers
	}

	b := f.Browser
	if b.Engine != "" && !explicit("engine") {
		c.Engine = b.Engine
	}
	if b.Headless && !explicit("headless") {
		c.Headless = true
	}
	if b.ExecPath != "" {
		c.ExecPath = b.ExecPath
	}
	if b.UserAgent != "" {
		c.UserAgent = b.UserAgent
	}
	if b.Timeout != 0 && !explicit("timeout") {
		c.Timeout = b.Timeout
	}

	c.Site = f.Site
}
