package config

import "time"

// StoryConfig holds crawl settings for one story, or the defaults of every
// story.
type StoryConfig struct {
	// Depth overrides the depth limit. -1 is unlimited.
	Depth *int `yaml:"depth,omitempty"`

	// Random overrides the number of random walks. Zero keeps the setting.
	Random int `yaml:"random,omitempty"`

	// Cookie is sent by the http engine.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers for the http engine.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Delay is the minimum time between two browser actions.
	Delay time.Duration `yaml:"delay,omitempty"`
}

// SiteLocators tell the crawler where stories live and how pages are laid
// out. Empty fields keep the built-in chooseyourstory.com values.
type SiteLocators struct {
	StoryURL        string `yaml:"storyURL,omitempty"`
	TitleSeparator  string `yaml:"titleSeparator,omitempty"`
	TerminalLocator string `yaml:"terminalLocator,omitempty"`
	TerminalMarker  string `yaml:"terminalMarker,omitempty"`
	TextLocator     string `yaml:"textLocator,omitempty"`
	HeadingLocator  string `yaml:"headingLocator,omitempty"`
	ChoiceLocator   string `yaml:"choiceLocator,omitempty"`
}

// BrowserConfig selects and tunes the session backend.
type BrowserConfig struct {
	Engine    string        `yaml:"engine,omitempty"`
	Headless  bool          `yaml:"headless,omitempty"`
	ExecPath  string        `yaml:"execPath,omitempty"`
	UserAgent string        `yaml:"userAgent,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// File is the structure of the .storycrawl configuration file.
type File struct {
	// Defaults apply to every story unless overridden in Stories.
	Defaults StoryConfig `yaml:"defaults,omitempty"`

	// Stories maps story ids to their settings.
	Stories map[string]StoryConfig `yaml:"stories,omitempty"`

	Site    SiteLocators  `yaml:"site,omitempty"`
	Browser BrowserConfig `yaml:"browser,omitempty"`
}

// GetStoryConfig returns the settings for story id merged over the defaults.
func (cf *File) GetStoryConfig(id string) StoryConfig {
	result := cf.Defaults

	sc, ok := cf.Stories[id]
	if !ok {
		return result
	}
	if sc.Depth != nil {
		result.Depth = sc.Depth
	}
	if sc.Random != 0 {
		result.Random = sc.Random
	}
	if sc.Cookie != "" {
		result.Cookie = sc.Cookie
	}
	if sc.Delay != 0 {
		result.Delay = sc.Delay
	}
	if len(sc.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(sc.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range sc.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}
	return result
}
