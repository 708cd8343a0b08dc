// Package config loads and watches the wtc configuration and carries the
// build information.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Flag names. Config file keys use the same names.
const (
	FlagConfig        = "config"
	FlagInstance      = "instance"
	FlagLookback      = "lookback"
	FlagLimit         = "limit"
	FlagFilter        = "filter"
	FlagUser          = "user"
	FlagPassword      = "password"
	FlagDisableURLs   = "disable-urls"
	FlagWatch         = "watch"
	FlagWatchInterval = "watch-interval"
	FlagTimeout       = "timeout"
	FlagOutput        = "output"
	FlagVerbose       = "verbose"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Default values.
const (
	DefaultLookback      = "-1 days"
	DefaultLimit         = 10
	DefaultFilter        = ".*"
	DefaultWatchInterval = 120
	DefaultTimeout       = 30 * time.Second
)

// Options is the resolved configuration of a wtc run. A value is built once
// by Load and is not modified afterwards; a config reload produces a new one.
type Options struct {
	Instances     StringList    `yaml:"instance"`
	Lookback      string        `yaml:"lookback"`
	Limit         int           `yaml:"limit"`
	Filter        string        `yaml:"filter"`
	User          string        `yaml:"user"`
	Password      string        `yaml:"password"`
	DisableURLs   bool          `yaml:"disable-urls"`
	Watch         bool          `yaml:"watch"`
	WatchInterval int           `yaml:"watch-interval"` // seconds, negative waits for a key only
	Timeout       time.Duration `yaml:"timeout"`
	Output        string        `yaml:"output"`
	Verbose       bool          `yaml:"verbose"`

	// PasswordSet is true when a password was given explicitly, even an
	// empty one.
	PasswordSet bool `yaml:"-"`

	// FilterRE is Filter compiled and anchored at the start of the contact name.
	FilterRE *regexp.Regexp `yaml:"-"`
}

// StringList is a list option that also accepts a single scalar in the
// config file, so `instance: https://icinga.example.com` works.
type StringList []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
}

// Defaults returns Options populated with default values.
func Defaults() *Options {
	return &Options{
		Lookback:      DefaultLookback,
		Limit:         DefaultLimit,
		Filter:        DefaultFilter,
		User:          CurrentUser(),
		WatchInterval: DefaultWatchInterval,
		Timeout:       DefaultTimeout,
		Output:        OutputText,
	}
}

// DefaultPath returns the config file read when --config is not given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "wtc.yml")
}

// CurrentUser returns the login name of the user running the process.
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// Load builds Options from defaults, the YAML file at path and the flags
// explicitly set in fs, in increasing order of precedence. A missing file is
// ignored unless required is true. fs may be nil.
func Load(path string, required bool, fs *pflag.FlagSet) (*Options, error) {
	opts := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, opts); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
			var keys map[string]yaml.Node
			if err := yaml.Unmarshal(data, &keys); err == nil {
				_, opts.PasswordSet = keys[FlagPassword]
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if fs != nil {
		if err := opts.applyFlags(fs); err != nil {
			return nil, fmt.Errorf("read flags: %w", err)
		}
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return opts, nil
}

// applyFlags copies every flag the user set on the command line.
func (o *Options) applyFlags(fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && fs.Changed(name) {
			err = apply()
		}
	}

	set(FlagInstance, func() (e error) { o.Instances, e = fs.GetStringArray(FlagInstance); return })
	set(FlagLookback, func() (e error) { o.Lookback, e = fs.GetString(FlagLookback); return })
	set(FlagLimit, func() (e error) { o.Limit, e = fs.GetInt(FlagLimit); return })
	set(FlagFilter, func() (e error) { o.Filter, e = fs.GetString(FlagFilter); return })
	set(FlagUser, func() (e error) { o.User, e = fs.GetString(FlagUser); return })
	set(FlagPassword, func() (e error) {
		o.Password, e = fs.GetString(FlagPassword)
		o.PasswordSet = true
		return
	})
	set(FlagDisableURLs, func() (e error) { o.DisableURLs, e = fs.GetBool(FlagDisableURLs); return })
	set(FlagWatch, func() (e error) { o.Watch, e = fs.GetBool(FlagWatch); return })
	set(FlagWatchInterval, func() (e error) { o.WatchInterval, e = fs.GetInt(FlagWatchInterval); return })
	set(FlagTimeout, func() (e error) { o.Timeout, e = fs.GetDuration(FlagTimeout); return })
	set(FlagOutput, func() (e error) { o.Output, e = fs.GetString(FlagOutput); return })
	set(FlagVerbose, func() (e error) { o.Verbose, e = fs.GetBool(FlagVerbose); return })

	return err
}

// Validate checks the options for errors and compiles the contact filter.
func (o *Options) Validate() error {
	if len(o.Instances) == 0 {
		return fmt.Errorf("at least one instance is required")
	}
	for i, inst := range o.Instances {
		if inst == "" {
			return fmt.Errorf("instance[%d] is empty", i)
		}
	}
	if o.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", o.Limit)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", o.Timeout)
	}
	switch o.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q (expected text or json)", o.Output)
	}

	re, err := regexp.Compile("^(?:" + o.Filter + ")")
	if err != nil {
		return fmt.Errorf("invalid filter regex %q: %w", o.Filter, err)
	}
	o.FilterRE = re

	return nil
}

// WaitTimeout returns the watch interval as a duration. Negative intervals
// stay negative.
func (o *Options) WaitTimeout() time.Duration {
	return time.Duration(o.WatchInterval) * time.Second
}
