package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("wtc", pflag.ContinueOnError)
	fs.StringArrayP(FlagInstance, "i", nil, "")
	fs.StringP(FlagLookback, "l", DefaultLookback, "")
	fs.Int(FlagLimit, DefaultLimit, "")
	fs.String(FlagFilter, DefaultFilter, "")
	fs.StringP(FlagUser, "u", "", "")
	fs.StringP(FlagPassword, "p", "", "")
	fs.Bool(FlagDisableURLs, false, "")
	fs.BoolP(FlagWatch, "w", false, "")
	fs.Int(FlagWatchInterval, DefaultWatchInterval, "")
	fs.Duration(FlagTimeout, DefaultTimeout, "")
	fs.StringP(FlagOutput, "o", OutputText, "")
	fs.BoolP(FlagVerbose, "v", false, "")
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wtc.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
instance:
  - https://icinga-a.example.com/icingaweb2
  - https://icinga-b.example.com/icingaweb2
lookback: "-2 hours"
limit: 25
filter: "oncall"
user: nagios
password: secret
disable-urls: true
watch: true
watch-interval: 30
timeout: 5s
`)

	opts, err := Load(path, true, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(opts.Instances) != 2 {
		t.Fatalf("len(Instances) = %d, want 2", len(opts.Instances))
	}
	if opts.Instances[1] != "https://icinga-b.example.com/icingaweb2" {
		t.Errorf("Instances[1] = %q", opts.Instances[1])
	}
	if opts.Lookback != "-2 hours" {
		t.Errorf("Lookback = %q, want '-2 hours'", opts.Lookback)
	}
	if opts.Limit != 25 {
		t.Errorf("Limit = %d, want 25", opts.Limit)
	}
	if opts.User != "nagios" || opts.Password != "secret" {
		t.Errorf("User/Password = %q/%q", opts.User, opts.Password)
	}
	if !opts.DisableURLs || !opts.Watch {
		t.Errorf("DisableURLs = %v, Watch = %v, want both true", opts.DisableURLs, opts.Watch)
	}
	if opts.WatchInterval != 30 {
		t.Errorf("WatchInterval = %d, want 30", opts.WatchInterval)
	}
	if opts.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", opts.Timeout)
	}
	if opts.FilterRE == nil || !opts.FilterRE.MatchString("oncall-team") {
		t.Error("FilterRE should match 'oncall-team'")
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "instance: [https://icinga.example.com]\n")

	opts, err := Load(path, true, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if opts.Lookback != DefaultLookback {
		t.Errorf("Lookback = %q, want %q", opts.Lookback, DefaultLookback)
	}
	if opts.Limit != DefaultLimit {
		t.Errorf("Limit = %d, want %d", opts.Limit, DefaultLimit)
	}
	if opts.WatchInterval != DefaultWatchInterval {
		t.Errorf("WatchInterval = %d, want %d", opts.WatchInterval, DefaultWatchInterval)
	}
	if opts.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", opts.Timeout, DefaultTimeout)
	}
	if opts.Output != OutputText {
		t.Errorf("Output = %q, want %q", opts.Output, OutputText)
	}
	if opts.User != CurrentUser() {
		t.Errorf("User = %q, want %q", opts.User, CurrentUser())
	}
	if opts.Password != "" {
		t.Errorf("Password = %q, want empty", opts.Password)
	}
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
instance: [https://from-file.example.com]
limit: 25
lookback: "-2 hours"
`)

	fs := newFlagSet()
	if err := fs.Parse([]string{"-i", "https://a.example.com", "-i", "https://b.example.com", "--limit", "3"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	opts, err := Load(path, true, fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(opts.Instances) != 2 || opts.Instances[0] != "https://a.example.com" {
		t.Errorf("Instances = %v, want flag values", opts.Instances)
	}
	if opts.Limit != 3 {
		t.Errorf("Limit = %d, want 3", opts.Limit)
	}
	// Not set on the command line, so the file value stays.
	if opts.Lookback != "-2 hours" {
		t.Errorf("Lookback = %q, want '-2 hours'", opts.Lookback)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yml")

	fs := newFlagSet()
	if err := fs.Parse([]string{"-i", "https://a.example.com"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, err := Load(missing, false, fs); err != nil {
		t.Errorf("optional missing file: unexpected error %v", err)
	}
	if _, err := Load(missing, true, fs); err == nil {
		t.Error("required missing file: expected error")
	}
}

func TestLoadInstanceForms(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		want    []string
		wantErr string
	}{
		{
			name:   "single scalar",
			config: "instance: https://icinga.example.com",
			want:   []string{"https://icinga.example.com"},
		},
		{
			name:   "flow sequence",
			config: "instance: [https://a.example.com, https://b.example.com]",
			want:   []string{"https://a.example.com", "https://b.example.com"},
		},
		{
			name:   "block sequence",
			config: "instance:\n  - https://a.example.com\n",
			want:   []string{"https://a.example.com"},
		},
		{
			name:    "mapping",
			config:  "instance: {url: https://a.example.com}",
			wantErr: "expected a string or a list of strings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := Load(writeConfig(t, tt.config), true, nil)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if strings.Join(opts.Instances, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Instances = %v, want %v", opts.Instances, tt.want)
			}
		})
	}
}

func TestLoadPasswordSet(t *testing.T) {
	tests := []struct {
		name   string
		config string
		args   []string
		want   bool
	}{
		{
			name:   "not given",
			config: "instance: [https://x]",
			want:   false,
		},
		{
			name:   "empty flag",
			config: "instance: [https://x]",
			args:   []string{"--password", ""},
			want:   true,
		},
		{
			name:   "empty in file",
			config: "instance: [https://x]\npassword: ''",
			want:   true,
		},
		{
			name:   "non-empty in file",
			config: "instance: [https://x]\npassword: secret",
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFlagSet()
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			opts, err := Load(writeConfig(t, tt.config), true, fs)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if opts.PasswordSet != tt.want {
				t.Errorf("PasswordSet = %v, want %v", opts.PasswordSet, tt.want)
			}
		})
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "no instances",
			config:  "limit: 5",
			wantErr: "at least one instance is required",
		},
		{
			name:    "empty instance",
			config:  "instance: ['']",
			wantErr: "instance[0] is empty",
		},
		{
			name:    "invalid regex",
			config:  "instance: [https://x]\nfilter: '(unclosed'",
			wantErr: "invalid filter regex",
		},
		{
			name:    "negative limit",
			config:  "instance: [https://x]\nlimit: -1",
			wantErr: "limit must not be negative",
		},
		{
			name:    "unknown output",
			config:  "instance: [https://x]\noutput: xml",
			wantErr: "unknown output format",
		},
		{
			name:    "malformed yaml",
			config:  "instance: [",
			wantErr: "parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.config)
			_, err := Load(path, true, nil)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestFilterAnchoredAtStart(t *testing.T) {
	tests := []struct {
		filter  string
		contact string
		want    bool
	}{
		{".*", "anyone", true},
		{".*", "", true},
		{"alice", "alice", true},
		{"alice", "alice-oncall", true},
		{"alice", "bob-alice", false},
		{"ali|bob", "bob", true},
	}

	for _, tt := range tests {
		t.Run(tt.filter+"/"+tt.contact, func(t *testing.T) {
			opts := &Options{Instances: []string{"https://x"}, Filter: tt.filter, Output: OutputText}
			if err := opts.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if got := opts.FilterRE.MatchString(tt.contact); got != tt.want {
				t.Errorf("match(%q, %q) = %v, want %v", tt.filter, tt.contact, got, tt.want)
			}
		})
	}
}

func TestWaitTimeout(t *testing.T) {
	if got := (&Options{WatchInterval: 120}).WaitTimeout(); got != 2*time.Minute {
		t.Errorf("WaitTimeout() = %v, want 2m", got)
	}
	if got := (&Options{WatchInterval: -1}).WaitTimeout(); got >= 0 {
		t.Errorf("WaitTimeout() = %v, want negative", got)
	}
}
