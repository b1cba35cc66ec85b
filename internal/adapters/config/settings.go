// Package config loads amxctl settings from amxctrl.toml and the
// environment, and writes the default settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "amxctrl"
	configType = "toml"
	envPrefix  = "AMXCTL"

	DefaultAdminURL          = "http://localhost:8180/amxadministrator"
	DefaultAdminUser         = "root"
	DefaultAdminPassword     = "t"
	DefaultBPMURL            = "http://localhost:8180"
	DefaultBPMUser           = "tibco-admin"
	DefaultBPMPassword       = "secret"
	DefaultEnvironmentPrefix = "BPME"
	DefaultPollInterval      = 30
	adminContextPath         = "/amxadministrator"
)

type Settings struct {
	Admin AdminSettings `toml:"admin" mapstructure:"admin"`
	BPM   BPMSettings   `toml:"bpm" mapstructure:"bpm"`
	Node  NodeSettings  `toml:"node" mapstructure:"node"`
	Log   LogSettings   `toml:"log" mapstructure:"log"`
	Poll  PollSettings  `toml:"poll" mapstructure:"poll"`
}

// AdminSettings locates the administrator console. Password is base64
// obfuscated; PasswordRef, when set, names a secret store entry instead.
type AdminSettings struct {
	URL         string `toml:"url" mapstructure:"url"`
	BaseURL     string `toml:"base_url,omitempty" mapstructure:"base_url"`
	User        string `toml:"user" mapstructure:"user"`
	Password    string `toml:"password" mapstructure:"password"`
	PasswordRef string `toml:"password_ref,omitempty" mapstructure:"password_ref"`
}

// HostURL is the server root used by the basic authentication endpoint.
func (a AdminSettings) HostURL() string {
	if a.BaseURL != "" {
		return strings.TrimRight(a.BaseURL, "/")
	}
	return strings.TrimSuffix(strings.TrimRight(a.URL, "/"), adminContextPath)
}

type BPMSettings struct {
	URL               string `toml:"url" mapstructure:"url"`
	User              string `toml:"user" mapstructure:"user"`
	Password          string `toml:"password" mapstructure:"password"`
	PasswordRef       string `toml:"password_ref,omitempty" mapstructure:"password_ref"`
	EnvironmentPrefix string `toml:"environment_prefix" mapstructure:"environment_prefix"`
	HaltedQuery       string `toml:"halted_query,omitempty" mapstructure:"halted_query"`
}

type NodeSettings struct {
	Filter string `toml:"filter,omitempty" mapstructure:"filter"`
}

type LogSettings struct {
	Dir string `toml:"dir" mapstructure:"dir"`
}

type PollSettings struct {
	Interval int `toml:"interval" mapstructure:"interval"`
}

func (p PollSettings) Duration() time.Duration {
	if p.Interval <= 0 {
		return DefaultPollInterval * time.Second
	}
	return time.Duration(p.Interval) * time.Second
}

// Defaults are the settings used when no file is found.
func Defaults() Settings {
	return Settings{
		Admin: AdminSettings{
			URL:      DefaultAdminURL,
			User:     DefaultAdminUser,
			Password: Encode(DefaultAdminPassword),
		},
		BPM: BPMSettings{
			URL:               DefaultBPMURL,
			User:              DefaultBPMUser,
			Password:          Encode(DefaultBPMPassword),
			EnvironmentPrefix: DefaultEnvironmentPrefix,
		},
		Log:  LogSettings{Dir: "."},
		Poll: PollSettings{Interval: DefaultPollInterval},
	}
}

// Loaded is the outcome of Load. File is empty when defaults were used.
type Loaded struct {
	Settings Settings
	File     string
}

// Load reads explicit when given, otherwise the first amxctrl.toml found in
// ./cfg, ../cfg, the working directory and ~/.amxctl. AMXCTL_* environment
// variables override file values.
func Load(cfg *viper.Viper, explicit string) (Loaded, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	setDefaults(cfg, Defaults())
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if explicit != "" {
		cfg.SetConfigFile(explicit)
	} else {
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		for _, dir := range SearchPaths() {
			cfg.AddConfigPath(dir)
		}
	}

	err := cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &configNotFound) {
			return Loaded{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var settings Settings
	if err := cfg.Unmarshal(&settings); err != nil {
		return Loaded{}, fmt.Errorf("decode settings: %w", err)
	}

	return Loaded{Settings: settings, File: cfg.ConfigFileUsed()}, nil
}

func SearchPaths() []string {
	paths := []string{filepath.Join(".", "cfg"), filepath.Join("..", "cfg"), "."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".amxctl"))
	}
	return paths
}

func setDefaults(cfg *viper.Viper, s Settings) {
	cfg.SetDefault("admin.url", s.Admin.URL)
	cfg.SetDefault("admin.base_url", s.Admin.BaseURL)
	cfg.SetDefault("admin.user", s.Admin.User)
	cfg.SetDefault("admin.password", s.Admin.Password)
	cfg.SetDefault("admin.password_ref", s.Admin.PasswordRef)
	cfg.SetDefault("bpm.url", s.BPM.URL)
	cfg.SetDefault("bpm.user", s.BPM.User)
	cfg.SetDefault("bpm.password", s.BPM.Password)
	cfg.SetDefault("bpm.password_ref", s.BPM.PasswordRef)
	cfg.SetDefault("bpm.environment_prefix", s.BPM.EnvironmentPrefix)
	cfg.SetDefault("bpm.halted_query", s.BPM.HaltedQuery)
	cfg.SetDefault("node.filter", s.Node.Filter)
	cfg.SetDefault("log.dir", s.Log.Dir)
	cfg.SetDefault("poll.interval", s.Poll.Interval)
}

// Masked returns a copy safe to print.
func (s Settings) Masked() Settings {
	masked := s
	if masked.Admin.Password != "" {
		masked.Admin.Password = maskedValue
	}
	if masked.BPM.Password != "" {
		masked.BPM.Password = maskedValue
	}
	return masked
}

const maskedValue = "********"
