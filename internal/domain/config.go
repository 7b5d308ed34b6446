package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	AssetStore   AssetStoreConfig   `mapstructure:"asset_store" yaml:"asset_store"`
	Fetch        FetchConfig        `mapstructure:"fetch" yaml:"fetch"`
	Queue        QueueConfig        `mapstructure:"queue" yaml:"queue"`
	Mirror       MirrorConfig       `mapstructure:"mirror" yaml:"mirror"`
	Notification NotificationConfig `mapstructure:"notification" yaml:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// LayoutStrategy selects how resolved components map onto disk and onto
// the recorded internal URL.
type LayoutStrategy string

const (
	// LayoutLegacyFlat keeps only placeholder values and records
	// "<locale>/<components>" as the internal URL.
	LayoutLegacyFlat LayoutStrategy = "legacy_flat"
	// LayoutPrefixedV2 keeps pattern literals and records the
	// locale-aware public URL.
	LayoutPrefixedV2 LayoutStrategy = "prefixed_v2"
)

// ValidateLayout checks if a layout strategy is known
func ValidateLayout(layout LayoutStrategy) bool {
	return layout == LayoutLegacyFlat || layout == LayoutPrefixedV2
}

// LocaleConfig maps a locale code onto its public URL prefix
type LocaleConfig struct {
	Code              string `mapstructure:"code" yaml:"code"`
	RelativeURLPrefix string `mapstructure:"relative_url_prefix" yaml:"relative_url_prefix"`
}

// AssetStoreConfig contains the on-disk layout configuration
type AssetStoreConfig struct {
	BaseDir              string         `mapstructure:"base_dir" yaml:"base_dir"`
	Pattern              string         `mapstructure:"pattern" yaml:"pattern"`
	AssetFolderPrefixKey string         `mapstructure:"asset_folder_prefix_key" yaml:"asset_folder_prefix_key"`
	Layout               LayoutStrategy `mapstructure:"layout" yaml:"layout"`
	SkipExisting         bool           `mapstructure:"skip_existing" yaml:"skip_existing"` // treat an existing file as already downloaded
	DefaultLanguage      string         `mapstructure:"default_language" yaml:"default_language"`
	Locales              []LocaleConfig `mapstructure:"locales" yaml:"locales"`
}

// FetchConfig contains settings for the HTTP fetcher
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"` // 0 = no client timeout
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// QueueConfig contains job queue configuration
type QueueConfig struct {
	DatabasePath  string        `mapstructure:"database_path" yaml:"database_path"`
	CheckInterval time.Duration `mapstructure:"check_interval" yaml:"check_interval"`
	AutoStart     bool          `mapstructure:"auto_start" yaml:"auto_start"`
}

// MirrorConfig contains Google Cloud Storage mirror configuration
type MirrorConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix"`
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Method  string `mapstructure:"method" yaml:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`             // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format"`           // json, console
	OutputPath string `mapstructure:"output_path" yaml:"output_path"` // stdout, stderr, or file path
	LogsDir    string `mapstructure:"logs_dir" yaml:"logs_dir"`       // category logs; empty disables them
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		AssetStore: AssetStoreConfig{
			BaseDir:         "./_contents",
			Pattern:         "/assets/:uid/:filename",
			Layout:          LayoutLegacyFlat,
			SkipExisting:    false,
			DefaultLanguage: "en",
			Locales: []LocaleConfig{
				{Code: "en-us", RelativeURLPrefix: "/"},
				{Code: "es-es", RelativeURLPrefix: "/es/"},
				{Code: "fr-fr", RelativeURLPrefix: "/fr/"},
			},
		},
		Fetch: FetchConfig{
			Timeout:   0,
			UserAgent: "asset-store-fs/1.0",
		},
		Queue: QueueConfig{
			DatabasePath:  "$HOME/.asset-store/assets.db",
			CheckInterval: 5 * time.Second,
			AutoStart:     true,
		},
		Mirror: MirrorConfig{
			Enabled: false,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
			LogsDir:    "$HOME/.asset-store/logs",
		},
	}
}

// CompiledStore is the immutable result of compiling an AssetStoreConfig.
// It is computed once per manager and shared by every operation.
type CompiledStore struct {
	BaseDir         string
	Pattern         PathPattern
	FolderPrefix    []string
	Layout          LayoutStrategy
	SkipExisting    bool
	DefaultLanguage string
	LocalePrefixes  map[string]string
}

// Compile validates the configuration and compiles its pattern.
func (c AssetStoreConfig) Compile() (CompiledStore, error) {
	if strings.TrimSpace(c.BaseDir) == "" {
		return CompiledStore{}, fmt.Errorf("asset store base_dir not configured")
	}

	layout := c.Layout
	if layout == "" {
		layout = LayoutLegacyFlat
	}
	if !ValidateLayout(layout) {
		return CompiledStore{}, fmt.Errorf("unknown layout strategy: %s", c.Layout)
	}

	pattern := CompilePattern(c.Pattern)
	if len(pattern.Segments) == 0 {
		return CompiledStore{}, fmt.Errorf("%w: %q has no segments", ErrInvalidPattern, c.Pattern)
	}
	for _, s := range pattern.Segments {
		if s.IsPlaceholder() && s.Value == "" {
			return CompiledStore{}, fmt.Errorf("%w: %q contains an unnamed placeholder", ErrInvalidPattern, c.Pattern)
		}
		if !s.IsPlaceholder() && (s.Value == "." || s.Value == "..") {
			return CompiledStore{}, fmt.Errorf("%w: %q contains a relative segment", ErrInvalidPattern, c.Pattern)
		}
	}
	if len(pattern.Placeholders()) == 0 {
		return CompiledStore{}, fmt.Errorf("%w: %q has no placeholders", ErrInvalidPattern, c.Pattern)
	}

	var prefix []string
	for _, p := range strings.Split(c.AssetFolderPrefixKey, "/") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if p == "." || p == ".." {
			return CompiledStore{}, fmt.Errorf("asset_folder_prefix_key %q contains a relative segment", c.AssetFolderPrefixKey)
		}
		prefix = append(prefix, p)
	}

	lang := strings.ToLower(strings.TrimSpace(c.DefaultLanguage))
	if lang == "" {
		lang = "en"
	}

	locales := make(map[string]string, len(c.Locales))
	for _, l := range c.Locales {
		if l.Code == "" {
			continue
		}
		locales[strings.ToLower(l.Code)] = l.RelativeURLPrefix
	}

	return CompiledStore{
		BaseDir:         filepath.Clean(c.BaseDir),
		Pattern:         pattern,
		FolderPrefix:    prefix,
		Layout:          layout,
		SkipExisting:    c.SkipExisting,
		DefaultLanguage: lang,
		LocalePrefixes:  locales,
	}, nil
}
