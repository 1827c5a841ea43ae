package manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigDirName    = "ssh-manager"
	defaultSettingsFilename = "settings.yaml"

	// DefaultSSHFallbackPath is used when "ssh" cannot be found on PATH.
	DefaultSSHFallbackPath = "/usr/bin/ssh"
)

// Settings is the optional YAML preferences file for ssh-manager.
//
// Example YAML:
//
//	theme: catppuccin-mocha
//	ssh_fallback_path: /usr/local/bin/ssh
//	watch_config: true
//	key_fingerprints: false
//	max_results: 30
type Settings struct {
	// Theme is one of: auto | dark | light | catppuccin-mocha | none.
	Theme string `yaml:"theme,omitempty"`

	// SSHFallbackPath is exec'd when PATH lookup for "ssh" fails.
	SSHFallbackPath string `yaml:"ssh_fallback_path,omitempty"`

	// WatchConfig reloads the host list when the config file changes on disk.
	WatchConfig *bool `yaml:"watch_config,omitempty"`

	// KeyFingerprints shows key type and fingerprint next to available keys
	// in the add form.
	KeyFingerprints *bool `yaml:"key_fingerprints,omitempty"`

	// MaxResults caps the visible list rows; 0 fits the window.
	MaxResults int `yaml:"max_results,omitempty"`
}

// ErrSettingsNotFound is returned when no settings file exists in any
// candidate location.
var ErrSettingsNotFound = errors.New("settings not found")

// DefaultSettings returns the built-in preferences.
func DefaultSettings() Settings {
	return Settings{
		Theme:           "auto",
		SSHFallbackPath: DefaultSSHFallbackPath,
		WatchConfig:     boolPtr(true),
		KeyFingerprints: boolPtr(true),
	}
}

// LoadSettings discovers and parses the settings file.
// If explicitPath is empty, it searches in order:
// 1. $SSH_MANAGER_SETTINGS
// 2. $XDG_CONFIG_HOME/ssh-manager/settings.yaml
// 3. ~/.config/ssh-manager/settings.yaml
//
// It returns defaults merged with the file, and the path that was used. When
// no file exists, defaults are returned with ErrSettingsNotFound.
func LoadSettings(explicitPath string) (Settings, string, error) {
	s := DefaultSettings()
	for _, p := range SettingsPathCandidates(explicitPath) {
		p = expandPath(p)
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return s, p, fmt.Errorf("read settings %s: %w", p, err)
		}
		var file Settings
		if err := yaml.Unmarshal(data, &file); err != nil {
			return s, p, fmt.Errorf("parse yaml %s: %w", p, err)
		}
		if err := file.Validate(); err != nil {
			return s, p, fmt.Errorf("invalid settings %s: %w", p, err)
		}
		return s.merge(file), p, nil
	}
	return s, "", ErrSettingsNotFound
}

// SettingsPathCandidates returns possible settings file paths, in priority
// order. explicitPath, if set, comes first.
func SettingsPathCandidates(explicitPath string) []string {
	var out []string
	if explicitPath != "" {
		out = append(out, explicitPath)
	}
	if env := os.Getenv("SSH_MANAGER_SETTINGS"); env != "" {
		out = append(out, env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, defaultConfigDirName, defaultSettingsFilename))
	}
	if home, _ := os.UserHomeDir(); home != "" {
		out = append(out, filepath.Join(home, ".config", defaultConfigDirName, defaultSettingsFilename))
	}
	return out
}

// Validate performs basic sanity checks.
//
// - theme must be a known palette name (or empty)
// - max_results must be >= 0
func (s Settings) Validate() error {
	if _, ok := canonicalThemeName(s.Theme); !ok {
		return fmt.Errorf("theme: unknown theme %q (expected: auto|dark|light|catppuccin-mocha|none)", s.Theme)
	}
	if s.MaxResults < 0 {
		return fmt.Errorf("max_results: must be >= 0")
	}
	return nil
}

func (s Settings) merge(o Settings) Settings {
	if strings.TrimSpace(o.Theme) != "" {
		s.Theme = strings.TrimSpace(o.Theme)
	}
	if strings.TrimSpace(o.SSHFallbackPath) != "" {
		s.SSHFallbackPath = expandPath(strings.TrimSpace(o.SSHFallbackPath))
	}
	if o.WatchConfig != nil {
		s.WatchConfig = boolPtr(*o.WatchConfig)
	}
	if o.KeyFingerprints != nil {
		s.KeyFingerprints = boolPtr(*o.KeyFingerprints)
	}
	if o.MaxResults > 0 {
		s.MaxResults = o.MaxResults
	}
	return s
}

// Watch reports whether the config file watcher is enabled.
func (s Settings) Watch() bool { return s.WatchConfig == nil || *s.WatchConfig }

// Fingerprints reports whether key descriptions are shown in the add form.
func (s Settings) Fingerprints() bool { return s.KeyFingerprints == nil || *s.KeyFingerprints }

// ThemeName resolves the effective theme name. NO_COLOR wins, then
// $SSH_MANAGER_THEME, then the settings value.
func (s Settings) ThemeName() string {
	if os.Getenv("NO_COLOR") != "" {
		return "none"
	}
	if env := strings.TrimSpace(os.Getenv("SSH_MANAGER_THEME")); env != "" {
		if name, ok := canonicalThemeName(env); ok {
			return name
		}
	}
	name, _ := canonicalThemeName(s.Theme)
	return name
}

func boolPtr(v bool) *bool { return &v }

// expandPath expands environment variables and a leading "~" or "~/".
// "~user" forms are returned as-is.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	rest, ok := strings.CutPrefix(p, "~")
	if !ok || (rest != "" && rest[0] != '/') {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	return filepath.Join(home, rest)
}
