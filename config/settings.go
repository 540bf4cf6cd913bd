package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server ServerSettings `json:"server"`
	Fetch  FetchSettings  `json:"fetch"`
	Relay  RelaySettings  `json:"relay"`
	Log    LogConfig      `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// FetchSettings controls page-variant fetches performed by the resolver.
type FetchSettings struct {
	TimeoutSeconds   int    `json:"timeoutSeconds"`
	MaxRedirects     int    `json:"maxRedirects"`
	DesktopUserAgent string `json:"desktopUserAgent"`
	MobileUserAgent  string `json:"mobileUserAgent"`
}

// RelaySettings controls the media download proxy. Media transfers are larger
// and slower than page fetches, so the timeout is separate.
type RelaySettings struct {
	TimeoutSeconds int `json:"timeoutSeconds"`
	MaxRedirects   int `json:"maxRedirects"`
}

// LogConfig represents file logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

const (
	defaultDesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultMobileUserAgent  = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"
)

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 3002},
		Fetch: FetchSettings{
			TimeoutSeconds:   15,
			MaxRedirects:     5,
			DesktopUserAgent: defaultDesktopUserAgent,
			MobileUserAgent:  defaultMobileUserAgent,
		},
		Relay: RelaySettings{
			TimeoutSeconds: 60,
			MaxRedirects:   5,
		},
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings from disk or creates defaults if missing. Fields added
// after a config file was first written are backfilled with their defaults.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}

	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = "0.0.0.0"
	}
	if s.Server.Port == 0 {
		s.Server.Port = 3002
	}
	if s.Fetch.TimeoutSeconds == 0 {
		s.Fetch.TimeoutSeconds = 15
	}
	if s.Fetch.MaxRedirects == 0 {
		s.Fetch.MaxRedirects = 5
	}
	if strings.TrimSpace(s.Fetch.DesktopUserAgent) == "" {
		s.Fetch.DesktopUserAgent = defaultDesktopUserAgent
	}
	if strings.TrimSpace(s.Fetch.MobileUserAgent) == "" {
		s.Fetch.MobileUserAgent = defaultMobileUserAgent
	}
	if s.Relay.TimeoutSeconds == 0 {
		s.Relay.TimeoutSeconds = 60
	}
	if s.Relay.MaxRedirects == 0 {
		s.Relay.MaxRedirects = 5
	}
	if strings.TrimSpace(s.Log.File) == "" {
		s.Log.File = "cache/logs/backend.log"
	}
	if s.Log.MaxSize == 0 {
		s.Log.MaxSize = 50
	}
	if s.Log.MaxBackups == 0 {
		s.Log.MaxBackups = 3
	}
	if s.Log.MaxAge == 0 {
		s.Log.MaxAge = 7
	}

	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
