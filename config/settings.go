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
	Server   ServerSettings   `json:"server"`
	Metadata MetadataSettings `json:"metadata"`
	Storage  StorageSettings  `json:"storage"`
	Uploads  UploadSettings   `json:"uploads"`
	Log      LogSettings      `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type MetadataSettings struct {
	OMDBAPIKey  string `json:"omdbApiKey"`
	BooksAPIKey string `json:"googleBooksApiKey"`
}

type StorageSettings struct {
	Directory string `json:"directory"`
}

type UploadSettings struct {
	Directory string `json:"directory"`
	MaxSizeMB int    `json:"maxSizeMb"`
}

type LogSettings struct {
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
}

func DefaultSettings() Settings {
	return Settings{
		Server:  ServerSettings{Host: "0.0.0.0", Port: 8585},
		Storage: StorageSettings{Directory: "data"},
		Uploads: UploadSettings{Directory: filepath.Join("data", "uploads"), MaxSizeMB: 10},
		Log: LogSettings{
			File:       filepath.Join("data", "shelflog.log"),
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Manager loads and saves the settings file.
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

// Load reads settings from disk, creating the file with defaults when it does
// not exist. Missing fields are backfilled and credentials can be overridden
// from the environment.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		// create with defaults
		defaults := DefaultSettings()
		applyEnvOverrides(&defaults)
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

	settings := DefaultSettings()
	if err := json.NewDecoder(f).Decode(&settings); err != nil {
		return Settings{}, err
	}

	backfillDefaults(&settings)
	applyEnvOverrides(&settings)

	return settings, nil
}

func backfillDefaults(s *Settings) {
	defaults := DefaultSettings()
	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = defaults.Server.Host
	}
	if s.Server.Port == 0 {
		s.Server.Port = defaults.Server.Port
	}
	if strings.TrimSpace(s.Storage.Directory) == "" {
		s.Storage.Directory = defaults.Storage.Directory
	}
	if strings.TrimSpace(s.Uploads.Directory) == "" {
		s.Uploads.Directory = defaults.Uploads.Directory
	}
	if s.Uploads.MaxSizeMB <= 0 {
		s.Uploads.MaxSizeMB = defaults.Uploads.MaxSizeMB
	}
	if strings.TrimSpace(s.Log.File) == "" {
		s.Log.File = defaults.Log.File
	}
	if s.Log.MaxSizeMB <= 0 {
		s.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
	if s.Log.MaxBackups <= 0 {
		s.Log.MaxBackups = defaults.Log.MaxBackups
	}
	if s.Log.MaxAgeDays <= 0 {
		s.Log.MaxAgeDays = defaults.Log.MaxAgeDays
	}
}

func applyEnvOverrides(s *Settings) {
	if key := strings.TrimSpace(os.Getenv("OMDB_API_KEY")); key != "" {
		s.Metadata.OMDBAPIKey = key
	}
	if key := strings.TrimSpace(os.Getenv("GOOGLE_BOOKS_API_KEY")); key != "" {
		s.Metadata.BooksAPIKey = key
	}
}

// Save writes settings atomically.
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
