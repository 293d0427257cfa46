package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tasks.db"
	DefaultNotesDir       = "notes"
	DefaultLogName        = "planner.log"
	DefaultRefresh        = "1s"

	// EnvConfigPath overrides where the config file is looked up.
	EnvConfigPath = "PLANNER_CONFIG"
)

type Keymap struct {
	Quit     string `toml:"quit"`
	Add      string `toml:"add"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Toggle   string `toml:"toggle"`
	Start    string `toml:"start_timer"`
	Stop     string `toml:"stop_timer"`
	Delete   string `toml:"delete"`
	Edit     string `toml:"edit"`
	Notes    string `toml:"notes"`
	Move     string `toml:"move"`
	PrevDay  string `toml:"prev_day"`
	NextDay  string `toml:"next_day"`
	PrevWeek string `toml:"prev_week"`
	NextWeek string `toml:"next_week"`
	Today    string `toml:"today"`
	Calendar string `toml:"calendar"`
	NextTab  string `toml:"next_tab"`
	Save     string `toml:"save"`
	Confirm  string `toml:"confirm"`
	Cancel   string `toml:"cancel"`
}

type Config struct {
	DBPath          string `toml:"db_path"`
	NotesDir        string `toml:"notes_dir"`
	LogPath         string `toml:"log_path"`
	RefreshInterval string `toml:"refresh_interval"`
	Keys            Keymap `toml:"keys"`
}

// ResolveConfigPath returns $PLANNER_CONFIG when set, otherwise config.toml
// beside the running executable.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return DefaultConfigFileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(filepath.Dir(path)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.NotesDir == "" {
		cfg.NotesDir = DefaultNotesDir
	}
	if _, err := time.ParseDuration(cfg.RefreshInterval); err != nil {
		cfg.RefreshInterval = DefaultRefresh
	}
	cfg.Keys = cfg.Keys.withDefaults(defaultConfig().Keys)
	return cfg.resolve(filepath.Dir(path)), nil
}

// Refresh is the tick period of the clock and duration ticks.
func (c Config) Refresh() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// resolve anchors relative paths at base, the config file's directory.
func (c Config) resolve(base string) Config {
	c.DBPath = anchor(base, c.DBPath)
	c.NotesDir = anchor(filepath.Dir(c.DBPath), c.NotesDir)
	if c.LogPath != "" {
		c.LogPath = anchor(filepath.Dir(c.DBPath), c.LogPath)
	}
	return c
}

func anchor(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func (k Keymap) withDefaults(d Keymap) Keymap {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&k.Quit, d.Quit)
	fill(&k.Add, d.Add)
	fill(&k.Up, d.Up)
	fill(&k.Down, d.Down)
	fill(&k.Toggle, d.Toggle)
	fill(&k.Start, d.Start)
	fill(&k.Stop, d.Stop)
	fill(&k.Delete, d.Delete)
	fill(&k.Edit, d.Edit)
	fill(&k.Notes, d.Notes)
	fill(&k.Move, d.Move)
	fill(&k.PrevDay, d.PrevDay)
	fill(&k.NextDay, d.NextDay)
	fill(&k.PrevWeek, d.PrevWeek)
	fill(&k.NextWeek, d.NextWeek)
	fill(&k.Today, d.Today)
	fill(&k.Calendar, d.Calendar)
	fill(&k.NextTab, d.NextTab)
	fill(&k.Save, d.Save)
	fill(&k.Confirm, d.Confirm)
	fill(&k.Cancel, d.Cancel)
	return k
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:          DefaultDBName,
		NotesDir:        DefaultNotesDir,
		LogPath:         DefaultLogName,
		RefreshInterval: DefaultRefresh,
		Keys: Keymap{
			Quit:     "q",
			Add:      "a",
			Up:       "k",
			Down:     "j",
			Toggle:   " ",
			Start:    "s",
			Stop:     "x",
			Delete:   "d",
			Edit:     "e",
			Notes:    "n",
			Move:     "m",
			PrevDay:  "h",
			NextDay:  "l",
			PrevWeek: "[",
			NextWeek: "]",
			Today:    "t",
			Calendar: "c",
			NextTab:  "tab",
			Save:     "ctrl+s",
			Confirm:  "enter",
			Cancel:   "esc",
		},
	}
}
