package manager

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hoppxi/framekit/internal/logging"
	"github.com/hoppxi/framekit/internal/report"
	"github.com/hoppxi/framekit/pkg/marker"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings is the validated configuration of one run.
type Settings struct {
	Threshold     int
	Highlight     marker.Color
	Policy        marker.FailurePolicy
	Report        string
	WholeWord     bool
	Backup        bool
	ScriptTimeout time.Duration
	Targets       []string
	Log           logging.Config
}

// Options returns the marker options these settings describe.
func (s Settings) Options() marker.Options {
	return marker.Options{
		Threshold: s.Threshold,
		Highlight: s.Highlight,
		Policy:    s.Policy,
	}
}

type ConfigManager struct {
	mu sync.Mutex
	v  *viper.Viper
}

var Config = &ConfigManager{}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "framekit")
}

// DefaultPath is where init-config writes framekit.yaml.
func DefaultPath() string {
	return filepath.Join(configDir(), "framekit.yaml")
}

func setDefaults(v *viper.Viper) {
	lc := logging.DefaultConfig()

	v.SetDefault("threshold", 2)
	v.SetDefault("highlight", marker.Red.Hex())
	v.SetDefault("on_error", marker.Continue.String())
	v.SetDefault("report", "terminal")
	v.SetDefault("whole_word", false)
	v.SetDefault("backup", true)
	v.SetDefault("script_timeout", 60*time.Second)
	v.SetDefault("targets", []string{})
	v.SetDefault("log.file", lc.File)
	v.SetDefault("log.max_size", lc.MaxSize)
	v.SetDefault("log.max_backups", lc.MaxBackups)
	v.SetDefault("log.max_age", lc.MaxAge)
	v.SetDefault("log.compress", lc.Compress)
}

// Load reads framekit.yaml from path, or from ./framekit.yaml and the user
// config directory when path is empty. A missing file is only an error
// when path was given. A .env file in the working directory is loaded
// first so FRAMEKIT_* variables can live there.
func (c *ConfigManager) Load(path string) (*viper.Viper, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Ignoring .env: %v", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FRAMEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	} else {
		v.SetConfigName("framekit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	c.v = v
	return v, nil
}

// Viper returns the last loaded configuration.
func (c *ConfigManager) Viper() *viper.Viper {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

// Watch calls onChange whenever the loaded config file is written.
func (c *ConfigManager) Watch(onChange func()) {
	v := c.Viper()
	if v == nil || v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("Config changed: %s", e.Name)
		onChange()
	})
	v.WatchConfig()
}

// Resolve validates the configuration before any document is touched.
func Resolve(v *viper.Viper) (Settings, error) {
	s := Settings{
		Threshold:     v.GetInt("threshold"),
		Report:        v.GetString("report"),
		WholeWord:     v.GetBool("whole_word"),
		Backup:        v.GetBool("backup"),
		ScriptTimeout: v.GetDuration("script_timeout"),
		Targets:       v.GetStringSlice("targets"),
		Log: logging.Config{
			File:       v.GetString("log.file"),
			MaxSize:    v.GetInt("log.max_size"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAge:     v.GetInt("log.max_age"),
			Compress:   v.GetBool("log.compress"),
		},
	}

	if s.Threshold < 1 {
		return s, fmt.Errorf("%w: %d (must be at least 1)", marker.ErrInvalidThreshold, s.Threshold)
	}

	c, err := marker.ParseColor(v.GetString("highlight"))
	if err != nil {
		return s, fmt.Errorf("invalid highlight: %w", err)
	}
	s.Highlight = c

	if s.Policy, err = marker.ParsePolicy(v.GetString("on_error")); err != nil {
		return s, err
	}

	if !report.Known(s.Report) {
		return s, fmt.Errorf("unknown report %q (want one of %s)", s.Report, strings.Join(report.Names(), ", "))
	}

	if s.ScriptTimeout <= 0 {
		return s, fmt.Errorf("invalid script_timeout %v", s.ScriptTimeout)
	}

	return s, nil
}
