package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Alexander-D-Karpov/sonicflow/internal/platform"
)

const (
	EndPolicyQueueThenCatalog = "queue_then_catalog"
	EndPolicyQueueOnly        = "queue_only"
)

// mu serialises access to viper's global state between Save and the
// reload watcher.
var mu sync.Mutex

type Config struct {
	Debug bool `mapstructure:"debug"`

	watcher   *fsnotify.Watcher
	watchDone chan struct{}

	API struct {
		BaseURL   string `mapstructure:"base_url"`
		ProjectID string `mapstructure:"project_id"`
		APIKey    string `mapstructure:"api_key"`
		RateLimit struct {
			RequestsPerSecond int `mapstructure:"requests_per_second"`
			BurstSize         int `mapstructure:"burst_size"`
		} `mapstructure:"rate_limit"`
		Timeout   int    `mapstructure:"timeout"`
		Retries   int    `mapstructure:"retries"`
		UserAgent string `mapstructure:"user_agent"`
		PageSize  int    `mapstructure:"page_size"`
	} `mapstructure:"api"`

	Storage struct {
		DatabasePath string `mapstructure:"database_path"`
		CacheDir     string `mapstructure:"cache_dir"`
		MaxCacheSize int64  `mapstructure:"max_cache_size"`
		EnableWAL    bool   `mapstructure:"enable_wal"`
		SyncInterval int    `mapstructure:"sync_interval"`
	} `mapstructure:"storage"`

	Audio struct {
		SampleRate       int     `mapstructure:"sample_rate"`
		BufferSize       int     `mapstructure:"buffer_size"`
		DefaultVolume    float64 `mapstructure:"default_volume"`
		ResampleQuality  int     `mapstructure:"resample_quality"`
		FFTSize          int     `mapstructure:"fft_size"`
		Smoothing        float64 `mapstructure:"smoothing"`
		MinDecibels      float64 `mapstructure:"min_decibels"`
		MaxDecibels      float64 `mapstructure:"max_decibels"`
		MaxDownloadBytes int64   `mapstructure:"max_download_bytes"`
	} `mapstructure:"audio"`

	Player struct {
		HasVisualizer      bool    `mapstructure:"has_visualizer"`
		DefaultMinimized   bool    `mapstructure:"default_minimized"`
		HasCloseButton     bool    `mapstructure:"has_close_button"`
		EndPolicy          string  `mapstructure:"end_policy"`
		DragThreshold      float32 `mapstructure:"drag_threshold"`
		Padding            float32 `mapstructure:"padding"`
		MinimizedSize      float32 `mapstructure:"minimized_size"`
		ExpandedWidth      float32 `mapstructure:"expanded_width"`
		ExpandedHeight     float32 `mapstructure:"expanded_height"`
		VisualizerBands    int     `mapstructure:"visualizer_bands"`
		FrameRate          int     `mapstructure:"frame_rate"`
		TimeUpdateInterval int     `mapstructure:"time_update_ms"`
	} `mapstructure:"player"`

	UI struct {
		Theme        string `mapstructure:"theme"`
		WindowWidth  int    `mapstructure:"window_width"`
		WindowHeight int    `mapstructure:"window_height"`
	} `mapstructure:"ui"`

	Search struct {
		MaxResults int `mapstructure:"max_results"`
	} `mapstructure:"search"`
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		configDir, err := platform.GetConfigDir()
		if err != nil {
			return nil, err
		}
		viper.AddConfigPath(configDir)
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("SONICFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := ensureDirectories(&cfg); err != nil {
		return nil, err
	}

	optimizeForPlatform(&cfg)

	return &cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	setDefaults()

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return &cfg
}

func DefaultMobileConfig() *Config {
	cfg := Default()

	cfg.UI.WindowWidth = 400
	cfg.UI.WindowHeight = 800
	cfg.Audio.BufferSize = 16384
	cfg.Player.DefaultMinimized = true
	cfg.Player.ExpandedWidth = 280

	return cfg
}

func setDefaults() {
	viper.SetDefault("debug", false)

	viper.SetDefault("api.base_url", "https://firestore.googleapis.com/v1")
	viper.SetDefault("api.project_id", "")
	viper.SetDefault("api.api_key", "")
	viper.SetDefault("api.rate_limit.requests_per_second", 10)
	viper.SetDefault("api.rate_limit.burst_size", 5)
	viper.SetDefault("api.timeout", 30)
	viper.SetDefault("api.retries", 3)
	viper.SetDefault("api.user_agent", "Sonicflow/1.0.0")
	viper.SetDefault("api.page_size", 100)

	dataDir, _ := platform.GetDataDir()
	cacheDir, _ := platform.GetCacheDir()

	viper.SetDefault("storage.database_path", filepath.Join(dataDir, "sonicflow.db"))
	viper.SetDefault("storage.cache_dir", cacheDir)
	viper.SetDefault("storage.max_cache_size", 256*1024*1024)
	viper.SetDefault("storage.enable_wal", true)
	viper.SetDefault("storage.sync_interval", 300)

	viper.SetDefault("audio.sample_rate", 44100)
	viper.SetDefault("audio.buffer_size", getDefaultBufferSize())
	viper.SetDefault("audio.default_volume", 0.8)
	viper.SetDefault("audio.resample_quality", 4)
	viper.SetDefault("audio.fft_size", 64)
	viper.SetDefault("audio.smoothing", 0.8)
	viper.SetDefault("audio.min_decibels", -100.0)
	viper.SetDefault("audio.max_decibels", -30.0)
	viper.SetDefault("audio.max_download_bytes", 64*1024*1024)

	viper.SetDefault("player.has_visualizer", true)
	viper.SetDefault("player.default_minimized", false)
	viper.SetDefault("player.has_close_button", true)
	viper.SetDefault("player.end_policy", EndPolicyQueueThenCatalog)
	viper.SetDefault("player.drag_threshold", 5)
	viper.SetDefault("player.padding", 10)
	viper.SetDefault("player.minimized_size", 64)
	viper.SetDefault("player.expanded_width", 320)
	viper.SetDefault("player.expanded_height", 200)
	viper.SetDefault("player.visualizer_bands", 16)
	viper.SetDefault("player.frame_rate", 30)
	viper.SetDefault("player.time_update_ms", 250)

	viper.SetDefault("ui.theme", "dark")
	viper.SetDefault("ui.window_width", 1200)
	viper.SetDefault("ui.window_height", 800)

	viper.SetDefault("search.max_results", 50)
}

// Validate rejects values the player cannot work with.
func (c *Config) Validate() error {
	switch c.Player.EndPolicy {
	case EndPolicyQueueThenCatalog, EndPolicyQueueOnly:
	default:
		return fmt.Errorf("invalid player.end_policy %q", c.Player.EndPolicy)
	}

	if c.Audio.DefaultVolume < 0 || c.Audio.DefaultVolume > 1 {
		return fmt.Errorf("audio.default_volume must be within [0,1], got %v", c.Audio.DefaultVolume)
	}

	if c.Audio.FFTSize < 32 || c.Audio.FFTSize&(c.Audio.FFTSize-1) != 0 {
		return fmt.Errorf("audio.fft_size must be a power of two >= 32, got %d", c.Audio.FFTSize)
	}

	if c.Audio.MinDecibels >= c.Audio.MaxDecibels {
		return fmt.Errorf("audio.min_decibels must be below audio.max_decibels")
	}

	if c.Player.VisualizerBands <= 0 || c.Player.VisualizerBands > c.Audio.FFTSize/2 {
		return fmt.Errorf("player.visualizer_bands must be within [1,%d]", c.Audio.FFTSize/2)
	}

	if c.Player.FrameRate <= 0 || c.Player.TimeUpdateInterval <= 0 {
		return fmt.Errorf("player.frame_rate and player.time_update_ms must be positive")
	}

	return nil
}

// OnPlayerChange watches the config file and calls fn with a snapshot
// whenever an edit changes the player section. Writes that leave it as is,
// Save included, are ignored. Without a config file there is nothing to
// watch.
func (c *Config) OnPlayerChange(fn func(cfg *Config, ev fsnotify.Event)) error {
	mu.Lock()
	file := viper.ConfigFileUsed()
	mu.Unlock()
	if file == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	// editors replace the file, so watch its directory
	if err := w.Add(filepath.Dir(file)); err != nil {
		w.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	c.watcher = w
	c.watchDone = make(chan struct{})
	go c.watch(w, c.watchDone, filepath.Clean(file), fn)
	return nil
}

// StopWatching ends the reload watcher started by OnPlayerChange and waits
// for it to exit.
func (c *Config) StopWatching() error {
	if c.watcher == nil {
		return nil
	}
	w, done := c.watcher, c.watchDone
	c.watcher, c.watchDone = nil, nil

	err := w.Close()
	<-done
	return err
}

func (c *Config) watch(w *fsnotify.Watcher, done chan struct{}, file string, fn func(*Config, fsnotify.Event)) {
	defer close(done)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != file || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if snapshot, changed := c.reloadPlayer(); changed {
				fn(snapshot, ev)
			}
		case _, ok := <-w.Errors:
			if !ok {
				return
			}
		}
	}
}

func (c *Config) reloadPlayer() (*Config, bool) {
	mu.Lock()
	defer mu.Unlock()

	if err := viper.ReadInConfig(); err != nil {
		return nil, false
	}

	var next Config
	if err := viper.Unmarshal(&next); err != nil {
		return nil, false
	}
	if err := next.Validate(); err != nil {
		return nil, false
	}
	optimizeForPlatform(&next)
	if next.Player == c.Player {
		return nil, false
	}

	c.Player = next.Player
	snapshot := *c
	snapshot.watcher, snapshot.watchDone = nil, nil
	return &snapshot, true
}

func getDefaultBufferSize() int {
	switch runtime.GOOS {
	case "linux":
		return 16384
	default:
		return 8192
	}
}

func optimizeForPlatform(cfg *Config) {
	switch runtime.GOOS {
	case "linux":
		if cfg.Audio.BufferSize < 8192 {
			cfg.Audio.BufferSize = 16384
		}
	case "android", "ios":
		cfg.Audio.BufferSize = 16384
		cfg.Player.DefaultMinimized = true
	}
}

func ensureDirectories(cfg *Config) error {
	dirs := []string{
		filepath.Dir(cfg.Storage.DatabasePath),
		cfg.Storage.CacheDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	return nil
}

// SetWindowSize records the size Save writes back.
func (c *Config) SetWindowSize(width, height int) {
	mu.Lock()
	c.UI.WindowWidth = width
	c.UI.WindowHeight = height
	mu.Unlock()
}

// Save writes the window size back to the loaded config file, or to the
// platform config dir when none was found.
func (c *Config) Save() error {
	mu.Lock()
	defer mu.Unlock()

	viper.Set("ui.window_width", c.UI.WindowWidth)
	viper.Set("ui.window_height", c.UI.WindowHeight)

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configDir, err := platform.GetConfigDir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(configDir, "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	return viper.WriteConfigAs(configFile)
}
