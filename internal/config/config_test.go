package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, EndPolicyQueueThenCatalog, cfg.Player.EndPolicy)
	assert.Equal(t, 0.8, cfg.Audio.DefaultVolume)
	assert.Equal(t, 64, cfg.Audio.FFTSize)
	assert.Equal(t, 16, cfg.Player.VisualizerBands)
	assert.True(t, cfg.Player.HasVisualizer)
	assert.True(t, cfg.Player.HasCloseButton)
	assert.False(t, cfg.Player.DefaultMinimized)
}

func TestDefaultMobileConfig(t *testing.T) {
	cfg := DefaultMobileConfig()

	assert.True(t, cfg.Player.DefaultMinimized)
	assert.Equal(t, 400, cfg.UI.WindowWidth)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "queue only", mutate: func(c *Config) { c.Player.EndPolicy = EndPolicyQueueOnly }},
		{name: "unknown policy", mutate: func(c *Config) { c.Player.EndPolicy = "shuffle" }, wantErr: true},
		{name: "volume above one", mutate: func(c *Config) { c.Audio.DefaultVolume = 1.5 }, wantErr: true},
		{name: "negative volume", mutate: func(c *Config) { c.Audio.DefaultVolume = -0.1 }, wantErr: true},
		{name: "fft not power of two", mutate: func(c *Config) { c.Audio.FFTSize = 48 }, wantErr: true},
		{name: "fft too small", mutate: func(c *Config) { c.Audio.FFTSize = 16 }, wantErr: true},
		{name: "decibel range inverted", mutate: func(c *Config) { c.Audio.MinDecibels = -20 }, wantErr: true},
		{name: "more bands than bins", mutate: func(c *Config) { c.Player.VisualizerBands = 33 }, wantErr: true},
		{name: "zero frame rate", mutate: func(c *Config) { c.Player.FrameRate = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// writeConfig resets viper's global state once the test is done.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: `+filepath.ToSlash(filepath.Join(t.TempDir(), "db", "test.db"))+`
  cache_dir: `+filepath.ToSlash(filepath.Join(t.TempDir(), "cache"))+`
audio:
  default_volume: 0.5
player:
  end_policy: queue_only
  has_close_button: false
api:
  project_id: sonicflow-test
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Audio.DefaultVolume)
	assert.Equal(t, EndPolicyQueueOnly, cfg.Player.EndPolicy)
	assert.False(t, cfg.Player.HasCloseButton)
	assert.Equal(t, "sonicflow-test", cfg.API.ProjectID)
	assert.Equal(t, 320, int(cfg.Player.ExpandedWidth), "unset keys keep defaults")

	assert.DirExists(t, filepath.Dir(cfg.Storage.DatabasePath))
	assert.DirExists(t, cfg.Storage.CacheDir)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
player:
  end_policy: shuffle
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end_policy")
}

func TestOnPlayerChange_IgnoresOwnSaves(t *testing.T) {
	body := `
storage:
  database_path: ` + filepath.ToSlash(filepath.Join(t.TempDir(), "test.db")) + `
  cache_dir: ` + filepath.ToSlash(t.TempDir()) + `
player:
  end_policy: queue_only
`
	path := writeConfig(t, body)

	cfg, err := Load(path)
	require.NoError(t, err)

	var reloads atomic.Int32
	var policy atomic.Value
	require.NoError(t, cfg.OnPlayerChange(func(next *Config, _ fsnotify.Event) {
		policy.Store(next.Player.EndPolicy)
		reloads.Add(1)
	}))
	t.Cleanup(func() { _ = cfg.StopWatching() })

	// a live resize: many overlapping saves
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg.SetWindowSize(800+i, 600)
			assert.NoError(t, cfg.Save())
		}(i)
	}
	wg.Wait()

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, reloads.Load(), "saves leave the player section untouched")

	// an external edit replaces the file
	edited := strings.Replace(body, EndPolicyQueueOnly, EndPolicyQueueThenCatalog, 1)
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(edited), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool { return reloads.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, EndPolicyQueueThenCatalog, policy.Load())
}

func TestSave_WritesLoadedFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: `+filepath.ToSlash(filepath.Join(t.TempDir(), "test.db"))+`
  cache_dir: `+filepath.ToSlash(t.TempDir())+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.SetWindowSize(1024, 700)
	require.NoError(t, cfg.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "window_width: 1024")
	assert.Contains(t, string(data), "window_height: 700")
}

func TestOnPlayerChange_WithoutFileIsNoop(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg := Default()
	require.NoError(t, cfg.OnPlayerChange(func(*Config, fsnotify.Event) {}))
	assert.NoError(t, cfg.StopWatching())
}
