// Package platform resolves per-OS locations for Sonicflow's files.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName          = "Sonicflow"
	appDir           = "sonicflow"
	androidPackageID = "io.sonicflow.mobile"
)

type dirKind int

const (
	dataDir dirKind = iota
	cacheDir
	configDir
)

// GetDataDir holds the sqlite database.
func GetDataDir() (string, error) { return resolve(runtime.GOOS, dataDir) }

// GetCacheDir holds downloaded cover images.
func GetCacheDir() (string, error) { return resolve(runtime.GOOS, cacheDir) }

// GetConfigDir is searched first for config.yaml.
func GetConfigDir() (string, error) { return resolve(runtime.GOOS, configDir) }

func resolve(goos string, kind dirKind) (string, error) {
	switch goos {
	case "windows":
		return windowsDir(kind), nil
	case "android":
		return androidDir(kind), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if goos == "darwin" {
		sub := map[dirKind]string{
			dataDir:   "Application Support",
			cacheDir:  "Caches",
			configDir: "Preferences",
		}[kind]
		return filepath.Join(home, "Library", sub, appName), nil
	}

	env, fallback := xdg(kind)
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appDir), nil
	}
	return filepath.Join(home, fallback, appDir), nil
}

func windowsDir(kind dirKind) string {
	if kind == cacheDir {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appName, "Cache")
		}
		return filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local", appName, "Cache")
	}
	if roaming := os.Getenv("APPDATA"); roaming != "" {
		return filepath.Join(roaming, appName)
	}
	return filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming", appName)
}

func androidDir(kind dirKind) string {
	sub := "files"
	if kind == cacheDir {
		sub = "cache"
	}
	if base := os.Getenv("ANDROID_DATA"); base != "" {
		return filepath.Join(base, "data", androidPackageID, sub)
	}
	return filepath.Join("/data/data", androidPackageID, sub)
}

// xdg returns the XDG variable and the home-relative default for kind.
func xdg(kind dirKind) (string, string) {
	switch kind {
	case cacheDir:
		return "XDG_CACHE_HOME", ".cache"
	case configDir:
		return "XDG_CONFIG_HOME", ".config"
	default:
		return "XDG_DATA_HOME", filepath.Join(".local", "share")
	}
}
