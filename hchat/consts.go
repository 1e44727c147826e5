// Package hchat holds process-wide defaults shared by the hybridchat packages.
package hchat

import (
	"os"
	"path/filepath"
)

const (
	DefaultAppName      = "hchat"
	DefaultDatabaseType = "libsql"
	DefaultServerAddr   = ":8000"
	DefaultEnvPrefix    = "HCHAT"
)

var (
	DefaultConfigPath  = filepath.Join(userConfigDir(), DefaultAppName)
	DefaultDataDir     = filepath.Join(".", "data")
	DefaultDatabaseDSN = "file:" + filepath.Join(DefaultDataDir, "hchat.db")
	DefaultModelDir    = filepath.Join(".", "trained_model")
	DefaultIntentsPath = filepath.Join(DefaultDataDir, "intents.json")
)

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}

// Version is stamped at build time with -ldflags "-X github.com/ZanzyTHEbar/hybridchat/hchat.Version=...".
var Version = "dev"
