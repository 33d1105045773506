package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/ubuntu/decorate"
)

const (
	configKeyLogLevel          = "log-level"
	configKeyManagementLibrary = "native.management-library"
	configKeyReleaseLibrary    = "native.release-library"

	defaultLogLevel = "warn"
)

// config holds the settings that do not belong to a single command.
type config struct {
	LogLevel          string
	ManagementLibrary string
	ReleaseLibrary    string
}

// loadConfig merges, by increasing priority, the defaults, the configuration
// file, YOWSL_* environment variables and the command line flags.
//
// Without an explicit path, yowsl.toml is looked up in the user configuration
// directory, and its absence is not an error.
func loadConfig(path string, flags *pflag.FlagSet) (c config, err error) {
	defer decorate.OnError(&err, "could not load configuration")

	v := viper.New()

	v.SetDefault(configKeyLogLevel, defaultLogLevel)
	v.SetDefault(configKeyManagementLibrary, "wslapi.dll")
	v.SetDefault(configKeyReleaseLibrary, "ole32.dll")

	v.SetEnvPrefix("YOWSL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if f := flags.Lookup(configKeyLogLevel); f != nil {
		if err := v.BindPFlag(configKeyLogLevel, f); err != nil {
			return c, err
		}
	}

	explicit := path != ""
	if !explicit {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "yowsl", "yowsl.toml")
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			switch {
			case explicit:
				return c, err
			case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			default:
				return c, fmt.Errorf("%s: %v", path, err)
			}
		}
	}

	return config{
		LogLevel:          v.GetString(configKeyLogLevel),
		ManagementLibrary: v.GetString(configKeyManagementLibrary),
		ReleaseLibrary:    v.GetString(configKeyReleaseLibrary),
	}, nil
}
