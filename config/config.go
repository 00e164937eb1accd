/*
Package config is the key/value store of tunables. Values are looked up by
section and key, with the default given at the call site used when neither
the embedded defaults, the user file nor the environment set them.

Precedence, lowest first: embedded defaults.yml, the user config file,
variables from a .env file, environment variables TRAVERSO_<SECTION>_<KEY>,
and values set at run time with Set.
*/
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config wraps a viper instance; the zero value is not usable.
type Config struct {
	v *viper.Viper
}

// Options tells New where to look for files. Empty paths use the defaults.
type Options struct {
	// File is the user config file; by default config.yml in UserDir.
	File string

	// EnvFile is loaded into the environment before lookups; by default
	// .env in the working directory. Missing files are ignored.
	EnvFile string
}

const (
	appName   = "traverso"
	envPrefix = "TRAVERSO"
)

//go:embed defaults.yml
var defaultsYml []byte

// Default returns a Config with only the embedded defaults and the
// environment.
func Default() *Config {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultsYml)); err != nil {
		panic(fmt.Errorf("failed to read default config: %w", err))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// New loads the .env file, the defaults and the user config file.
func New(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}
	c := Default()
	file := opts.File
	if file == "" {
		dir, err := UserDir()
		if err != nil {
			return c, nil
		}
		file = filepath.Join(dir, "config.yml")
		if _, err := os.Stat(file); err != nil {
			return c, nil
		}
	}
	c.v.SetConfigFile(file)
	if err := c.v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", file, err)
	}
	return c, nil
}

// UserDir is the directory of the user's config and key map files.
func UserDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// File returns the user config file in use, or "".
func (c *Config) File() string { return c.v.ConfigFileUsed() }

func name(section, key string) string { return section + "." + key }

func (c *Config) IsSet(section, key string) bool { return c.v.IsSet(name(section, key)) }

func (c *Config) Int(section, key string, def int) int {
	if !c.IsSet(section, key) {
		return def
	}
	return c.v.GetInt(name(section, key))
}

func (c *Config) Float(section, key string, def float64) float64 {
	if !c.IsSet(section, key) {
		return def
	}
	return c.v.GetFloat64(name(section, key))
}

func (c *Config) Bool(section, key string, def bool) bool {
	if !c.IsSet(section, key) {
		return def
	}
	return c.v.GetBool(name(section, key))
}

func (c *Config) String(section, key string, def string) string {
	if !c.IsSet(section, key) {
		return def
	}
	return c.v.GetString(name(section, key))
}

// Duration accepts time.ParseDuration strings ("20ms") or nanoseconds.
func (c *Config) Duration(section, key string, def time.Duration) time.Duration {
	if !c.IsSet(section, key) {
		return def
	}
	return c.v.GetDuration(name(section, key))
}

// Set overrides a value for the lifetime of c.
func (c *Config) Set(section, key string, value any) {
	c.v.Set(name(section, key), value)
}
