package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: app.server.http.address is read
// from GOTP_APP_SERVER_HTTP_ADDRESS.
const EnvPrefix = "GOTP"

// ErrConfigType is returned when NewViperFromBytes is called without a format.
var ErrConfigType = errors.New("config type is required")

// Defaults are applied before any file is read so a partial config still boots.
var Defaults = map[string]any{
	"app.name":                                    "gotp",
	"app.server.http.address":                     "127.0.0.1:8080",
	"app.server.http.read_timeout_seconds":        10,
	"app.server.http.read_header_timeout_seconds": 5,
	"app.server.http.write_timeout_seconds":       0,
	"app.server.http.idle_timeout_seconds":        60,
	"app.server.shutdown_timeout_seconds":         10,
	"app.server.max_goroutine":                    32,
	"app.server.cors":                             "http://localhost:*,http://127.0.0.1:*",
	"app.server.loopback_only":                    true,
	"instrument.enabled":                          false,
	"instrument.log_level":                        "info",
	"instrument.log_mask_fields":                  "secret,uri,backup_codes,backupCodes,codes,encryption_key",
	"instrument.metrics_interval_seconds":         15,
	"instrument.trace_sample_ratio":               1.0,
	"storage.driver":                              "file",
	"storage.file.dir":                            "./data",
	"storage.sqlite.path":                         "./data/gotp.db",
	"storage.sqlite.busy_retries":                 5,
	"stream.tick_seconds":                         1,
	"stream.heartbeat_seconds":                    15,
}

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewViper loads configuration from the given file path and returns a Viper-backed Config.
//
// The config file type is inferred by Viper from the filename extension. The
// file is watched and re-read on change; onChange, when set, runs after each
// successful reload.
func NewViper(pathFile string, onChange func()) (*Viper, error) {
	v := newViper()

	filename := path.Base(pathFile)
	configName := strings.TrimSuffix(filename, path.Ext(filename))

	v.AddConfigPath(path.Dir(pathFile))
	v.SetConfigName(configName)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed", "path", pathFile, "error", err)
			return
		}
		slog.Info("config success reloaded", "path", pathFile)
		if onChange != nil {
			onChange()
		}
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes loads configuration from memory and returns a Viper-backed Config.
// configType should be a format supported by Viper (e.g. "yaml", "json", "toml").
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, ErrConfigType
	}

	v := newViper()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

// GetBool returns the value for key as bool.
func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

// GetInt returns the value for key as int.
func (vc *Viper) GetInt(key string) int {
	return vc.v.GetInt(key)
}

// GetFloat64 returns the value for key as float64.
func (vc *Viper) GetFloat64(key string) float64 {
	return vc.v.GetFloat64(key)
}

// GetString returns the value for key as string.
func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

// GetSecond returns the value for key as seconds.
func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

// GetBinary returns the value for key decoded from base64.
func (vc *Viper) GetBinary(key string) []byte {
	raw := strings.TrimSpace(vc.v.GetString(key))
	if raw == "" {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}

	return data
}

// GetArray returns the value for key split by commas.
func (vc *Viper) GetArray(key string) []string {
	parts := strings.Split(vc.v.GetString(key), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Close implements io.Closer for interface compatibility.
func (vc *Viper) Close() error {
	return nil
}
