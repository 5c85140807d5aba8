package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	KeyApiUrl           = "api_url"
	KeyDbUrl            = "db_url"
	KeyMigrationsFolder = "migrations_folder"
	KeySessionStore     = "session_store"
	KeySessionDir       = "session_dir"
	KeyPort             = "port"
	KeyDebug            = "debug"
	KeySearchDebounce   = "search_debounce"
	KeyMinSearchLength  = "min_search_length"
	KeyCookieKey        = "cookie_key"
	KeyImportWorkers    = "import_workers"
)

// New returns a viper instance with the defaults, the config file search path and the TABLETOP_ environment
// prefix set up. Flags may be bound to it before calling ReadConfig.
func New(home string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("tabletop")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", "tabletop"))
	}

	v.SetEnvPrefix("tabletop")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyApiUrl, "http://localhost:8000/api/v1")
	v.SetDefault(KeyDbUrl, "tabletop.db")
	v.SetDefault(KeyMigrationsFolder, "migrations")
	v.SetDefault(KeySessionStore, SqliteStore)
	v.SetDefault(KeySessionDir, ".tabletop")
	v.SetDefault(KeyPort, 8080)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeySearchDebounce, 300*time.Millisecond)
	v.SetDefault(KeyMinSearchLength, 2)
	v.SetDefault(KeyCookieKey, "u46IpCV9y5Vlur8YvODJEhgOY8m9JVE4")
	v.SetDefault(KeyImportWorkers, 1)
	return v
}

// ReadConfig reads the config file, if one is found, and returns the validated configuration. A missing file is
// not an error; the defaults and the environment apply.
func ReadConfig(v *viper.Viper) (Configuration, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Error().Err(err).Msg("failed to read config file")
			return Configuration{}, err
		}
		log.Debug().Msg("no config file found, using defaults")
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("read config file")
	}

	api, err := url.Parse(strings.TrimSuffix(v.GetString(KeyApiUrl), "/"))
	if err != nil {
		return Configuration{}, fmt.Errorf("%w: api url: %w", ErrInvalidConfig, err)
	}

	c := Configuration{
		ApiUrl:           api,
		DbUrl:            v.GetString(KeyDbUrl),
		MigrationsFolder: v.GetString(KeyMigrationsFolder),
		SessionStore:     v.GetString(KeySessionStore),
		SessionDir:       v.GetString(KeySessionDir),
		Port:             v.GetUint16(KeyPort),
		Debug:            v.GetBool(KeyDebug),
		SearchDebounce:   v.GetDuration(KeySearchDebounce),
		MinSearchLength:  v.GetInt(KeyMinSearchLength),
		CookieKey:        v.GetString(KeyCookieKey),
		ImportWorkers:    v.GetInt(KeyImportWorkers),
	}
	return c, c.validate()
}
