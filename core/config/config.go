package config

import (
	"fmt"
	"reflect"
	"strings"

	"crowdmarks/core/database"
	"crowdmarks/core/docstore"
	"crowdmarks/core/logger"
	"crowdmarks/core/reconcile"
	"crowdmarks/core/server"
	"crowdmarks/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the blob store keeping pin photos.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the optional anomaly journal.
	Database database.Config `mapstructure:"database"`
	// Docstore holds configuration for the remote document database.
	Docstore docstore.Config `mapstructure:"docstore"`
	// Map holds the annotation reconciler settings.
	Map reconcile.Config `mapstructure:"map"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// A missing .env file is normal in production.
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// SERVER_PORT -> server.port, MAP_MATCH_MODE -> map.match_mode
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings that would only fail later at runtime.
func (c *Config) Validate() error {
	if _, err := reconcile.ParseMatchMode(c.Map.MatchMode); err != nil {
		return fmt.Errorf("map.match_mode: %w", err)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Registering every key, even with an empty default, lets AutomaticEnv see it.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
