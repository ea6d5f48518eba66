package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. SCREENER_LOGGER_LEVEL.
const EnvPrefix = "SCREENER"

// App holds application configuration.
type App struct {
	Name    string `mapstructure:"name" default:"stock-screener"`
	Env     string `mapstructure:"env" default:"local"`
	Version string `mapstructure:"version" default:"dev"`
}

// Logger holds logger configuration.
type Logger struct {
	Level    string `mapstructure:"level" default:"info" validate:"oneof=debug info warn error"`
	Encoding string `mapstructure:"encoding" default:"json" validate:"oneof=json console"`
}

// Defaulter is implemented by configs with defaults that depend on decoded values.
type Defaulter interface {
	ApplyDefaults() error
}

// Validatable is implemented by configs that need checks beyond struct tags.
type Validatable interface {
	Validate() error
}

var validate = validator.New()

// Load reads the YAML file at path into config. Struct tag defaults are applied
// first, then the file and environment overrides, then validation.
// A missing file is tolerated so a config can come from the environment alone.
func Load(path string, config interface{}, bindEnv ...string) error {
	if err := defaults.Set(config); err != nil {
		return fmt.Errorf("failed to apply config defaults: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range bindEnv {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
		log.Printf("Config file %s not found, reading from environment variables only", path)
	}

	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	if d, ok := config.(Defaulter); ok {
		if err := d.ApplyDefaults(); err != nil {
			return fmt.Errorf("failed to apply config defaults: %w", err)
		}
	}

	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c, ok := config.(Validatable); ok {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	return nil
}
