package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	BaseURL  string        `mapstructure:"SCHWEIZMOBIL_BASE_URL"`
	Username string        `mapstructure:"SCHWEIZMOBIL_USERNAME"`
	Password string        `mapstructure:"SCHWEIZMOBIL_PASSWORD"`
	Timeout  time.Duration `mapstructure:"SCHWEIZMOBIL_TIMEOUT"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SCHWEIZMOBIL_BASE_URL", "https://map.schweizmobil.ch")
	viper.SetDefault("SCHWEIZMOBIL_TIMEOUT", "30s")
	// Register the keys so AutomaticEnv picks them up during Unmarshal.
	viper.SetDefault("SCHWEIZMOBIL_USERNAME", "")
	viper.SetDefault("SCHWEIZMOBIL_PASSWORD", "")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// Credentials is a username/password pair for the remote service.
type Credentials struct {
	Username string
	Password string
}

// ReadCredentialsFile loads a credentials file of the form
//
//	username=your_username
//	password=your_password
//
// Both keys must be present and non-empty, and no other keys are allowed.
func ReadCredentialsFile(path string) (Credentials, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return Credentials{}, err
	}

	creds := Credentials{
		Username: v.GetString("username"),
		Password: v.GetString("password"),
	}
	if creds.Username == "" || creds.Password == "" || len(v.AllKeys()) != 2 {
		return Credentials{}, fmt.Errorf("credentials file %q must contain exactly username=... and password=..., both non-empty", path)
	}
	return creds, nil
}
