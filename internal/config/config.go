package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ilyakaznacheev/cleanenv"
)

var ErrInvalidPort = errors.New("port argument is not a valid port number")

type Config struct {
	LogLevel       string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Port           string `yaml:"port" env:"PORT" env-default:"5000"`
	HTTPPort       string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	OutboundBuffer int    `yaml:"outbound-buffer" env:"OUTBOUND_BUFFER" env-default:"64"`
	MaxLineLength  int    `yaml:"max-line-length" env:"MAX_LINE_LENGTH" env-default:"4096"`
	Redis          Redis  `yaml:"redis" env-prefix:"REDIS_"`
}

type Redis struct {
	Enabled    bool   `yaml:"enabled" env:"ENABLED" env-default:"false"`
	Host       string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port       string `yaml:"port" env:"PORT" env-default:"6379"`
	RoundsKept int    `yaml:"rounds-kept" env:"ROUNDS_KEPT" env-default:"20"`
}

// MustLoad - load configuration from the yml file at path, or from the
// environment alone when the file does not exist.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("unable to stat config file: %w", err)
		}

		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to load config from env: %w", err)
		}

		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

// OverridePort replaces the game port with the first positional argument.
// The configured port is kept when the argument is not a port number.
func (that *Config) OverridePort(args []string) error {
	if len(args) == 0 {
		return nil
	}

	port, err := strconv.Atoi(args[0])
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidPort, args[0])
	}

	that.Port = strconv.Itoa(port)

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
