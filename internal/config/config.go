package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
	Render     Render `yaml:"render"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Game holds the four board rule parameters. Defaults match the classic
// 5x5, four-in-a-row setup with five obstacles.
type Game struct {
	Rows      int `yaml:"rows" env-default:"5"`
	Cols      int `yaml:"cols" env-default:"5"`
	WinLength int `yaml:"win-length" env-default:"4"`
	Obstacles int `yaml:"obstacles" env-default:"5"`
}

// Render holds the geometry constants shared with presentation clients so
// that pointer coordinates sent back by a client map onto board cells.
type Render struct {
	CellSize int `yaml:"cell-size" env-default:"80"`
	Margin   int `yaml:"margin" env-default:"5"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
