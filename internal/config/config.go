package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Redis   RedisConfig   `mapstructure:"redis"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Catalog []domain.Seed `mapstructure:"catalog"`
}

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	APIPort int    `mapstructure:"api_port"`
	WSPort  int    `mapstructure:"ws_port"`
}

// RedisConfig configures the optional bid-event mirror. An empty address
// disables it.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MySQLConfig configures the optional catalog source. An empty DSN means the
// auction set comes from the catalog section instead.
type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.api_port", 8080)
	viper.SetDefault("server.ws_port", 8081)
	viper.SetDefault("redis.address", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("mysql.dsn", "")
	viper.SetDefault("mysql.max_open_conns", 25)
	viper.SetDefault("mysql.max_idle_conns", 10)
	viper.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("catalog", []map[string]interface{}{
		{
			"id":             "auction-1",
			"title":          "Vintage Camera",
			"starting_price": 5000,
			"min_increment":  500,
			"duration":       "30m",
		},
		{
			"id":             "auction-2",
			"title":          "Signed First Edition",
			"starting_price": 12000,
			"min_increment":  1000,
			"duration":       "1h",
		},
	})

	// Configuration file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/auctionmania/")

	// Environment variable support
	viper.AutomaticEnv()

	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.api_port", "SERVER_API_PORT")
	viper.BindEnv("server.ws_port", "SERVER_WS_PORT")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("mysql.max_open_conns", "MYSQL_MAX_OPEN_CONNS")
	viper.BindEnv("mysql.max_idle_conns", "MYSQL_MAX_IDLE_CONNS")
	viper.BindEnv("mysql.conn_max_lifetime", "MYSQL_CONN_MAX_LIFETIME")

	// Read configuration file (optional - will use defaults/env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"API: %s:%d, WS: %s:%d, Redis: %q, MySQL: %q, Auctions: %d",
		c.Server.Host, c.Server.APIPort,
		c.Server.Host, c.Server.WSPort,
		c.Redis.Address, c.MySQL.DSN, len(c.Catalog),
	)
}
