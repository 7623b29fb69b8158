package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"

	DefaultTokenSecret = "change-me"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	TimeZone    string            `yaml:"time_zone" env:"TIME_ZONE" env-default:"Local"`
	HTTP        HTTPConfig        `yaml:"http"`
	Storage     StorageConfig     `yaml:"storage"`
	FileStorage FileStorageConfig `yaml:"file_storage"`
	Redis       RedisConf         `yaml:"redis"`
	Auth        AuthConfig        `yaml:"auth"`
}

type HTTPConfig struct {
	Host         string        `yaml:"host" env:"HTTP_HOST"`
	Port         string        `yaml:"port" env:"PORT" env-default:"5000"`
	Timeout      time.Duration `yaml:"timeout" env-default:"30s"`
	AllowOrigins []string      `yaml:"allow_origins" env:"HTTP_ALLOW_ORIGINS" env-default:"http://localhost:5173"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	DSN    string `yaml:"dsn" env:"STORAGE_DSN"`
}

type FileStorageConfig struct {
	BaseDir  string `yaml:"base_dir" env:"UPLOADS_DIR" env-default:"./uploads"`
	BaseURL  string `yaml:"base_url" env-default:"/uploads"`
	MaxSize  int64  `yaml:"max_size" env-default:"10485760"`
	MaxFiles int    `yaml:"max_files" env-default:"10"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
	KeyPrefix     string `yaml:"key_prefix" env-default:"imagenote"`
}

type AuthConfig struct {
	TokenSecret  string        `yaml:"token_secret" env:"TOKEN_SECRET" env-default:"change-me"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"12h"`
	RequireAdmin bool          `yaml:"require_admin" env:"REQUIRE_ADMIN"`
}

func MustLoad() *Config {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	path := fetchConfigPath()
	if path == "" {
		return MustLoadEnv()
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	cfg.mustBeSafe()

	return &cfg
}

// MustLoadEnv builds the config from environment variables and defaults only.
func MustLoadEnv() *Config {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("cannot read config from env: " + err.Error())
	}

	cfg.mustBeSafe()

	return &cfg
}

// mustBeSafe refuses an admin gate whose signing secret is the public default.
func (c *Config) mustBeSafe() {
	if c.Auth.RequireAdmin && (c.Auth.TokenSecret == "" || c.Auth.TokenSecret == DefaultTokenSecret) {
		panic("auth.require_admin is set but auth.token_secret is the default; set TOKEN_SECRET")
	}
}

// Location resolves TimeZone, falling back to local time.
func (c *Config) Location() *time.Location {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}

	return loc
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
