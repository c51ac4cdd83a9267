package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: MOVIEMAP_DATA_PATH -> data.path.
const EnvPrefix = "MOVIEMAP"

// Config holds all application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Ranking  RankingConfig  `mapstructure:"ranking"`
	Output   OutputConfig   `mapstructure:"output"`
	Publish  PublishConfig  `mapstructure:"publish"`
	Log      LogConfig      `mapstructure:"log"`
}

type DataConfig struct {
	Path        string `mapstructure:"path"`
	HeaderLines int    `mapstructure:"header_lines"`
	Charset     string `mapstructure:"charset"`
}

type GeocoderConfig struct {
	URL         string        `mapstructure:"url"`
	UserAgent   string        `mapstructure:"user_agent"`
	MinInterval time.Duration `mapstructure:"min_interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type RankingConfig struct {
	Limit int `mapstructure:"limit"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
	GPX bool   `mapstructure:"gpx"`
}

type PublishConfig struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether maps should be uploaded after saving.
func (p PublishConfig) Enabled() bool {
	return p.Bucket != ""
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Option func(*viper.Viper)

// Override sets key to value with the highest precedence, as a command line
// flag would.
func Override(key string, value any) Option {
	return func(v *viper.Viper) {
		v.Set(key, value)
	}
}

// Load reads configuration from an optional .env file, an optional YAML file
// and environment variables, in increasing order of precedence. When path is
// empty, movie-map.yaml is looked up in . and ./configs.
func Load(path string, opts ...Option) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	v := viper.New()

	v.SetDefault("data.path", "locations.list")
	v.SetDefault("data.header_lines", 14)
	v.SetDefault("data.charset", "utf-8")
	v.SetDefault("geocoder.url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("geocoder.user_agent", "web_map")
	v.SetDefault("geocoder.min_interval", time.Second)
	v.SetDefault("geocoder.timeout", 10*time.Second)
	v.SetDefault("ranking.limit", 10)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.gpx", false)
	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.endpoint", "")
	v.SetDefault("publish.access_key", "")
	v.SetDefault("publish.secret_key", "")
	v.SetDefault("publish.use_ssl", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("movie-map")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// storage credentials are usually shared with other MinIO clients
	for key, env := range map[string]string{
		"publish.endpoint":   "MINIO_ENDPOINT",
		"publish.access_key": "MINIO_ACCESS_KEY",
		"publish.secret_key": "MINIO_SECRET_KEY",
		"publish.use_ssl":    "MINIO_USE_SSL",
	} {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, err
		}
	}

	for _, f := range opts {
		f(v)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Data.Path == "" {
		errs = append(errs, "data.path is required")
	}
	if c.Data.HeaderLines < 0 {
		errs = append(errs, fmt.Sprintf("data.header_lines must not be negative, got %d", c.Data.HeaderLines))
	}
	if c.Geocoder.URL == "" {
		errs = append(errs, "geocoder.url is required")
	}
	if c.Geocoder.UserAgent == "" {
		errs = append(errs, "geocoder.user_agent is required")
	}
	if c.Geocoder.MinInterval < time.Second {
		errs = append(errs, fmt.Sprintf("geocoder.min_interval must be at least 1s, got %s", c.Geocoder.MinInterval))
	}
	if c.Geocoder.Timeout <= 0 {
		errs = append(errs, "geocoder.timeout must be positive")
	}
	if c.Ranking.Limit <= 0 {
		errs = append(errs, fmt.Sprintf("ranking.limit must be positive, got %d", c.Ranking.Limit))
	}
	if c.Publish.Enabled() {
		if c.Publish.Endpoint == "" {
			errs = append(errs, "publish.endpoint is required when publish.bucket is set")
		}
		if c.Publish.AccessKey == "" || c.Publish.SecretKey == "" {
			errs = append(errs, "publish.access_key and publish.secret_key are required when publish.bucket is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
