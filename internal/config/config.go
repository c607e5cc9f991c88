package config

import (
	"errors"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConf struct {
	Env            string `mapstructure:"env"`
	Port           int    `mapstructure:"port"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds"`
	BodyLimitMB    int    `mapstructure:"body_limit_mb"`
}

type CloudinaryConf struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

type IngestConf struct {
	Provider    string `mapstructure:"provider"`
	ImageFolder string `mapstructure:"image_folder"`
	VideoFolder string `mapstructure:"video_folder"`
}

type AWSConf struct {
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
	Endpoint string `mapstructure:"endpoint"`
}

type DatabaseConf struct {
	Driver string `mapstructure:"driver"`
}

type MongoConf struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type PostgresConf struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConf struct {
	Limit         int    `mapstructure:"limit"`
	WindowSeconds int    `mapstructure:"window_seconds"`
	Prefix        string `mapstructure:"prefix"`
}

type KafkaConf struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type JWTConf struct {
	PublicKeyPath string `mapstructure:"public_key_path"`
}

type Config struct {
	App        AppConf        `mapstructure:"app"`
	Cloudinary CloudinaryConf `mapstructure:"cloudinary"`
	Ingest     IngestConf     `mapstructure:"ingest"`
	AWS        AWSConf        `mapstructure:"aws"`
	Database   DatabaseConf   `mapstructure:"database"`
	Mongo      MongoConf      `mapstructure:"mongodb"`
	Postgres   PostgresConf   `mapstructure:"postgres"`
	Redis      RedisConf      `mapstructure:"redis"`
	RateLimit  RateLimitConf  `mapstructure:"ratelimit"`
	Kafka      KafkaConf      `mapstructure:"kafka"`
	JWT        JWTConf        `mapstructure:"jwt"`
	Log        struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	// derived
	ShutdownTimeout time.Duration
	RateLimitWindow time.Duration
}

const (
	ProviderCloudinary = "cloudinary"
	ProviderS3         = "s3"

	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// envBindings keeps the variable names used by existing deployments working.
var envBindings = map[string][]string{
	"cloudinary.cloud_name": {"NEXT_PUBLIC_CLOUDINARY_CLOUD_NAME", "CLOUDINARY_CLOUD_NAME"},
	"cloudinary.api_key":    {"CLOUDINARY_API_KEY"},
	"cloudinary.api_secret": {"CLOUDINARY_API_SECRET"},
	"mongodb.uri":           {"MONGO_URI"},
	"postgres.dsn":          {"DATABASE_URL"},
	"jwt.public_key_path":   {"JWT_PUBLIC_KEY_PATH"},
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "production")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.body_limit_mb", 0)
	v.SetDefault("ingest.provider", ProviderCloudinary)
	v.SetDefault("ingest.image_folder", "next-cloudinary-uploader")
	v.SetDefault("ingest.video_folder", "video-uploads")
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("mongodb.database", "media")
	v.SetDefault("mongodb.collection", "videos")
	v.SetDefault("kafka.topic", "video.uploaded")
	v.SetDefault("ratelimit.prefix", "upload")

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.App.ShutdownSecond == 0 {
		cfg.App.ShutdownSecond = 15
	}
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	cfg.RateLimitWindow = time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	return &cfg, nil
}

// ValidateIngest reports whether the selected ingestion provider has the
// credentials it needs. Both media kinds share the result.
// BodyLimitBytes is the largest request body the server reads. Zero or less
// means no limit of our own; fiber would otherwise fall back to 4MB.
func (c *Config) BodyLimitBytes() int {
	if c.App.BodyLimitMB <= 0 {
		return math.MaxInt
	}
	return c.App.BodyLimitMB << 20
}

func (c *Config) ValidateIngest() error {
	switch c.Ingest.Provider {
	case ProviderCloudinary:
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			return errors.New("cloudinary cloud_name, api_key and api_secret are required")
		}
	case ProviderS3:
		if c.AWS.Region == "" || c.AWS.Bucket == "" {
			return errors.New("aws region and bucket are required")
		}
	default:
		return errors.New("unknown ingest provider " + c.Ingest.Provider)
	}
	return nil
}
