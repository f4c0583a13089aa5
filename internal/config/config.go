package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	Storage       StorageConfig
	Tracing       TracingConfig `mapstructure:"tracing"`
	Redis         RedisConfig
	Mail          MailConfig          `mapstructure:"mail"`
	Grading       GradingConfig       `mapstructure:"grading"`
	PasswordReset PasswordResetConfig `mapstructure:"password_reset"`
	Rollbar       RollbarConfig       `mapstructure:"rollbar"`
	CORS          CORSConfig          `mapstructure:"cors"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool   `mapstructure:"-"`
	MigrateOnly  bool   `mapstructure:"-"`
	Path         string `mapstructure:"-"` // 配置文件所在目录
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type              string   `mapstructure:"type"`
	LocalPath         string   `mapstructure:"local_path"`
	MaxUploadMB       int64    `mapstructure:"max_upload_mb"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MinioEndpoint     string   `mapstructure:"minio_endpoint"`
	MinioAccessID     string   `mapstructure:"minio_access_key"`
	MinioSecret       string   `mapstructure:"minio_secret_key"`
	MinioBucket       string   `mapstructure:"minio_bucket"`
	MinioUseSSL       bool     `mapstructure:"minio_use_ssl"`
	OSSEndpoint       string   `mapstructure:"oss_endpoint"`
	OSSAccessKey      string   `mapstructure:"oss_access_key"`
	OSSSecretKey      string   `mapstructure:"oss_secret_key"`
	OSSBucket         string   `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type MailConfig struct {
	Driver          string `mapstructure:"driver"` // console | sendgrid
	AppName         string `mapstructure:"app_name"`
	FromEmail       string `mapstructure:"from_email"`
	SendgridAPIKey  string `mapstructure:"sendgrid_api_key"`
	FrontendBaseURL string `mapstructure:"frontend_base_url"`
}

// GradingConfig 可热更新
type GradingConfig struct {
	Scale  string `mapstructure:"scale"`  // literal | percent
	Policy string `mapstructure:"policy"` // append | overwrite
}

type PasswordResetConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RollbarConfig struct {
	Token       string `mapstructure:"token"`
	Environment string `mapstructure:"environment"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5555")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("jwt.expire_hours", 1)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("storage.max_upload_mb", 16)
	v.SetDefault("storage.allowed_extensions", []string{".pdf", ".docx", ".txt"})
	v.SetDefault("mail.driver", "console")
	v.SetDefault("mail.app_name", "SecLink Kenya")
	v.SetDefault("mail.from_email", "noreply@localhost")
	v.SetDefault("mail.frontend_base_url", "http://localhost:3000")
	v.SetDefault("grading.scale", "literal")
	v.SetDefault("grading.policy", "append")
	v.SetDefault("password_reset.ttl", time.Hour)
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load(filepath.Join(path, ".env"), ".env")

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SECLINK")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.local_path", "UPLOAD_FOLDER")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Mail
	v.BindEnv("mail.driver", "MAIL_DRIVER")
	v.BindEnv("mail.sendgrid_api_key", "SENDGRID_API_KEY")
	v.BindEnv("mail.from_email", "MAIL_FROM")

	// Grading
	v.BindEnv("grading.scale", "GRADING_SCALE")
	v.BindEnv("grading.policy", "GRADING_POLICY")

	// Rollbar
	v.BindEnv("rollbar.token", "ROLLBAR_TOKEN")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件时仅使用默认值与环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}
	switch c.Grading.Scale {
	case "literal", "percent":
	default:
		return fmt.Errorf("unknown grading scale %q", c.Grading.Scale)
	}
	switch c.Grading.Policy {
	case "append", "overwrite":
	default:
		return fmt.Errorf("unknown grading policy %q", c.Grading.Policy)
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}
