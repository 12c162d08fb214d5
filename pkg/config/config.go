// Package config 提供 TOML 配置加载、环境变量覆盖与基础校验
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 贷款申请服务配置
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 服务版本
	Version string `mapstructure:"version"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// HTTP 服务配置
	HTTP HTTPConfig `mapstructure:"http"`
	// 数据库配置
	Database DatabaseConfig `mapstructure:"database"`
	// Redis 配置
	Redis RedisConfig `mapstructure:"redis"`
	// Kafka 配置
	Kafka KafkaConfig `mapstructure:"kafka"`
	// 日志配置
	Logger LoggerConfig `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
	// 用户服务配置
	UserService UserServiceConfig `mapstructure:"user_service"`
	// 业务配置
	Business BusinessConfig `mapstructure:"business"`
	// 鉴权配置
	Auth AuthConfig `mapstructure:"auth"`
	// 限流配置
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// 缓存配置
	Cache CacheConfig `mapstructure:"cache"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	// 监听地址
	Host string `mapstructure:"host"`
	// 监听端口
	Port int `mapstructure:"port"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout"`
	// 优雅关停超时（秒）
	ShutdownTimeout int `mapstructure:"shutdown_timeout"`
}

// Addr 返回监听地址
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 驱动：mysql, postgres
	Driver string `mapstructure:"driver"`
	// 数据源名称
	DSN string `mapstructure:"dsn"`
	// 最大连接数
	MaxOpenConns int `mapstructure:"max_open_conns"`
	// 最大空闲连接数
	MaxIdleConns int `mapstructure:"max_idle_conns"`
	// 连接最大生命周期（秒）
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"`
	// 是否启用 SQL 日志
	LogEnabled bool `mapstructure:"log_enabled"`
	// 慢查询阈值（毫秒）
	SlowQueryThreshold int `mapstructure:"slow_query_threshold"`
	// 启动时自动迁移
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	MaxPoolSize  int    `mapstructure:"max_pool_size"`
	ConnTimeout  int    `mapstructure:"conn_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	// Broker 地址列表
	Brokers []string `mapstructure:"brokers"`
	// Consumer Group ID
	GroupID string `mapstructure:"group_id"`
	// 消费者超时（秒）
	SessionTimeout int `mapstructure:"session_timeout"`
	// 生产者最大尝试次数（由 kafka-go 内部处理）
	MaxAttempts int `mapstructure:"max_attempts"`
	// 写回退（毫秒）
	WriteBackoff int `mapstructure:"write_backoff"`
	// 容量校验请求主题
	CapacityTopic string `mapstructure:"capacity_topic"`
	// 状态变更通知主题
	NotificationTopic string `mapstructure:"notification_topic"`
	// 自动审批决策主题
	DecisionTopic string `mapstructure:"decision_topic"`
	// 死信主题
	DeadLetterTopic string `mapstructure:"dead_letter_topic"`
	// 是否启动决策消费者
	ConsumerEnabled bool `mapstructure:"consumer_enabled"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	WithCaller bool   `mapstructure:"with_caller"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled"`
	// Prometheus 监听端口
	Port int `mapstructure:"port"`
	// 指标路径
	Path string `mapstructure:"path"`
}

// UserServiceConfig 用户（身份）服务客户端配置
type UserServiceConfig struct {
	// 基础地址
	BaseURL string `mapstructure:"base_url"`
	// 请求超时（毫秒）
	Timeout int `mapstructure:"timeout"`
	// 熔断：连续失败次数阈值
	BreakerFailures int `mapstructure:"breaker_failures"`
	// 熔断：打开状态持续时间（秒）
	BreakerOpenSeconds int `mapstructure:"breaker_open_seconds"`
}

// BusinessConfig 业务配置
type BusinessConfig struct {
	// 业务时区
	Timezone string `mapstructure:"timezone"`
}

// AuthConfig JWT 鉴权配置
type AuthConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled"`
	// HS256 密钥
	JWTSecret string `mapstructure:"jwt_secret"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// 全局按 IP 限流
	QPS   int `mapstructure:"qps"`
	Burst int `mapstructure:"burst"`
	// 每个申请人每分钟可提交的申请数，0 表示不限制
	SubmissionsPerMinute int `mapstructure:"submissions_per_minute"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	// 贷款类型缓存 TTL（秒），0 表示不启用缓存
	LoanTypeTTL int `mapstructure:"loan_type_ttl"`
}

// Load 从 TOML 文件加载配置，文件缺失时使用默认值，支持环境变量覆盖
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 自动绑定环境变量（APP_HTTP_PORT 覆盖 http.port）；仅对已有默认值或文件值的键生效
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required for %s driver", c.Database.Driver)
	}
	if c.UserService.BaseURL == "" {
		return fmt.Errorf("user_service.base_url is required")
	}
	if c.Business.Timezone == "" {
		return fmt.Errorf("business.timezone is required")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "loanapplication")
	v.SetDefault("version", "")
	v.SetDefault("environment", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)
	v.SetDefault("http.shutdown_timeout", 10)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.log_enabled", false)
	v.SetDefault("database.slow_query_threshold", 1000)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.conn_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "loanapplication")
	v.SetDefault("kafka.session_timeout", 10)
	v.SetDefault("kafka.max_attempts", 3)
	v.SetDefault("kafka.write_backoff", 100)
	v.SetDefault("kafka.capacity_topic", "loan.capacity.requests")
	v.SetDefault("kafka.notification_topic", "loan.status.notifications")
	v.SetDefault("kafka.decision_topic", "loan.capacity.decisions")
	v.SetDefault("kafka.dead_letter_topic", "loan.capacity.decisions.dlq")
	v.SetDefault("kafka.consumer_enabled", true)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/app.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("user_service.base_url", "")
	v.SetDefault("user_service.timeout", 3000)
	v.SetDefault("user_service.breaker_failures", 5)
	v.SetDefault("user_service.breaker_open_seconds", 30)

	v.SetDefault("business.timezone", "America/Bogota")

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.qps", 50)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("rate_limit.submissions_per_minute", 5)

	v.SetDefault("cache.loan_type_ttl", 600)
}
