package config

import (
	"fmt"
	"strings"

	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Client   ClientConfig   `mapstructure:"client"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置（BFF 借阅审计库）
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// AuditConfig 借阅审计配置
type AuditConfig struct {
	RetentionDays        int    `mapstructure:"retention_days"`         // 审计保留天数，<=0 不清理
	PurgeIntervalMinutes int    `mapstructure:"purge_interval_minutes"` // 清理间隔
	AdminToken           string `mapstructure:"admin_token"`            // 审计查询令牌，为空时关闭查询接口
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
}

// LoginRateLimitConfig 登录限流配置
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// UpstreamConfig 后端 REST API 配置
type UpstreamConfig struct {
	BaseURL        string            `mapstructure:"base_url"`
	TimeoutSeconds int               `mapstructure:"timeout_seconds"`
	Endpoints      UpstreamEndpoints `mapstructure:"endpoints"`
}

// UpstreamEndpoints 后端接口路径，:id 为占位符
type UpstreamEndpoints struct {
	Books         string `mapstructure:"books"`
	RecommendBook string `mapstructure:"recommend_books"`
	BookDetail    string `mapstructure:"book_detail"`
	BookByAuthor  string `mapstructure:"book_by_author"`
	BookReview    string `mapstructure:"book_review"`
	Categories    string `mapstructure:"categories"`
	Authors       string `mapstructure:"authors"`
	Profile       string `mapstructure:"profile"`
	MyLoans       string `mapstructure:"my_loans"`
	Login         string `mapstructure:"login"`
	Register      string `mapstructure:"register"`
	PostLoan      string `mapstructure:"post_loan"`
}

// CacheConfig 代理响应缓存配置
type CacheConfig struct {
	ProxyTTLSeconds int `mapstructure:"proxy_ttl_seconds"`
}

// ClientConfig 命令行客户端配置
type ClientConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	StateDriver    string `mapstructure:"state_driver"`
	StateDSN       string `mapstructure:"state_dsn"`
}

// CheckoutConfig 结账配置
type CheckoutConfig struct {
	ClearPolicy     string `mapstructure:"clear_policy"`
	DefaultDuration int    `mapstructure:"default_duration"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	return LoadNamed("config")
}

// LoadNamed 按文件名加载配置
func LoadNamed(name string) *Config {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")     // 从当前目录查找
	v.AddConfigPath("./")    // 备用路径
	v.AddConfigPath("../")   // 如果从 cmd/server 运行
	v.AddConfigPath("./etc") // etc 文件夹
	return load(v)
}

// LoadFile 按指定路径加载配置（命令行 --config）
func LoadFile(path string) *Config {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) *Config {
	setDefaults(v)

	// 环境变量支持
	v.SetEnvPrefix("BOOKY")
	v.AutomaticEnv()                                   // 自动读取环境变量
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.port -> BOOKY_SERVER_PORT

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		logger.Debugw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Debugw("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	cfg.normalize()
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "booky.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/booky_audit.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("audit.retention_days", 90)
	v.SetDefault("audit.purge_interval_minutes", 60)
	v.SetDefault("audit.admin_token", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "booky")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.queues", map[string]int{
		constants.QueueDefault:  10,
		constants.QueueCritical: 5,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_attempts", 10)
	v.SetDefault("upstream.base_url", "http://127.0.0.1:3000/api")
	v.SetDefault("upstream.timeout_seconds", 10)
	v.SetDefault("upstream.endpoints.books", "/books")
	v.SetDefault("upstream.endpoints.recommend_books", "/books/recommend")
	v.SetDefault("upstream.endpoints.book_detail", "/books/:id")
	v.SetDefault("upstream.endpoints.book_by_author", "/authors/:id/books")
	v.SetDefault("upstream.endpoints.book_review", "/reviews/book/:id")
	v.SetDefault("upstream.endpoints.categories", "/categories")
	v.SetDefault("upstream.endpoints.authors", "/authors")
	v.SetDefault("upstream.endpoints.profile", "/me")
	v.SetDefault("upstream.endpoints.my_loans", "/loans/my")
	v.SetDefault("upstream.endpoints.login", "/auth/login")
	v.SetDefault("upstream.endpoints.register", "/auth/register")
	v.SetDefault("upstream.endpoints.post_loan", "/loans")
	v.SetDefault("cache.proxy_ttl_seconds", 60)
	v.SetDefault("client.base_url", "http://127.0.0.1:8080")
	v.SetDefault("client.timeout_seconds", 15)
	v.SetDefault("client.user_agent", "booky-cli/1.0")
	v.SetDefault("client.state_driver", "sqlite")
	v.SetDefault("client.state_dsn", "")
	v.SetDefault("checkout.clear_policy", constants.CartClearPolicyAll)
	v.SetDefault("checkout.default_duration", constants.DefaultBorrowDuration)
}

func (c *Config) normalize() {
	c.Upstream.BaseURL = strings.TrimRight(strings.TrimSpace(c.Upstream.BaseURL), "/")
	c.Client.BaseURL = strings.TrimRight(strings.TrimSpace(c.Client.BaseURL), "/")
	c.Audit.AdminToken = strings.TrimSpace(c.Audit.AdminToken)
	policy := strings.ToLower(strings.TrimSpace(c.Checkout.ClearPolicy))
	if policy != constants.CartClearPolicySubmitted {
		policy = constants.CartClearPolicyAll
	}
	c.Checkout.ClearPolicy = policy
	if !isAllowedDuration(c.Checkout.DefaultDuration) {
		c.Checkout.DefaultDuration = constants.DefaultBorrowDuration
	}
}

func isAllowedDuration(days int) bool {
	for _, d := range constants.BorrowDurations {
		if d == days {
			return true
		}
	}
	return false
}
