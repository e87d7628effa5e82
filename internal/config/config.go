package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 外部服务在 services 下的键名
const (
	ServiceDealogic = "dealogic" // 投资人目录服务
	ServiceIRM      = "irm"      // 机构/股东组映射服务
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server            ServerConfig             `mapstructure:"server"`             // 服务器配置
	Database          DatabaseConfig           `mapstructure:"database"`           // PostgreSQL配置
	Services          map[string]ServiceConfig `mapstructure:"services"`           // 外部服务独立配置
	DirectoryProvider string                   `mapstructure:"directory_provider"` // 目录服务实现（对应 services 下的键）
	Mapping           MappingConfig            `mapstructure:"mapping"`            // 映射服务缓存/校验策略
	Redis             RedisConfig              `mapstructure:"redis"`              // Redis配置（映射缓存用，可选）
	Log               LogConfig                `mapstructure:"log"`                // 日志配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int      `mapstructure:"port"`         // 服务端口
	Mode        string   `mapstructure:"mode"`         // Gin运行模式：debug/release/test
	CORSOrigins []string `mapstructure:"cors_origins"` // 允许的跨域来源
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogLevel        string        `mapstructure:"log_level"`         // GORM日志级别：silent/error/warn/info
}

// ServiceConfig 单个外部服务的独立配置
type ServiceConfig struct {
	BaseURL   string `mapstructure:"base_url"`   // API基础地址
	Timeout   int    `mapstructure:"timeout"`    // 请求超时（秒）
	AuthToken string `mapstructure:"auth_token"` // Bearer Token
	Proxy     string `mapstructure:"proxy"`      // 代理地址
}

// MappingConfig 映射查询的新鲜度窗口与写后复核
type MappingConfig struct {
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`          // 0 表示不缓存
	VerifyAfterWrite bool          `mapstructure:"verify_after_write"` // 写入后重新查询映射并记录漂移
}

// RedisConfig Redis连接配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录加载 config.yaml
func LoadConfigFrom(dir string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	v.SetTypeByDefaultValue(true)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("directory_provider", ServiceDealogic)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if cfg.Services == nil {
		cfg.Services = make(map[string]ServiceConfig)
	}
	if d, ok := cfg.Services[ServiceDealogic]; ok {
		if v := os.Getenv("DEALOGIC_AUTH_TOKEN"); v != "" {
			d.AuthToken = v
		}
		if v := os.Getenv("DEALOGIC_PROXY"); v != "" {
			d.Proxy = v
		}
		cfg.Services[ServiceDealogic] = d
	}
	if m, ok := cfg.Services[ServiceIRM]; ok {
		if v := os.Getenv("IRM_AUTH_TOKEN"); v != "" {
			m.AuthToken = v
		}
		cfg.Services[ServiceIRM] = m
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
}

// Service 取外部服务配置，不存在时返回零值
func (c *Config) Service(name string) ServiceConfig {
	if c == nil || c.Services == nil {
		return ServiceConfig{}
	}
	return c.Services[name]
}
