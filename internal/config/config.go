package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Import   ImportConfig   `mapstructure:"import"`   // 批量导入配置
	Export   ExportConfig   `mapstructure:"export"`   // OSC 导出配置
	Stats    StatsConfig    `mapstructure:"stats"`    // 统计刷新配置
	Fetch    FetchConfig    `mapstructure:"fetch"`    // 原始 OSC 文件抓取配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port            int    `mapstructure:"port"`              // 服务端口
	Mode            string `mapstructure:"mode"`              // Gin运行模式：debug/release/test
	LogLevel        string `mapstructure:"log_level"`         // logrus 日志级别
	DefaultPageSize int    `mapstructure:"default_page_size"` // 事件列表默认分页大小
	MaxPageSize     int    `mapstructure:"max_page_size"`     // 事件列表最大分页大小
	EnablePprof     bool   `mapstructure:"enable_pprof"`      // 是否注册 pprof 路由
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`            // postgres / sqlite
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogSQL          bool          `mapstructure:"log_sql"`           // 是否打印SQL
	AutoMigrate     bool          `mapstructure:"auto_migrate"`      // 启动时自动建表
}

// ImportConfig 批量导入配置
type ImportConfig struct {
	DataDir   string `mapstructure:"data_dir"`   // sources.json 等文件所在目录
	BatchSize int    `mapstructure:"batch_size"` // 批量插入大小
}

// ExportConfig OSC 导出配置
type ExportConfig struct {
	OutputDir string   `mapstructure:"output_dir"` // 本地输出目录
	PageSize  int      `mapstructure:"page_size"`  // 每批读取事件数
	S3        S3Config `mapstructure:"s3"`         // 可选：导出到 S3
}

// S3Config S3 兼容对象存储
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Enabled 是否配置了 S3 导出
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// StatsConfig 统计指标刷新配置
type StatsConfig struct {
	Cron string `mapstructure:"cron"` // 刷新 Prometheus 指标的 Cron 表达式，空则不启用
}

// FetchConfig 从 OSC API 抓取原始事件文件
type FetchConfig struct {
	BaseURL string        `mapstructure:"base_url"` // 如 https://api.astrocats.space
	Timeout time.Duration `mapstructure:"timeout"`  // 单次请求超时
	Proxy   string        `mapstructure:"proxy"`    // 可选代理地址
}

// Default 默认配置，config.yaml 缺失的字段以此兜底
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Mode:            "release",
			LogLevel:        "info",
			DefaultPageSize: 10,
			MaxPageSize:     50,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			AutoMigrate:     true,
		},
		Import: ImportConfig{
			DataDir:   "./data",
			BatchSize: 500,
		},
		Export: ExportConfig{
			OutputDir: "./export",
			PageSize:  200,
		},
		Stats: StatsConfig{
			Cron: "*/5 * * * *",
		},
		Fetch: FetchConfig{
			BaseURL: "https://api.astrocats.space",
			Timeout: 30 * time.Second,
		},
	}
}

// LoadConfig 加载配置文件（默认 config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig(path string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	v := viper.New()
	setDefaults(v, Default())

	// 2. 读取 config.yaml
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetEnvPrefix("SNAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.default_page_size", d.Server.DefaultPageSize)
	v.SetDefault("server.max_page_size", d.Server.MaxPageSize)
	v.SetDefault("server.enable_pprof", d.Server.EnablePprof)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime)
	v.SetDefault("database.log_sql", d.Database.LogSQL)
	v.SetDefault("database.auto_migrate", d.Database.AutoMigrate)
	v.SetDefault("import.data_dir", d.Import.DataDir)
	v.SetDefault("import.batch_size", d.Import.BatchSize)
	v.SetDefault("export.output_dir", d.Export.OutputDir)
	v.SetDefault("export.page_size", d.Export.PageSize)
	v.SetDefault("export.s3.endpoint", "")
	v.SetDefault("export.s3.region", "")
	v.SetDefault("export.s3.bucket", "")
	v.SetDefault("export.s3.prefix", "")
	v.SetDefault("export.s3.access_key", "")
	v.SetDefault("export.s3.secret_key", "")
	v.SetDefault("stats.cron", d.Stats.Cron)
	v.SetDefault("fetch.base_url", d.Fetch.BaseURL)
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.proxy", "")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("SNAPI_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SNAPI_S3_ACCESS_KEY"); v != "" {
		cfg.Export.S3.AccessKey = v
	}
	if v := os.Getenv("SNAPI_S3_SECRET_KEY"); v != "" {
		cfg.Export.S3.SecretKey = v
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	if c.Server.DefaultPageSize <= 0 || c.Server.MaxPageSize < c.Server.DefaultPageSize {
		return fmt.Errorf("分页配置无效: default=%d max=%d", c.Server.DefaultPageSize, c.Server.MaxPageSize)
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("import.batch_size 必须大于0")
	}
	return nil
}
