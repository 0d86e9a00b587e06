package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	AI        AIConfig        `mapstructure:"ai"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath     string `mapstructure:"db_path"`
	MemoryPath string `mapstructure:"memory_path"` // 向量记忆库目录
}

// AIConfig AI 配置
type AIConfig struct {
	Provider          string  `mapstructure:"provider"`
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"`
	Model             string  `mapstructure:"model"`
	EmbeddingModel    string  `mapstructure:"embedding_model"`
	Temperature       float64 `mapstructure:"temperature"`
	MaxTokens         int     `mapstructure:"max_tokens"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	TimeoutSec        int     `mapstructure:"timeout_sec"`
	MaxRetries        int     `mapstructure:"max_retries"`
}

// Timeout 请求超时
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// PipelineConfig 活动经验流水线配置
type PipelineConfig struct {
	SplitConfidence float64 `mapstructure:"split_confidence"`
	DepthBonusChars int     `mapstructure:"depth_bonus_chars"`
	FragmentWorkers int     `mapstructure:"fragment_workers"`
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	QuoteCron string `mapstructure:"quote_cron"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

func newViper(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量 REME_AI_API_KEY 等
	v.SetEnvPrefix("REME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else if configPath != "" && os.IsNotExist(err) {
			slog.Warn("配置文件不存在，使用默认配置", "path", configPath)
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理环境变量占位符
	cfg.AI.APIKey = expandEnv(cfg.AI.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if p := strings.ToLower(strings.TrimSpace(c.AI.Provider)); p != "" && p != "openai" {
		return fmt.Errorf("不支持的 ai.provider: %s", c.AI.Provider)
	}
	if c.Pipeline.SplitConfidence < 0 || c.Pipeline.SplitConfidence > 1 {
		return fmt.Errorf("pipeline.split_confidence 必须在 [0,1] 内: %v", c.Pipeline.SplitConfidence)
	}
	if c.Pipeline.DepthBonusChars < 0 {
		return fmt.Errorf("pipeline.depth_bonus_chars 不能为负")
	}
	return nil
}

// Default 返回默认配置（首次启动写盘用）
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "reme")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_path", "")

	// Server
	v.SetDefault("server.listen_addr", "127.0.0.1:8080")

	// Storage
	v.SetDefault("storage.db_path", "./data/reme.db")
	v.SetDefault("storage.memory_path", "./data/memory")

	// AI
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("ai.base_url", "https://api.openai.com")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.embedding_model", "text-embedding-3-small")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_tokens", 1000)
	v.SetDefault("ai.requests_per_second", 2)
	v.SetDefault("ai.burst", 4)
	v.SetDefault("ai.timeout_sec", 60)
	v.SetDefault("ai.max_retries", 2)

	// Pipeline
	v.SetDefault("pipeline.split_confidence", 0.75)
	v.SetDefault("pipeline.depth_bonus_chars", 100)
	v.SetDefault("pipeline.fragment_workers", 3)

	// Scheduler
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.quote_cron", "0 6 * * *")
}

// Watch 监听配置文件变更；目前只有日志级别支持热更新
func Watch(configPath string, onChange func(*Config)) error {
	v, err := newViper(configPath)
	if err != nil {
		return err
	}
	if v.ConfigFileUsed() == "" {
		return fmt.Errorf("没有可监听的配置文件")
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			slog.Warn("重新加载配置失败", "file", e.Name, "error", err)
			return
		}
		slog.Info("配置文件已变更", "file", e.Name)
		if onChange != nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
	return nil
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return s
}

// LoggerOptions 日志配置
type LoggerOptions struct {
	Level     string
	Path      string // 为空时输出到 stdout
	Component string
}

var logLevel = new(slog.LevelVar)

// SetupLogger 根据配置设置默认 logger；写文件时返回需要关闭的 Closer
func SetupLogger(opts LoggerOptions) (io.Closer, error) {
	SetLogLevel(opts.Level)

	var (
		out    io.Writer = os.Stdout
		closer io.Closer
	)
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		out, closer = f, f
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: logLevel}))
	if opts.Component != "" {
		logger = logger.With("component", opts.Component)
	}
	slog.SetDefault(logger)
	return closer, nil
}

// SetLogLevel 运行时调整日志级别
func SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "warn":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
	}
}
