package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// DefaultConfigPath 可执行文件旁的 config/config.yaml
func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

// WriteFile 把配置写成 YAML
func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
			"log_path":  cfg.App.LogPath,
		},
		"server": map[string]any{
			"listen_addr": cfg.Server.ListenAddr,
		},
		"storage": map[string]any{
			"db_path":     cfg.Storage.DBPath,
			"memory_path": cfg.Storage.MemoryPath,
		},
		"ai": map[string]any{
			"provider":            cfg.AI.Provider,
			"api_key":             cfg.AI.APIKey,
			"base_url":            cfg.AI.BaseURL,
			"model":               cfg.AI.Model,
			"embedding_model":     cfg.AI.EmbeddingModel,
			"temperature":         cfg.AI.Temperature,
			"max_tokens":          cfg.AI.MaxTokens,
			"requests_per_second": cfg.AI.RequestsPerSecond,
			"burst":               cfg.AI.Burst,
			"timeout_sec":         cfg.AI.TimeoutSec,
			"max_retries":         cfg.AI.MaxRetries,
		},
		"pipeline": map[string]any{
			"split_confidence":  cfg.Pipeline.SplitConfidence,
			"depth_bonus_chars": cfg.Pipeline.DepthBonusChars,
			"fragment_workers":  cfg.Pipeline.FragmentWorkers,
		},
		"scheduler": map[string]any{
			"enabled":    cfg.Scheduler.Enabled,
			"quote_cron": cfg.Scheduler.QuoteCron,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
