package bootstrap

import (
	"context"
	"log/slog"

	"github.com/yuqie6/reme/internal/pkg/config"
	"github.com/yuqie6/reme/internal/scheduler"
)

// ServerRuntime 服务端运行时：Core + 定时任务 + 配置热更新
type ServerRuntime struct {
	*Core
	Scheduler *scheduler.Scheduler
}

// NewServerRuntime 构建并启动后台任务；ctx 结束时后台任务随之停止
func NewServerRuntime(ctx context.Context, cfgPath string) (*ServerRuntime, error) {
	core, err := NewCore(cfgPath)
	if err != nil {
		return nil, err
	}
	rt := &ServerRuntime{Core: core}

	if core.Cfg.Scheduler.Enabled {
		if !core.Clients.AI.IsConfigured() {
			slog.Warn("AI 未配置，跳过语录预热任务")
		} else {
			s, err := scheduler.New(core.Services.Quotes, core.Cfg.Scheduler.QuoteCron)
			if err != nil {
				_ = core.Close()
				return nil, err
			}
			if err := s.Start(ctx); err != nil {
				_ = core.Close()
				return nil, err
			}
			rt.Scheduler = s
		}
	}

	// 日志级别支持热更新，其余配置需重启
	if err := config.Watch(cfgPath, func(cfg *config.Config) {
		config.SetLogLevel(cfg.App.LogLevel)
	}); err != nil {
		slog.Debug("配置热更新未启用", "error", err)
	}

	return rt, nil
}

// Close 停止后台任务并释放资源
func (rt *ServerRuntime) Close() error {
	if rt == nil {
		return nil
	}
	if rt.Scheduler != nil {
		rt.Scheduler.Stop()
	}
	return rt.Core.Close()
}
