package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yuqie6/reme/internal/bootstrap"
	"github.com/yuqie6/reme/internal/httpapi"
	"github.com/yuqie6/reme/internal/pkg/buildinfo"
	"github.com/yuqie6/reme/internal/pkg/config"
)

func main() {
	var cfgPath string
	var listen string
	flag.StringVar(&cfgPath, "c", "", "配置文件路径（默认可执行文件旁 config/config.yaml）")
	flag.StringVar(&listen, "listen", "", "覆盖 server.listen_addr")
	flag.Parse()

	if cfgPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			cfgPath = p
		}
	}
	// 首次启动写出默认配置，方便用户填写 API Key
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
			if err := config.WriteFile(cfgPath, config.Default()); err != nil {
				slog.Warn("写入默认配置失败", "path", cfgPath, "error", err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.NewServerRuntime(ctx, cfgPath)
	if err != nil {
		slog.Error("启动服务失败", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	if listen == "" {
		listen = rt.Cfg.Server.ListenAddr
	}

	slog.Info("RE:ME 启动中...", "name", rt.Cfg.App.Name, "version", buildinfo.String())
	if !rt.Clients.AI.IsConfigured() {
		slog.Warn("AI 未配置，分析类接口将返回错误", "config", cfgPath)
	}

	srv, err := httpapi.Start(ctx, rt, httpapi.Options{ListenAddr: listen, ConfigPath: cfgPath})
	if err != nil {
		slog.Error("启动 HTTP 服务失败", "listen", listen, "error", err)
		os.Exit(1)
	}
	slog.Info("RE:ME 已启动", "url", srv.BaseURL())

	<-ctx.Done()
	slog.Info("收到系统退出信号，正在关闭...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Start 内部也会在 ctx 结束时关闭监听，重复关闭的错误可忽略
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, net.ErrClosed) {
		slog.Warn("关闭 HTTP 服务失败", "error", err)
	}
	slog.Info("RE:ME 已退出")
}
