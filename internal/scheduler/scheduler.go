package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
)

// QuoteWarmer 预生成每日语录
type QuoteWarmer interface {
	WarmAll(ctx context.Context) (int, error)
}

// Scheduler 定时任务：按 cron 表达式预热每日语录
type Scheduler struct {
	mu      sync.Mutex
	cron    *rcron.Cron
	entry   rcron.EntryID
	spec    string
	warmer  QuoteWarmer
	running bool
}

// New 创建调度器；spec 为标准 5 段 cron 表达式
func New(warmer QuoteWarmer, spec string) (*Scheduler, error) {
	if warmer == nil {
		return nil, fmt.Errorf("warmer 不能为空")
	}
	if _, err := rcron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("cron 表达式无效 %q: %w", spec, err)
	}
	return &Scheduler{
		cron:   rcron.New(),
		spec:   spec,
		warmer: warmer,
	}, nil
}

// Start 注册任务并启动；ctx 结束时自动停止
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			slog.Warn("语录预热失败", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("注册定时任务失败: %w", err)
	}
	s.entry = id
	s.cron.Start()
	s.running = true
	slog.Info("调度器已启动", "quote_cron", s.spec, "next", s.next())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cron.Remove(s.entry)
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	slog.Info("调度器已停止")
}

// RunOnce 立即执行一次预热
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := s.warmer.WarmAll(ctx)
	if err != nil {
		return n, err
	}
	slog.Info("每日语录已预热", "users", n, "cost", time.Since(start).String())
	return n, nil
}

// Next 下一次执行时间；未启动返回零值
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next()
}

func (s *Scheduler) next() time.Time {
	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}
