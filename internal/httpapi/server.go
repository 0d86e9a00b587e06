package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yuqie6/reme/internal/bootstrap"
	"github.com/yuqie6/reme/internal/scheduler"
)

type Server struct {
	ln      net.Listener
	srv     *http.Server
	baseURL string
}

type Options struct {
	ListenAddr string // e.g. "127.0.0.1:8080"
	ConfigPath string
}

// Start 监听并在后台提供 HTTP 服务；ctx 结束时优雅关闭
func Start(ctx context.Context, rt *bootstrap.ServerRuntime, opts Options) (*Server, error) {
	if rt == nil {
		return nil, fmt.Errorf("rt 不能为空")
	}
	if strings.TrimSpace(opts.ListenAddr) == "" {
		opts.ListenAddr = "127.0.0.1:0"
	}

	ln, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           NewHandler(rt.Core, rt.Scheduler, opts.ConfigPath),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s := &Server{
		ln:      ln,
		srv:     srv,
		baseURL: "http://" + ln.Addr().String(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server 异常退出", "error", err)
		}
	}()

	slog.Info("HTTP 已启动", "base_url", s.baseURL)
	return s, nil
}

func (s *Server) BaseURL() string {
	if s == nil {
		return ""
	}
	return s.baseURL
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// NewHandler 构建路由；sched 可为 nil
func NewHandler(core *bootstrap.Core, sched *scheduler.Scheduler, cfgPath string) http.Handler {
	api := newAPI(core, sched, cfgPath)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", api.handleHealth)
	mux.HandleFunc("GET /api/events", api.handleSSE)
	api.registerJSONRoutes(mux)
	return withRecover(mux)
}

type apiServer struct {
	core      *bootstrap.Core
	sched     *scheduler.Scheduler
	cfgPath   string
	startTime time.Time
}

func newAPI(core *bootstrap.Core, sched *scheduler.Scheduler, cfgPath string) *apiServer {
	return &apiServer{
		core:      core,
		sched:     sched,
		cfgPath:   cfgPath,
		startTime: time.Now(),
	}
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"name":       a.core.Cfg.App.Name,
		"version":    a.core.Cfg.App.Version,
		"safe_mode":  a.core.DB.SafeMode,
		"started_at": a.startTime.Format(time.RFC3339),
	})
}

// handleSSE 推送事件；?user_id= 只推该用户的事件，?types=a,b 只推指定类型
func (a *apiServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "stream not supported")
		return
	}

	q := r.URL.Query()
	wanted := parseTypeFilter(q.Get("types"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	sub := a.core.Hub.Subscribe(ctx, strings.TrimSpace(q.Get("user_id")), 32)

	var seq int64
	writeSSE(w, "ready", seq, []byte("{}"))
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeSSE(w, "ping", 0, []byte("{}"))
			flusher.Flush()
		case evt, ok := <-sub:
			if !ok {
				return
			}
			if len(wanted) > 0 && !wanted[evt.Type] {
				continue
			}
			b, err := json.Marshal(evt)
			if err != nil {
				slog.Warn("序列化事件失败", "type", evt.Type, "error", err)
				continue
			}
			seq++
			writeSSE(w, evt.Type, seq, b)
			flusher.Flush()
		}
	}
}

// writeSSE 写一帧；id 为 0 时不写 id 行
func writeSSE(w io.Writer, name string, id int64, data []byte) {
	var buf strings.Builder
	if id > 0 {
		fmt.Fprintf(&buf, "id: %d\n", id)
	}
	buf.WriteString("event: " + sanitizeSSEName(name) + "\n")
	buf.WriteString("data: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	_, _ = io.WriteString(w, buf.String())
}

func parseTypeFilter(raw string) map[string]bool {
	out := map[string]bool{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out[t] = true
		}
	}
	return out
}

func sanitizeSSEName(name string) string {
	n := strings.NewReplacer("\n", "", "\r", "").Replace(strings.TrimSpace(name))
	if n == "" {
		return "message"
	}
	return n
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				slog.Error("handler panic", "path", r.URL.Path, "panic", v)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
