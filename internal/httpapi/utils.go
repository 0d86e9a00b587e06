package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuqie6/reme/internal/dto"
	"github.com/yuqie6/reme/internal/schema"
	"github.com/yuqie6/reme/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeServiceError 服务层哨兵错误 → HTTP 状态码
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= 500 {
		// 细节只进日志，不回显给客户端
		slog.Error("请求处理失败", "status", status, "error", err)
		writeError(w, status, publicMessage(status))
		return
	}
	writeError(w, status, err.Error())
}

func publicMessage(status int) string {
	if status == http.StatusBadGateway {
		return "上游分析失败，请稍后重试"
	}
	return "服务内部错误"
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUpstreamAnalysis):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func readJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func parseIntParam(value string, def, maxVal int) (int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("参数不是整数: %s", v)
	}
	if n < 1 || n > maxVal {
		return 0, fmt.Errorf("参数超出范围 [1,%d]: %d", maxVal, n)
	}
	return n, nil
}

func toHobbyDTO(d service.HobbyDetail) dto.HobbyDTO {
	return dto.HobbyDTO{
		ID:              d.ID,
		UserID:          d.UserID,
		Name:            d.Name,
		Category:        d.Category,
		Description:     d.Description,
		Level:           d.Level,
		Exp:             d.Exp,
		Subskills:       nonNilStrings(d.Meta.Subskills),
		LevelThresholds: d.Meta.LevelThresholds,
		Progress: dto.ProgressDTO{
			Level:           d.Progress.Level,
			CurrentLevelExp: d.Progress.CurrentLevelExp,
			NextLevelExp:    d.Progress.NextLevelExp,
			Percent:         d.Progress.Percent,
		},
		CreatedAt: d.CreatedAt.UnixMilli(),
	}
}

func toBriefs(items []service.ScoredActivity) []dto.ActivityBriefDTO {
	out := make([]dto.ActivityBriefDTO, 0, len(items))
	for _, a := range items {
		out = append(out, dto.ActivityBriefDTO{Summary: a.Summary, Skills: nonNilStrings(a.Skills), ExpGained: a.ExpGained})
	}
	return out
}

func toActivityLogDTO(l schema.ActivityLog) dto.ActivityLogDTO {
	return dto.ActivityLogDTO{
		ID:        l.ID,
		HobbyID:   l.HobbyID,
		Text:      l.Text,
		ImagePath: l.ImagePath,
		Summary:   l.AISummary,
		Skills:    nonNilStrings(l.AISkills),
		ExpGained: l.ExpGained,
		Source:    l.Source,
		CreatedAt: l.CreatedAt.UnixMilli(),
	}
}

func toProfileDTO(p *schema.Profile) dto.ProfileDTO {
	return dto.ProfileDTO{
		ID:           p.ID,
		DisplayName:  p.DisplayName,
		MBTI:         p.MBTI,
		Age:          p.Age,
		ReminderTime: p.ReminderTime,
	}
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
