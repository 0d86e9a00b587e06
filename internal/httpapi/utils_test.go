package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yuqie6/reme/internal/service"
)

func TestWriteServiceError_HidesInternalDetail(t *testing.T) {
	cases := []struct {
		err    error
		status int
		want   string
	}{
		{fmt.Errorf("%w: open /var/lib/reme/reme.db: disk I/O error", service.ErrPersistence), http.StatusInternalServerError, "服务内部错误"},
		{fmt.Errorf("%w: upstream 401 invalid api key sk-live-xyz", service.ErrUpstreamAnalysis), http.StatusBadGateway, "上游分析失败，请稍后重试"},
		{fmt.Errorf("unexpected: token=abc"), http.StatusInternalServerError, "服务内部错误"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeServiceError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code)
		assert.JSONEq(t, fmt.Sprintf(`{"error": %q}`, tc.want), rec.Body.String())
	}
}

func TestWriteServiceError_KeepsClientMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, fmt.Errorf("%w: text 不能为空", service.ErrValidation))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text 不能为空")

	rec = httptest.NewRecorder()
	writeServiceError(rec, fmt.Errorf("%w: hobby", service.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "hobby")
}
