package service

import "errors"

// 服务层哨兵错误，HTTP 层用 errors.Is 映射状态码
var (
	ErrValidation       = errors.New("请求参数无效")
	ErrNotFound         = errors.New("资源不存在")
	ErrUpstreamAnalysis = errors.New("AI 分析失败")
	ErrPersistence      = errors.New("持久化失败")
	ErrConflict         = errors.New("资源已存在")
)
