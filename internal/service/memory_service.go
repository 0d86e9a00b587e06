package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	chromem "github.com/philippgille/chromem-go"
)

// 记忆类型
const (
	MemoryKindActivity   = "activity"
	MemoryKindReflection = "reflection"
	MemoryKindMoment     = "moment"
)

const (
	memoryCollection     = "memories"
	defaultMinSimilarity = 0.7
	defaultMemoryTopK    = 5
	memoryMetaUser       = "user_id"
	memoryMetaType       = "type"
	memoryMetaDate       = "date"
)

// MemoryDoc 一条待索引的记忆
type MemoryDoc struct {
	ID      string
	UserID  string
	Kind    string
	Content string
}

// MemoryResult 记忆查询结果
type MemoryResult struct {
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`
	Type       string  `json:"type"`
	Date       string  `json:"date"`
}

// MemoryConfig 配置
type MemoryConfig struct {
	StoragePath   string  // 为空时使用内存库
	MinSimilarity float32 // 默认 0.7
}

// MemoryService 长期记忆：活动/反思/时刻的向量检索
type MemoryService struct {
	db            *chromem.DB
	collection    *chromem.Collection
	embedder      Embedder
	minSimilarity float32
}

// NewMemoryService 创建记忆服务
func NewMemoryService(embedder Embedder, cfg *MemoryConfig) (*MemoryService, error) {
	if cfg == nil {
		cfg = &MemoryConfig{}
	}

	var db *chromem.DB
	if cfg.StoragePath == "" {
		db = chromem.NewDB()
	} else {
		// 确保目录存在
		if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
			return nil, fmt.Errorf("创建记忆存储目录失败: %w", err)
		}
		var err error
		db, err = chromem.NewPersistentDB(cfg.StoragePath, false)
		if err != nil {
			return nil, fmt.Errorf("创建向量数据库失败: %w", err)
		}
	}

	// 文档总是自带向量，不需要 collection 级别的 embedding 函数
	collection, err := db.GetOrCreateCollection(memoryCollection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 collection 失败: %w", err)
	}

	minSim := cfg.MinSimilarity
	if minSim <= 0 {
		minSim = defaultMinSimilarity
	}

	return &MemoryService{
		db:            db,
		collection:    collection,
		embedder:      embedder,
		minSimilarity: minSim,
	}, nil
}

func (s *MemoryService) enabled() bool {
	return s != nil && s.embedder != nil && s.embedder.IsConfigured()
}

// Index 写入一条记忆；未配置 embedding 时静默跳过
func (s *MemoryService) Index(ctx context.Context, doc MemoryDoc) error {
	if !s.enabled() {
		slog.Debug("embedding 未配置，跳过索引", "id", doc.ID)
		return nil
	}
	if doc.ID == "" || doc.UserID == "" || doc.Content == "" {
		return fmt.Errorf("记忆文档不完整: id=%q user=%q", doc.ID, doc.UserID)
	}

	embeddings, err := s.embedder.Embed(ctx, []string{doc.Content})
	if err != nil {
		return fmt.Errorf("生成嵌入失败: %w", err)
	}
	if len(embeddings) == 0 {
		return fmt.Errorf("嵌入结果为空")
	}

	err = s.collection.AddDocument(ctx, chromem.Document{
		ID:        doc.ID,
		Content:   doc.Content,
		Embedding: embeddings[0],
		Metadata: map[string]string{
			memoryMetaUser: doc.UserID,
			memoryMetaType: doc.Kind,
			memoryMetaDate: time.Now().Format("2006-01-02"),
		},
	})
	if err != nil {
		return fmt.Errorf("添加文档失败: %w", err)
	}

	slog.Debug("索引记忆", "id", doc.ID, "type", doc.Kind)
	return nil
}

// Query 查询某用户的相关记忆，低于相似度下限的结果被丢弃
func (s *MemoryService) Query(ctx context.Context, userID, query string, topK int) ([]MemoryResult, error) {
	if !s.enabled() {
		return nil, fmt.Errorf("embedding 未配置")
	}
	if topK <= 0 {
		topK = defaultMemoryTopK
	}
	// chromem 要求 nResults 不超过文档总数
	total := s.collection.Count()
	if total == 0 {
		return nil, nil
	}
	if topK > total {
		topK = total
	}

	queryEmb, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("生成查询嵌入失败: %w", err)
	}
	if len(queryEmb) == 0 {
		return nil, fmt.Errorf("查询嵌入为空")
	}

	results, err := s.collection.QueryEmbedding(ctx, queryEmb[0], topK, map[string]string{memoryMetaUser: userID}, nil)
	if err != nil {
		return nil, fmt.Errorf("向量搜索失败: %w", err)
	}

	memories := make([]MemoryResult, 0, len(results))
	for _, r := range results {
		if r.Similarity < s.minSimilarity {
			continue
		}
		memories = append(memories, MemoryResult{
			Content:    r.Content,
			Similarity: r.Similarity,
			Type:       r.Metadata[memoryMetaType],
			Date:       r.Metadata[memoryMetaDate],
		})
	}
	return memories, nil
}

// Count 已索引文档数
func (s *MemoryService) Count() int {
	if s == nil {
		return 0
	}
	return s.collection.Count()
}
