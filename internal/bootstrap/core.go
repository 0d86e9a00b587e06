package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yuqie6/reme/internal/ai"
	"github.com/yuqie6/reme/internal/eventbus"
	"github.com/yuqie6/reme/internal/pkg/config"
	"github.com/yuqie6/reme/internal/repository"
	"github.com/yuqie6/reme/internal/service"
)

// Core 持有跨二进制共享的核心依赖
type Core struct {
	Cfg       *config.Config
	DB        *repository.Database
	Hub       *eventbus.Hub
	LogCloser io.Closer

	Repos struct {
		Hobby      *repository.HobbyRepository
		Activity   *repository.ActivityRepository
		Reflection *repository.ReflectionRepository
		Moment     *repository.MomentRepository
		Profile    *repository.ProfileRepository
	}

	Services struct {
		Activities      *service.ActivityService
		Hobbies         *service.HobbyService
		Reflections     *service.ReflectionService
		Memory          *service.MemoryService
		Recommend       *service.RecommendService
		Quotes          *service.QuoteService
		Profiles        *service.ProfileService
		Characteristics *service.CharacteristicsService
		Tree            *service.TreeService
		Journey         *service.JourneyService
	}

	Clients struct {
		AI       *ai.Client
		Analyzer *ai.Analyzer
	}
}

// NewCore 加载配置、初始化日志并构建核心依赖
func NewCore(cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logCloser, err := config.SetupLogger(config.LoggerOptions{
		Level:     cfg.App.LogLevel,
		Path:      cfg.App.LogPath,
		Component: filepath.Base(os.Args[0]),
	})
	if err != nil {
		return nil, err
	}

	c, err := NewCoreWithConfig(cfg)
	if err != nil {
		if logCloser != nil {
			_ = logCloser.Close()
		}
		return nil, err
	}
	c.LogCloser = logCloser
	return c, nil
}

// NewCoreWithConfig 用已加载的配置构建依赖（不触碰全局 logger）
func NewCoreWithConfig(cfg *config.Config) (*Core, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg 不能为空")
	}

	client, err := ai.NewClient(&ai.Config{
		Provider:          cfg.AI.Provider,
		APIKey:            cfg.AI.APIKey,
		BaseURL:           cfg.AI.BaseURL,
		Model:             cfg.AI.Model,
		EmbeddingModel:    cfg.AI.EmbeddingModel,
		Temperature:       cfg.AI.Temperature,
		MaxTokens:         cfg.AI.MaxTokens,
		RequestsPerSecond: cfg.AI.RequestsPerSecond,
		Burst:             cfg.AI.Burst,
		Timeout:           cfg.AI.Timeout(),
		MaxRetries:        cfg.AI.MaxRetries,
	})
	if err != nil {
		return nil, err
	}

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	c := &Core{Cfg: cfg, DB: db, Hub: eventbus.NewHub()}

	// Repos
	c.Repos.Hobby = repository.NewHobbyRepository(db.DB)
	c.Repos.Activity = repository.NewActivityRepository(db.DB)
	c.Repos.Reflection = repository.NewReflectionRepository(db.DB)
	c.Repos.Moment = repository.NewMomentRepository(db.DB)
	c.Repos.Profile = repository.NewProfileRepository(db.DB)

	// Clients / Analyzer
	c.Clients.AI = client
	c.Clients.Analyzer = ai.NewAnalyzer(client)

	// Services
	memory, err := service.NewMemoryService(client, &service.MemoryConfig{StoragePath: cfg.Storage.MemoryPath})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c.Services.Memory = memory

	c.Services.Activities = service.NewActivityService(
		c.Repos.Hobby,
		c.Clients.Analyzer,
		memory,
		c.Hub,
		&service.ActivityServiceConfig{
			SplitConfidence: cfg.Pipeline.SplitConfidence,
			DepthBonusChars: cfg.Pipeline.DepthBonusChars,
			FragmentWorkers: cfg.Pipeline.FragmentWorkers,
		},
	)
	c.Services.Hobbies = service.NewHobbyService(c.Repos.Hobby, c.Repos.Activity, c.Clients.Analyzer, c.Services.Activities, c.Hub)
	c.Services.Reflections = service.NewReflectionService(c.Repos.Reflection, c.Repos.Moment, c.Clients.Analyzer, memory, c.Hub)
	c.Services.Recommend = service.NewRecommendService(memory, c.Clients.Analyzer)
	c.Services.Quotes = service.NewQuoteService(c.Repos.Profile, c.Repos.Hobby, c.Repos.Activity, c.Repos.Reflection, c.Clients.Analyzer)
	c.Services.Profiles = service.NewProfileService(c.Repos.Profile)
	c.Services.Characteristics = service.NewCharacteristicsService(c.Repos.Hobby, c.Repos.Activity)
	c.Services.Tree = service.NewTreeService(c.Repos.Hobby, c.Repos.Activity, c.Repos.Reflection, c.Repos.Moment)
	c.Services.Journey = service.NewJourneyService(c.Repos.Profile, c.Repos.Hobby, c.Repos.Activity, c.Repos.Reflection, c.Repos.Moment, c.Clients.Analyzer)

	return c, nil
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	var dbErr error
	if c.DB != nil {
		dbErr = c.DB.Close()
	}
	if c.LogCloser != nil {
		_ = c.LogCloser.Close()
	}
	return dbErr
}

// RequireAIConfigured 检查 AI 是否已配置
func (c *Core) RequireAIConfigured() error {
	if c.Clients.AI == nil || !c.Clients.AI.IsConfigured() {
		return fmt.Errorf("%w：请设置 ai.api_key 或 OPENAI_API_KEY", ai.ErrNotConfigured)
	}
	return nil
}
