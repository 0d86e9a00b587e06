package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动
	"github.com/yuqie6/reme/internal/pkg/leveling"
	"github.com/yuqie6/reme/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrDuplicate 唯一约束冲突
	ErrDuplicate = errors.New("记录已存在")
)

// Database 数据库管理器
type Database struct {
	DB             *gorm.DB
	SafeMode       bool
	SchemaVersion  int
	MigrationError string
}

// NewDatabase 创建数据库连接
func NewDatabase(dbPath string) (*Database, error) {
	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	// busy_timeout 走 DSN，保证连接池里每个连接都生效
	db, err := gorm.Open(sqlite.Open(withPragmas(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置 SQLite WAL 模式
	if err := configureDB(db); err != nil {
		return nil, fmt.Errorf("配置数据库失败: %w", err)
	}

	d := &Database{DB: db}
	if err := migrateWithVersion(db, d); err != nil {
		// 迁移失败进入“安全模式”，服务仍可启动并暴露健康检查
		d.SafeMode = true
		d.MigrationError = err.Error()
		slog.Error("数据库迁移失败，进入安全模式", "error", err)
	}

	slog.Info("数据库初始化成功", "path", dbPath)

	return d, nil
}

func withPragmas(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// configureDB 配置 SQLite 性能参数
func configureDB(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // 启用 WAL 模式，支持并发读写
		"PRAGMA synchronous=NORMAL", // 平衡性能与安全
		"PRAGMA cache_size=10000",   // 增加缓存 (~40MB)
		"PRAGMA temp_store=MEMORY",  // 临时表使用内存
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("执行 %s 失败: %w", pragma, err)
		}
	}

	return nil
}

// migration 单步迁移；version 严格递增
type migration struct {
	version int
	name    string
	apply   func(tx *gorm.DB) error
}

var migrations = []migration{
	{version: 1, name: "创建基础表", apply: func(tx *gorm.DB) error {
		return tx.AutoMigrate(schema.AllModels()...)
	}},
	{version: 2, name: "按经验重算等级", apply: recomputeLevels},
}

func latestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

func migrateWithVersion(db *gorm.DB, out *Database) error {
	if db == nil {
		return fmt.Errorf("db 不能为空")
	}
	if out == nil {
		return fmt.Errorf("out 不能为空")
	}

	// schema_meta 先于业务表创建，迁移失败时也能读到当前版本
	if err := db.AutoMigrate(&schema.SchemaMeta{}); err != nil {
		return fmt.Errorf("创建 schema_meta 失败: %w", err)
	}

	var meta schema.SchemaMeta
	if err := db.First(&meta, 1).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("读取 schema_meta 失败: %w", err)
		}
		meta = schema.SchemaMeta{ID: 1}
		if err := db.Create(&meta).Error; err != nil {
			return fmt.Errorf("初始化 schema_meta 失败: %w", err)
		}
	}
	out.SchemaVersion = meta.SchemaVersion

	if latest := latestSchemaVersion(); meta.SchemaVersion > latest {
		return fmt.Errorf("数据库 schema_version=%d 高于当前程序支持的版本=%d", meta.SchemaVersion, latest)
	}

	for _, m := range migrations {
		if m.version <= meta.SchemaVersion {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.apply(tx); err != nil {
				return err
			}
			return tx.Model(&schema.SchemaMeta{}).Where("id = ?", 1).Updates(map[string]any{
				"schema_version": m.version,
				"last_step":      m.name,
			}).Error
		})
		if err != nil {
			return fmt.Errorf("迁移 v%d（%s）失败: %w", m.version, m.name, err)
		}
		slog.Info("数据库迁移完成", "version", m.version, "step", m.name)
		meta.SchemaVersion = m.version
		out.SchemaVersion = m.version
	}
	return nil
}

// recomputeLevels 阈值规则调整后，用已有经验重算每个爱好的等级
func recomputeLevels(tx *gorm.DB) error {
	var hobbies []schema.Hobby
	if err := tx.Select("id", "exp", "level", "meta").Find(&hobbies).Error; err != nil {
		return err
	}
	for _, h := range hobbies {
		level, err := leveling.LevelFromExp(h.Exp, h.Meta.LevelThresholds)
		if err != nil {
			return fmt.Errorf("爱好 %s: %w", h.ID, err)
		}
		if level == h.Level {
			continue
		}
		if err := tx.Model(&schema.Hobby{}).Where("id = ?", h.ID).UpdateColumn("level", level).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close 关闭数据库连接
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueViolation 判断 SQLite 唯一约束错误
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
