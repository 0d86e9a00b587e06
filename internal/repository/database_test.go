package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yuqie6/reme/internal/schema"
)

func TestNewDatabaseMigratesToLatest(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "nested", "reme.db"))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	defer db.Close()

	if db.SafeMode {
		t.Fatalf("unexpected safe mode: %s", db.MigrationError)
	}
	if db.SchemaVersion != latestSchemaVersion() {
		t.Fatalf("SchemaVersion=%d, want %d", db.SchemaVersion, latestSchemaVersion())
	}

	var meta schema.SchemaMeta
	if err := db.DB.First(&meta, 1).Error; err != nil {
		t.Fatalf("read meta: %v", err)
	}
	if meta.LastStep == "" {
		t.Fatalf("LastStep empty")
	}
}

func TestMigrationRecomputesLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reme.db")
	db, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}

	h := newTestHobby("h1", "u1", "Guitar", 42)
	h.Level = 0 // 旧数据：等级与经验不一致
	if err := NewHobbyRepository(db.DB).Create(context.Background(), h); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := db.DB.Model(&schema.SchemaMeta{}).Where("id = ?", 1).Update("schema_version", 1).Error; err != nil {
		t.Fatalf("rewind version: %v", err)
	}
	_ = db.Close()

	db, err = NewDatabase(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	got, err := NewHobbyRepository(db.DB).GetByID(context.Background(), "h1")
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Level != 3 {
		t.Fatalf("Level=%d, want 3 for 42 exp", got.Level)
	}
}

func TestMigrationRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reme.db")
	db, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	if err := db.DB.Model(&schema.SchemaMeta{}).Where("id = ?", 1).Update("schema_version", latestSchemaVersion()+1).Error; err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	db, err = NewDatabase(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if !db.SafeMode || db.MigrationError == "" {
		t.Fatalf("want safe mode for newer schema, got %+v", db)
	}
}
