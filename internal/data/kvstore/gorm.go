package kvstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/enrollment-backend/internal/platform/dbctx"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

// Entry is one stored document.
type Entry struct {
	Key       string         `gorm:"column:doc_key;primaryKey;size:255" json:"key"`
	Value     datatypes.JSON `gorm:"column:value;not null" json:"value"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Entry) TableName() string { return "kv_entry" }

// GormStore keeps documents in a SQL table (sqlite or postgres).
type GormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGormStore(db *gorm.DB, baseLog *logger.Logger) (*GormStore, error) {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entry: %w", err)
	}
	return &GormStore{db: db, log: baseLog.With("repo", "KVEntryRepo")}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row Entry
	err := dbctx.New(ctx).DB(s.db).Where("doc_key = ?", key).Limit(1).Find(&row).Error
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if row.Key == "" {
		return nil, ErrNotFound
	}
	return []byte(row.Value), nil
}

func (s *GormStore) Put(ctx context.Context, key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	now := time.Now().UTC()
	row := &Entry{Key: key, Value: datatypes.JSON(value), CreatedAt: now, UpdatedAt: now}
	err := dbctx.New(ctx).DB(s.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	if err := dbctx.New(ctx).DB(s.db).Where("doc_key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close leaves the connection to its owner.
func (s *GormStore) Close() error { return nil }
