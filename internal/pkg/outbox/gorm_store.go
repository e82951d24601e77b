package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// EntryModel 对应数据库中的 outbox 表
type EntryModel struct {
	ID           string    `gorm:"primaryKey;type:char(36)"`
	AggregateKey string    `gorm:"type:varchar(255);not null"`
	AggregateID  string    `gorm:"type:varchar(64);not null"`
	EventKind    string    `gorm:"type:varchar(64);not null"`
	Payload      string    `gorm:"type:text;not null"`
	Status       Status    `gorm:"type:varchar(16);not null;index:idx_outbox_status_created,priority:1"`
	Attempts     int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"index:idx_outbox_status_created,priority:2"`
	PublishedAt  *time.Time
}

// GormStore 是 Store 的 GORM 实现，表名可配置。
type GormStore struct {
	db    *gorm.DB
	table string
}

func NewGormStore(db *gorm.DB, table string) *GormStore {
	return &GormStore{db: db, table: table}
}

// Migrate 创建或更新 outbox 表结构。
func (s *GormStore) Migrate() error {
	return s.db.Table(s.table).AutoMigrate(&EntryModel{})
}

// AppendTx 在调用方的事务中写入一条记录。
func (s *GormStore) AppendTx(tx *gorm.DB, e *Entry) error {
	return tx.Table(s.table).Create(fromEntry(e)).Error
}

func (s *GormStore) Pending(ctx context.Context, olderThan time.Time, limit int) ([]*Entry, error) {
	var models []EntryModel
	err := s.db.WithContext(ctx).Table(s.table).
		Where("status = ? AND created_at <= ?", StatusPending, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "query pending outbox entries")
	}
	out := make([]*Entry, 0, len(models))
	for i := range models {
		e, err := toEntry(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *GormStore) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.db.WithContext(ctx).Table(s.table).
		Where("id = ?", id.String()).
		Updates(map[string]any{"status": StatusPublished, "published_at": at.UTC()}).Error
}

func (s *GormStore) MarkAttempt(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Table(s.table).
		Where("id = ?", id.String()).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}

func fromEntry(e *Entry) *EntryModel {
	return &EntryModel{
		ID:           e.ID.String(),
		AggregateKey: e.AggregateKey,
		AggregateID:  e.AggregateID,
		EventKind:    e.EventKind,
		Payload:      e.Payload,
		Status:       e.Status,
		Attempts:     e.Attempts,
		CreatedAt:    e.CreatedAt,
		PublishedAt:  e.PublishedAt,
	}
}

func toEntry(m *EntryModel) (*Entry, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "outbox entry id %q", m.ID)
	}
	return &Entry{
		ID:           id,
		AggregateKey: m.AggregateKey,
		AggregateID:  m.AggregateID,
		EventKind:    m.EventKind,
		Payload:      m.Payload,
		Status:       m.Status,
		Attempts:     m.Attempts,
		CreatedAt:    m.CreatedAt,
		PublishedAt:  m.PublishedAt,
	}, nil
}
