package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/wabdevconsult/batuta/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLSessionRepository implements domain.SessionPersister using GORM
type SQLSessionRepository struct {
	db   *gorm.DB
	name string
}

// SessionRecord represents the database model for a named session record
type SessionRecord struct {
	Name      string `gorm:"primaryKey;size:128"`
	Payload   string `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (SessionRecord) TableName() string {
	return "session_records"
}

// NewSQLSessionRepository creates a persister for the record called name
func NewSQLSessionRepository(db *gorm.DB, name string) domain.SessionPersister {
	return &SQLSessionRepository{db: db, name: name}
}

// Load implements domain.SessionPersister
func (r *SQLSessionRepository) Load(ctx context.Context) (*domain.PersistedSession, error) {
	var rec SessionRecord
	err := r.db.WithContext(ctx).Where("name = ?", r.name).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return decodeSession([]byte(rec.Payload))
}

// Save implements domain.SessionPersister
func (r *SQLSessionRepository) Save(ctx context.Context, session *domain.PersistedSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	rec := SessionRecord{Name: r.name, Payload: string(data), UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&rec).Error
}

// Clear implements domain.SessionPersister
func (r *SQLSessionRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("name = ?", r.name).Delete(&SessionRecord{}).Error
}
