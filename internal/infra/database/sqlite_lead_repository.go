package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/xavierca1/dealer-leads/internal/entity"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// leadRecord is the gorm row. History is kept as a JSON document.
type leadRecord struct {
	ID            string `gorm:"primaryKey"`
	Name          string `gorm:"not null"`
	Phone         string `gorm:"not null"`
	Email         string
	ModelInterest string `gorm:"not null"`
	Source        string `gorm:"not null"`
	Status        string `gorm:"not null;index"`
	AdvisorID     string `gorm:"not null;index"`
	AdvisorName   string `gorm:"not null"`
	AuthorID      string
	History       string    `gorm:"type:text;not null"`
	Version       int64     `gorm:"not null"`
	CreatedAt     time.Time `gorm:"index"`
}

func (leadRecord) TableName() string {
	return "leads"
}

func (rec leadRecord) toEntity() (entity.Lead, error) {
	lead := entity.Lead{
		ID:            rec.ID,
		Name:          rec.Name,
		Phone:         rec.Phone,
		Email:         rec.Email,
		ModelInterest: rec.ModelInterest,
		Source:        entity.Source(rec.Source),
		Status:        entity.Status(rec.Status),
		AdvisorID:     rec.AdvisorID,
		AdvisorName:   rec.AdvisorName,
		AuthorID:      rec.AuthorID,
		CreatedAt:     rec.CreatedAt,
		Version:       rec.Version,
	}
	if err := json.Unmarshal([]byte(rec.History), &lead.History); err != nil {
		return entity.Lead{}, fmt.Errorf("decode history of lead %s: %w", rec.ID, err)
	}
	return lead, nil
}

// SQLiteLeadRepository is the embedded store used when no database server
// is configured.
type SQLiteLeadRepository struct {
	db *gorm.DB
}

// NewSQLiteLeadRepository opens (or creates) the database file at path and
// migrates the leads table. An empty path keeps everything in memory.
func NewSQLiteLeadRepository(path string) (*SQLiteLeadRepository, error) {
	dsn := "file::memory:?cache=shared"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		// WAL lets the live feed read while a write is in flight
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&leadRecord{}); err != nil {
		return nil, err
	}
	return &SQLiteLeadRepository{db: db}, nil
}

func (r *SQLiteLeadRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *SQLiteLeadRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *SQLiteLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	history, err := json.Marshal(lead.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	rec := leadRecord{
		ID:            uuid.NewString(),
		Name:          lead.Name,
		Phone:         lead.Phone,
		Email:         lead.Email,
		ModelInterest: lead.ModelInterest,
		Source:        string(lead.Source),
		Status:        string(lead.Status),
		AdvisorID:     lead.AdvisorID,
		AdvisorName:   lead.AdvisorName,
		AuthorID:      lead.AuthorID,
		History:       string(history),
		Version:       1,
		CreatedAt:     time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}

	lead.ID = rec.ID
	lead.CreatedAt = rec.CreatedAt
	lead.Version = rec.Version
	return nil
}

func (r *SQLiteLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	var rec leadRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	lead, err := rec.toEntity()
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *SQLiteLeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	var recs []leadRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	leads := make([]entity.Lead, 0, len(recs))
	for _, rec := range recs {
		lead, err := rec.toEntity()
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

func (r *SQLiteLeadRepository) Update(ctx context.Context, id string, expectedVersion int64, patch entity.LeadPatch) error {
	history, err := json.Marshal(patch.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&leadRecord{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"status":  string(patch.Status),
			"history": string(history),
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&leadRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return entity.ErrLeadNotFound
	}
	return entity.ErrVersionConflict
}
