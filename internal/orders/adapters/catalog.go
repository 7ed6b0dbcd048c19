package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"b2b-orders/internal/orders/domain"
	apperrors "b2b-orders/pkg/errors"
	"b2b-orders/pkg/logger"
)

// CatalogRecordModel stores one upstream catalog row as it was delivered.
// The row is normalized on read.
type CatalogRecordModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Data      []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (CatalogRecordModel) TableName() string {
	return "catalog_records"
}

// PostgresCatalogRepository implements CatalogReader over the raw catalog table
type PostgresCatalogRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewPostgresCatalogRepository creates a new PostgreSQL catalog repository
func NewPostgresCatalogRepository(db *gorm.DB, log *logger.Logger) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db, log: log}
}

// Migrate runs auto-migration for the catalog model
func (r *PostgresCatalogRepository) Migrate() error {
	return r.db.AutoMigrate(&CatalogRecordModel{})
}

// ListEntries returns every catalog entry, normalized
func (r *PostgresCatalogRepository) ListEntries(ctx context.Context) ([]domain.CatalogEntry, error) {
	var models []CatalogRecordModel

	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.NewInternal("failed to list catalog", err)
	}

	entries := make([]domain.CatalogEntry, 0, len(models))
	for i := range models {
		e, err := decodeRecord(&models[i])
		if err != nil {
			// one broken row must not hide the rest of the catalog
			r.log.WithContext(ctx).Warn("skipping unreadable catalog row",
				zap.String("id", models[i].ID),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GetEntry returns one entry by id
func (r *PostgresCatalogRepository) GetEntry(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	var model CatalogRecordModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewEntryNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get catalog entry", result.Error)
	}

	e, err := decodeRecord(&model)
	if err != nil {
		return nil, apperrors.NewInternal("failed to decode catalog entry", err)
	}
	return &e, nil
}

// Import upserts raw rows. Rows without any id key are skipped. It returns
// the number of rows stored.
func (r *PostgresCatalogRepository) Import(ctx context.Context, rows []map[string]any) (int, error) {
	models := make([]CatalogRecordModel, 0, len(rows))
	for _, raw := range rows {
		id := NormalizeRecord(raw).ID
		if id == "" {
			continue
		}
		data, err := json.Marshal(raw)
		if err != nil {
			return 0, apperrors.NewInternal("failed to encode catalog row", err)
		}
		models = append(models, CatalogRecordModel{ID: id, Data: data})
	}
	if len(models) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&models)
	if result.Error != nil {
		return 0, apperrors.NewInternal("failed to import catalog", result.Error)
	}
	return len(models), nil
}

// ImportFile reads a JSON array of raw rows from path and imports it
func (r *PostgresCatalogRepository) ImportFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, err
	}
	return r.Import(ctx, rows)
}

func decodeRecord(model *CatalogRecordModel) (domain.CatalogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(model.Data, &raw); err != nil {
		return domain.CatalogEntry{}, err
	}
	e := NormalizeRecord(raw)
	if e.ID == "" {
		e.ID = model.ID
	}
	return e, nil
}
