// Package db is the entity store of the compliance service. It persists
// companies, standard selections, documents and chat messages with GORM on
// PostgreSQL or SQLite.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/gartstein/isocompliance/internal/compliance/db/models"
	e "github.com/gartstein/isocompliance/internal/compliance/errors"
	domain "github.com/gartstein/isocompliance/internal/compliance/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Dialector picks the GORM dialector for the configured driver. For SQLite
// DBName is the database file path.
func (c *Config) Dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case "", DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(c.DBName + "?_foreign_keys=1"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

func NewRepository(cfg *Config) (*Repository, error) {
	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return Open(db)
}

// Open wraps an existing connection and migrates the schema.
func Open(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) CreateCompany(ctx context.Context, company *domain.Company) error {
	rec := companyRecord(company)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}
	company.CreatedAt = rec.CreatedAt
	return nil
}

func (r *Repository) GetCompany(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	var rec models.Company
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return companyModel(&rec), nil
}

func (r *Repository) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var recs []models.Company
	if err := r.db.WithContext(ctx).Order("created_at ASC, name ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Company, 0, len(recs))
	for i := range recs {
		out = append(out, *companyModel(&recs[i]))
	}
	return out, nil
}

func (r *Repository) CountCompanies(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Company{}).Count(&count).Error
	return count, err
}

// ReplaceSelections swaps the whole selection set of a company in one
// transaction. An empty codes slice clears the set.
func (r *Repository) ReplaceSelections(ctx context.Context, companyID uuid.UUID, codes []string) ([]domain.StandardSelection, error) {
	recs := make([]models.ISOSelection, 0, len(codes))
	err := r.WithTransaction(ctx, func(tx *Repository) error {
		if err := tx.requireCompany(ctx, companyID); err != nil {
			return err
		}
		if err := tx.db.WithContext(ctx).
			Where("company_id = ?", companyID).
			Delete(&models.ISOSelection{}).Error; err != nil {
			return err
		}
		if len(codes) == 0 {
			return nil
		}
		for _, code := range codes {
			recs = append(recs, models.ISOSelection{CompanyID: companyID, ISOCode: code})
		}
		return tx.db.WithContext(ctx).Omit(clause.Associations).Create(&recs).Error
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.StandardSelection, 0, len(recs))
	for _, rec := range recs {
		out = append(out, selectionModel(rec))
	}
	return out, nil
}

func (r *Repository) ListSelections(ctx context.Context, companyID uuid.UUID) ([]domain.StandardSelection, error) {
	var recs []models.ISOSelection
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.StandardSelection, 0, len(recs))
	for _, rec := range recs {
		out = append(out, selectionModel(rec))
	}
	return out, nil
}

// AppendDocuments inserts drafts as new documents, keeping their order.
// Existing documents are never touched.
func (r *Repository) AppendDocuments(ctx context.Context, companyID uuid.UUID, drafts []domain.DocumentDraft) ([]domain.Document, error) {
	if len(drafts) == 0 {
		return []domain.Document{}, nil
	}
	recs := make([]models.Document, 0, len(drafts))
	for _, d := range drafts {
		recs = append(recs, models.Document{CompanyID: companyID, Type: d.Type, Content: d.Content})
	}

	err := r.WithTransaction(ctx, func(tx *Repository) error {
		if err := tx.requireCompany(ctx, companyID); err != nil {
			return err
		}
		return tx.db.WithContext(ctx).Omit(clause.Associations).Create(&recs).Error
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Document, 0, len(recs))
	for _, rec := range recs {
		out = append(out, documentModel(rec))
	}
	return out, nil
}

func (r *Repository) ListDocuments(ctx context.Context, companyID uuid.UUID) ([]domain.Document, error) {
	var recs []models.Document
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Document, 0, len(recs))
	for _, rec := range recs {
		out = append(out, documentModel(rec))
	}
	return out, nil
}

func (r *Repository) AppendChatMessage(ctx context.Context, msg *domain.ChatMessage) error {
	rec := models.ChatMessage{CompanyID: msg.CompanyID, Role: string(msg.Role), Content: msg.Content}
	err := r.WithTransaction(ctx, func(tx *Repository) error {
		if err := tx.requireCompany(ctx, msg.CompanyID); err != nil {
			return err
		}
		return tx.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error
	})
	if err != nil {
		return err
	}
	msg.ID = rec.ID
	msg.CreatedAt = rec.CreatedAt
	return nil
}

func (r *Repository) ListChatMessages(ctx context.Context, companyID uuid.UUID) ([]domain.ChatMessage, error) {
	var recs []models.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ChatMessage, 0, len(recs))
	for _, rec := range recs {
		out = append(out, chatModel(rec))
	}
	return out, nil
}

// requireCompany guards child writes against orphaned rows.
func (r *Repository) requireCompany(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("id = ?", id).
		Limit(1).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
