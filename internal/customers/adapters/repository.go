package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"b2b-orders/internal/customers/domain"
	"b2b-orders/pkg/db"
	apperrors "b2b-orders/pkg/errors"
)

// CustomerModel is the GORM model for customers (persistence layer)
type CustomerModel struct {
	ID           uint   `gorm:"primaryKey"`
	CompanyName  string `gorm:"size:200;not null"`
	ContactEmail string `gorm:"size:255;uniqueIndex;not null"`
	AgentRef     string `gorm:"size:64;index"`
	Active       bool   `gorm:"not null"`
	OrderCount   int64  `gorm:"not null"`
	LastOrderAt  *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// AppliedActivityModel remembers which order events were already counted
type AppliedActivityModel struct {
	Key        string    `gorm:"primaryKey;size:128"`
	CustomerID uint      `gorm:"index;not null"`
	OrderID    uint      `gorm:"not null"`
	Kind       string    `gorm:"size:20;not null"`
	AppliedAt  time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (AppliedActivityModel) TableName() string {
	return "customer_order_activity"
}

// PostgresCustomerRepository implements CustomerRepository using PostgreSQL
type PostgresCustomerRepository struct {
	db *gorm.DB
}

// NewPostgresCustomerRepository creates a new PostgreSQL customer repository
func NewPostgresCustomerRepository(db *gorm.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

// Migrate runs auto-migration for the customer models
func (r *PostgresCustomerRepository) Migrate() error {
	return r.db.AutoMigrate(&CustomerModel{}, &AppliedActivityModel{})
}

// Create creates a new customer
func (r *PostgresCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	model := toModel(customer)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrEmailExists
		}
		return result.Error
	}

	// Update domain entity with generated ID
	customer.ID = model.ID
	customer.CreatedAt = model.CreatedAt
	customer.UpdatedAt = model.UpdatedAt

	return nil
}

// GetByID retrieves a customer by ID
func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewCustomerNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get customer", result.Error)
	}

	return toDomain(&model), nil
}

// GetByEmail retrieves a customer by contact email
func (r *PostgresCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).Where("contact_email = ?", email).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("customer", email)
		}
		return nil, apperrors.NewInternal("failed to get customer by email", result.Error)
	}

	return toDomain(&model), nil
}

// SetActive opens or closes the account
func (r *PostgresCustomerRepository) SetActive(ctx context.Context, id uint, active bool) (*domain.Customer, error) {
	result := r.db.WithContext(ctx).Model(&CustomerModel{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to update customer", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domain.NewCustomerNotFound(id)
	}
	return r.GetByID(ctx, id)
}

// ApplyActivity records the activity key and updates the statistics in one
// transaction. The customer row is locked so concurrent consumers do not
// lose counts.
func (r *PostgresCustomerRepository) ApplyActivity(ctx context.Context, activity domain.OrderActivity) (bool, error) {
	applied := false

	err := db.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		var model CustomerModel
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, activity.CustomerID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return domain.NewCustomerNotFound(activity.CustomerID)
			}
			return apperrors.NewInternal("failed to load customer", result.Error)
		}

		marker := AppliedActivityModel{
			Key:        activity.Key,
			CustomerID: activity.CustomerID,
			OrderID:    activity.OrderID,
			Kind:       string(activity.Kind),
		}
		result = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker)
		if result.Error != nil {
			return apperrors.NewInternal("failed to record order activity", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		customer := toDomain(&model)
		customer.Apply(activity)
		result = tx.Model(&CustomerModel{}).Where("id = ?", customer.ID).Updates(map[string]interface{}{
			"order_count":   customer.OrderCount,
			"last_order_at": customer.LastOrderAt,
		})
		if result.Error != nil {
			return apperrors.NewInternal("failed to update customer statistics", result.Error)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// toModel converts a domain entity to a GORM model
func toModel(c *domain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:           c.ID,
		CompanyName:  c.CompanyName,
		ContactEmail: c.ContactEmail,
		AgentRef:     c.AgentRef,
		Active:       c.Active,
		OrderCount:   c.OrderCount,
		LastOrderAt:  c.LastOrderAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// toDomain converts a GORM model to a domain entity
func toDomain(model *CustomerModel) *domain.Customer {
	return &domain.Customer{
		ID:           model.ID,
		CompanyName:  model.CompanyName,
		ContactEmail: model.ContactEmail,
		AgentRef:     model.AgentRef,
		Active:       model.Active,
		OrderCount:   model.OrderCount,
		LastOrderAt:  model.LastOrderAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
