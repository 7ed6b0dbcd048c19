package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"b2b-orders/internal/orders/domain"
	"b2b-orders/pkg/db"
	apperrors "b2b-orders/pkg/errors"
)

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID            uint   `gorm:"primaryKey"`
	CorrelationID string `gorm:"size:36;uniqueIndex;not null"`
	CustomerRef   string `gorm:"size:64;index;not null"`
	AgentRef      string `gorm:"size:64"`
	Items         []byte `gorm:"type:jsonb;not null"`
	TotalQuantity int    `gorm:"not null"`
	Source        string `gorm:"size:32"`
	Status        string `gorm:"size:20;not null;default:'Unconfirmed'"`
	CancelledBy   string `gorm:"size:128"`
	CancelledAt   *time.Time
	CreatedAt     time.Time            `gorm:"autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime"`
	History       []StatusHistoryModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// StatusHistoryModel is one row of an order's append-only audit trail
type StatusHistoryModel struct {
	ID        uint      `gorm:"primaryKey"`
	OrderID   uint      `gorm:"index;not null"`
	Status    string    `gorm:"size:20;not null"`
	ChangedBy string    `gorm:"size:128;not null"`
	ChangedAt time.Time `gorm:"not null"`
	Reason    string    `gorm:"size:512"`
	Meta      []byte    `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (StatusHistoryModel) TableName() string {
	return "order_status_history"
}

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *gorm.DB
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository
func NewPostgresOrderRepository(db *gorm.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// Migrate runs auto-migration for the order models
func (r *PostgresOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{}, &StatusHistoryModel{})
}

// Create creates a new order
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model, err := toModel(order)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Omit("History").Create(model)
	if result.Error != nil {
		return result.Error
	}

	// Update domain entity with generated ID
	order.ID = model.ID
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt

	return nil
}

// GetByID retrieves an order by ID
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).Preload("History", withHistoryOrder).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return toDomain(&model)
}

// ListByCustomer retrieves a customer's orders, newest first
func (r *PostgresOrderRepository) ListByCustomer(ctx context.Context, customerRef string) ([]*domain.Order, error) {
	var models []OrderModel

	result := r.db.WithContext(ctx).
		Preload("History", withHistoryOrder).
		Where("customer_ref = ?", customerRef).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list orders", result.Error)
	}

	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		order, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// UpdateStatus stores the status and appends the newest history entry
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	return r.applyTransition(ctx, order, map[string]interface{}{
		"status":     string(order.Status),
		"updated_at": order.UpdatedAt,
	})
}

// Cancel is the soft delete of an order: the row stays, marked cancelled
func (r *PostgresOrderRepository) Cancel(ctx context.Context, order *domain.Order) error {
	return r.applyTransition(ctx, order, map[string]interface{}{
		"status":       string(order.Status),
		"cancelled_by": order.CancelledBy,
		"cancelled_at": order.CancelledAt,
		"updated_at":   order.UpdatedAt,
	})
}

func (r *PostgresOrderRepository) applyTransition(ctx context.Context, order *domain.Order, columns map[string]interface{}) error {
	change, ok := order.LastChange()
	if !ok {
		return apperrors.NewInternal("order has no status change to store", nil)
	}
	entry, err := toHistoryModel(order.ID, change)
	if err != nil {
		return err
	}

	return db.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Model(&OrderModel{}).Where("id = ?", order.ID).Updates(columns)
		if result.Error != nil {
			return apperrors.NewInternal("failed to update order", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewOrderNotFound(order.ID)
		}
		if err := tx.Create(entry).Error; err != nil {
			return apperrors.NewInternal("failed to append status history", err)
		}
		return nil
	})
}

func withHistoryOrder(tx *gorm.DB) *gorm.DB {
	return tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

// toModel converts a domain entity to a GORM model
func toModel(order *domain.Order) (*OrderModel, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, apperrors.NewInternal("failed to encode order items", err)
	}
	return &OrderModel{
		ID:            order.ID,
		CorrelationID: order.CorrelationID,
		CustomerRef:   order.CustomerRef,
		AgentRef:      order.AgentRef,
		Items:         items,
		TotalQuantity: order.TotalQuantity,
		Source:        order.Source,
		Status:        string(order.Status),
		CancelledBy:   order.CancelledBy,
		CancelledAt:   order.CancelledAt,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}, nil
}

func toHistoryModel(orderID uint, c domain.StatusChange) (*StatusHistoryModel, error) {
	var meta []byte
	if len(c.Meta) > 0 {
		var err error
		if meta, err = json.Marshal(c.Meta); err != nil {
			return nil, apperrors.NewInternal("failed to encode status meta", err)
		}
	}
	return &StatusHistoryModel{
		OrderID:   orderID,
		Status:    string(c.Status),
		ChangedBy: c.ChangedBy,
		ChangedAt: c.ChangedAt,
		Reason:    c.Reason,
		Meta:      meta,
	}, nil
}

// toDomain converts a GORM model to a domain entity. Stored statuses are
// canonicalized; an unreadable one is kept as stored.
func toDomain(model *OrderModel) (*domain.Order, error) {
	var items []domain.ItemGroup
	if len(model.Items) > 0 {
		if err := json.Unmarshal(model.Items, &items); err != nil {
			return nil, apperrors.NewInternal("failed to decode order items", err)
		}
	}

	order := &domain.Order{
		ID:            model.ID,
		CorrelationID: model.CorrelationID,
		CustomerRef:   model.CustomerRef,
		AgentRef:      model.AgentRef,
		Items:         items,
		TotalQuantity: model.TotalQuantity,
		Source:        model.Source,
		Status:        canonicalStatus(model.Status),
		CancelledBy:   model.CancelledBy,
		CancelledAt:   model.CancelledAt,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
		StatusHistory: make([]domain.StatusChange, 0, len(model.History)),
	}

	for _, h := range model.History {
		change := domain.StatusChange{
			Status:    canonicalStatus(h.Status),
			ChangedBy: h.ChangedBy,
			ChangedAt: h.ChangedAt,
			Reason:    h.Reason,
		}
		if len(h.Meta) > 0 {
			// unreadable meta is dropped, the entry itself is kept
			_ = json.Unmarshal(h.Meta, &change.Meta)
		}
		order.StatusHistory = append(order.StatusHistory, change)
	}

	return order, nil
}

func canonicalStatus(raw string) domain.OrderStatus {
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return domain.OrderStatus(raw)
	}
	return status
}
