package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
)

// Repository appends to the stock movement ledger. Rows are never updated
// or deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateMovements(ctx context.Context, movements []models.InventoryMovement) error
	ListByProductID(ctx context.Context, productID int64) ([]models.InventoryMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateMovements(ctx context.Context, movements []models.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&movements).Error
}

func (r *repository) ListByProductID(ctx context.Context, productID int64) ([]models.InventoryMovement, error) {
	var movements []models.InventoryMovement
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
