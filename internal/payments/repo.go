package payments

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
)

// Repository persists payment transactions. Status moves are written with
// explicit column updates so concurrent confirmations cannot clobber each
// other outside the row lock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error)
	FindByID(ctx context.Context, id int64) (*models.PaymentTransaction, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.PaymentTransaction, error)
	Update(ctx context.Context, txn *models.PaymentTransaction, fields map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindByIDForUpdate takes a row lock so the confirmation state machine and
// order linking serialize on the transaction row.
func (r *repository) FindByIDForUpdate(ctx context.Context, id int64) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) Update(ctx context.Context, txn *models.PaymentTransaction, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(txn).
		Updates(fields).Error
}
