package models

import (
	"time"

	"github.com/adityaraut/dairydrop-backend/pkg/enums"
)

// InventoryMovement is an append-only stock ledger entry.
type InventoryMovement struct {
	ID         int64                     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID  int64                     `gorm:"column:product_id;not null;index"`
	ChangeType enums.InventoryChangeType `gorm:"column:change_type;not null"`
	Quantity   int                       `gorm:"column:quantity;not null"`
	Note       *string                   `gorm:"column:note"`
	CreatedAt  time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
