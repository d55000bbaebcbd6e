package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adityaraut/dairydrop-backend/pkg/enums"
)

// Product represents a catalog listing. The checkout engine treats it
// as read-only; catalog administration happens elsewhere.
type Product struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Slug             string          `gorm:"column:slug;not null;uniqueIndex"`
	Name             string          `gorm:"column:name;not null"`
	ShortDescription *string         `gorm:"column:short_description"`
	Description      *string         `gorm:"column:description"`
	Price            decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Unit             enums.ProductUnit `gorm:"column:unit;not null;default:'liter'"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
