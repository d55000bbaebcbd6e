package inventory

import (
	"time"

	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
)

// MovementDTO is the API shape of a stock ledger entry.
type MovementDTO struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"productId"`
	ChangeType string    `json:"changeType"`
	Quantity   int       `json:"quantity"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MovementFromModel converts a persisted movement into its DTO.
func MovementFromModel(m models.InventoryMovement) MovementDTO {
	return MovementDTO{
		ID:         m.ID,
		ProductID:  m.ProductID,
		ChangeType: m.ChangeType.String(),
		Quantity:   m.Quantity,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
	}
}

// MovementsFromModels converts a slice of movements.
func MovementsFromModels(items []models.InventoryMovement) []MovementDTO {
	out := make([]MovementDTO, 0, len(items))
	for _, m := range items {
		out = append(out, MovementFromModel(m))
	}
	return out
}
