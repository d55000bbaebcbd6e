package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
	pkgerrors "github.com/adityaraut/dairydrop-backend/pkg/errors"
)

// Service resolves checkout address selections to concrete rows.
type Service interface {
	WithTx(tx *gorm.DB) Service
	ResolveOrCreate(ctx context.Context, userID int64, sel Selection, role string) (int64, error)
}

type service struct {
	repo Repository
}

// NewService wires an address service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

// ResolveOrCreate returns the id of an address owned by the user: an
// existing one when an id was supplied, or a freshly inserted row from the
// inline fields. The role string only flavors error messages.
func (s *service) ResolveOrCreate(ctx context.Context, userID int64, sel Selection, role string) (int64, error) {
	if sel.AddressID != nil {
		existing, err := s.repo.FindOwned(ctx, *sel.AddressID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid %s address", role)).
					WithReason(pkgerrors.ReasonAddressNotFound)
			}
			return 0, fmt.Errorf("looking up %s address: %w", role, err)
		}
		return existing.ID, nil
	}

	if sel.Inline == nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s address is required", role)).
			WithReason(pkgerrors.ReasonAddressNotFound)
	}

	input := sel.Inline
	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = "India"
	}

	created, err := s.repo.Create(ctx, &models.Address{
		UserID:       &userID,
		FullName:     input.FullName,
		Phone:        input.Phone,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Country:      country,
		IsDefault:    input.IsDefault,
	})
	if err != nil {
		return 0, fmt.Errorf("creating %s address: %w", role, err)
	}
	return created.ID, nil
}
