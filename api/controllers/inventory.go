package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/adityaraut/dairydrop-backend/api/responses"
	"github.com/adityaraut/dairydrop-backend/internal/inventory"
	pkgerrors "github.com/adityaraut/dairydrop-backend/pkg/errors"
	"github.com/adityaraut/dairydrop-backend/pkg/logger"
)

// InventoryMovements returns the stock ledger for one product, newest last.
// Admin only.
func InventoryMovements(repo inventory.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory repository unavailable"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "productID"))
		productID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || productID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer"))
			return
		}

		movements, err := repo.ListByProductID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory movements"))
			return
		}

		responses.WriteSuccess(w, inventory.MovementsFromModels(movements))
	}
}
