package controllers

import (
	"net/http"

	"github.com/adityaraut/dairydrop-backend/api/responses"
	"github.com/adityaraut/dairydrop-backend/api/validators"
	"github.com/adityaraut/dairydrop-backend/internal/pricing"
	pkgerrors "github.com/adityaraut/dairydrop-backend/pkg/errors"
	"github.com/adityaraut/dairydrop-backend/pkg/logger"
)

// PricingQuote prices a cart without committing anything. The response
// is advisory; the order endpoint re-prices inside its transaction.
func PricingQuote(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var body pricing.QuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Normalize()

		result, err := svc.Quote(r.Context(), body.Items, body.CouponCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
