// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avries/Asset-Ledger-Backend/internal/api/response"
	"github.com/avries/Asset-Ledger-Backend/internal/model"
)

// ValidateAssetMiddleware validates that the asset URL parameter names a
// supported asset type. Returns 400 Bad Request when the parameter is
// missing or unknown, so handlers behind it can parse it without
// re-checking.
//
// Example usage in router:
//
//	r.Route("/{asset}", func(r chi.Router) {
//	    r.Use(middleware.ValidateAssetMiddleware)
//	    r.Get("/", handler.Position)
//	})
func ValidateAssetMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "asset")

		if symbol == "" {
			response.RespondError(w, http.StatusBadRequest, "asset type is required", "")
			return
		}

		if _, err := model.ParseAssetType(symbol); err != nil {
			response.RespondError(w, http.StatusBadRequest, "unknown asset type", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
