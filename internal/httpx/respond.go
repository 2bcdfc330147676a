package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-storefront-sync/internal/broker"
	"github.com/ariefcatur/go-storefront-sync/internal/cart"
	"github.com/ariefcatur/go-storefront-sync/internal/catalog"
	"github.com/ariefcatur/go-storefront-sync/internal/inventory"
	"github.com/ariefcatur/go-storefront-sync/internal/orders"
)

// HeaderUserID carries the authenticated caller, set by the gateway.
const HeaderUserID = "X-User-Id"

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// fail maps a domain error to its status code.
func fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, inventory.ErrProductNotFound):
		code = http.StatusNotFound
	case errors.Is(err, orders.ErrNoActiveCart),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, cart.ErrVersionConflict),
		errors.Is(err, catalog.ErrProductExists):
		code = http.StatusConflict
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrUnsupportedEvent),
		errors.Is(err, catalog.ErrInvalidProduct):
		code = http.StatusBadRequest
	case errors.Is(err, broker.ErrBrokerUnavailable):
		code = http.StatusServiceUnavailable
	}
	writeError(w, code, err.Error())
}

// caller returns the X-User-Id header, writing 401 when it is missing.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(HeaderUserID)
	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing "+HeaderUserID)
		return "", false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
