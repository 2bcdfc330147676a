package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-storefront-sync/internal/customer"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	Svc *customer.Service
}

func (h *CustomerHandler) Register(r chi.Router) {
	r.Get("/wishlist", h.getWishlist)
	r.Get("/cart", h.getCart)
	r.Get("/orders", h.listOrders)
	r.Delete("/profile", h.deleteProfile)
}

func (h *CustomerHandler) getWishlist(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	wl, err := h.Svc.Wishlist(r.Context(), uid)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wl)
}

func (h *CustomerHandler) getCart(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Cart(r.Context(), uid)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	list, err := h.Svc.Orders(r.Context(), uid)
	if err != nil {
		fail(w, err)
		return
	}
	if list == nil {
		list = []storefront.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CustomerHandler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteProfile(r.Context(), uid); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
