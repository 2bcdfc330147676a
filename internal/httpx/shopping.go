package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-storefront-sync/internal/shopping"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/go-chi/chi/v5"
)

type ShoppingHandler struct {
	Svc *shopping.Service
}

type placeOrderReq struct {
	TxnID string `json:"txnId"`
}

type cartReq struct {
	Product storefront.ProductSnapshot `json:"product"`
	Qty     int                        `json:"qty"`
}

func (h *ShoppingHandler) Register(r chi.Router) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/cart", h.getCart)
	r.Put("/cart", h.putCart)
	r.Delete("/cart/{productId}", h.deleteCartLine)
}

func (h *ShoppingHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	var req placeOrderReq
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Svc.PlaceOrder(r.Context(), uid, req.TxnID)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *ShoppingHandler) listOrders(w http.ResponseWriter, r *http.Request) {
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

func (h *ShoppingHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Svc.Order(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *ShoppingHandler) getCart(w http.ResponseWriter, r *http.Request) {
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

func (h *ShoppingHandler) putCart(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	var req cartReq
	if !decode(w, r, &req) {
		return
	}
	if req.Product.ID == "" {
		writeError(w, http.StatusBadRequest, "missing product._id")
		return
	}
	c, err := h.Svc.AddToCart(r.Context(), uid, req.Product, req.Qty)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ShoppingHandler) deleteCartLine(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.RemoveFromCart(r.Context(), uid, chi.URLParam(r, "productId"))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
