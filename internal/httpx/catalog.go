package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-storefront-sync/internal/catalog"
	"github.com/ariefcatur/go-storefront-sync/internal/events"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	Svc *catalog.Service
}

type productActionReq struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type selectedReq struct {
	IDs []string `json:"ids"`
}

type stockReq struct {
	Qty        int  `json:"qty"`
	IsAddition bool `json:"isAddition"`
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Post("/products", h.createProduct)
	r.Get("/products", h.listProducts)
	r.Get("/products/category/{type}", h.listProducts)
	r.Post("/products/ids", h.selectedProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Put("/products/{id}/stock", h.adjustStock)
	r.Put("/wishlist", h.productAction(events.KindAddToWishlist))
	r.Delete("/wishlist/{productId}", h.productAction(events.KindRemoveFromWishlist))
	r.Put("/cart", h.productAction(events.KindAddToCart))
	r.Delete("/cart/{productId}", h.productAction(events.KindRemoveFromCart))
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if !decode(w, r, &p) {
		return
	}
	created, err := h.Svc.CreateProduct(r.Context(), p)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// listProducts serves the whole catalog, or one type of product taken from
// the path or the type query parameter.
func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	if typ == "" {
		typ = r.URL.Query().Get("type")
	}
	ps, err := h.Svc.Products(r.Context(), typ)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) selectedProducts(w http.ResponseWriter, r *http.Request) {
	var req selectedReq
	if !decode(w, r, &req) {
		return
	}
	ps, err := h.Svc.SelectedProducts(r.Context(), req.IDs)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req stockReq
	if !decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	n, err := h.Svc.AdjustStock(r.Context(), id, req.Qty, req.IsAddition)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, storefront.InventoryRecord{ProductID: id, Unit: n})
}

// productAction handles the wishlist and cart endpoints. PUT takes the
// product in the body; DELETE takes it from the path.
func (h *CatalogHandler) productAction(kind events.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := caller(w, r)
		if !ok {
			return
		}
		var req productActionReq
		if r.Method == http.MethodDelete {
			req.ProductID = chi.URLParam(r, "productId")
		} else if !decode(w, r, &req) {
			return
		}
		if req.ProductID == "" {
			writeError(w, http.StatusBadRequest, "missing productId")
			return
		}
		env, err := h.Svc.EmitProductEvent(r.Context(), uid, req.ProductID, req.Qty, kind)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, env)
	}
}
