package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	models "storefront/model"
	"storefront/service"
)

// ListProducts handles GET /products?q=...&category=...
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.browse(w, r)
	if !ok {
		return
	}

	var (
		ps  []models.Product
		err error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		ps, err = h.catalog.ByCategory(r.Context(), category)
	} else {
		ps, err = h.catalog.ListProducts(r.Context())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	q := r.URL.Query().Get("q")
	if sess == nil {
		reply(w, http.StatusOK, nil, map[string]interface{}{"products": service.FilterProducts(ps, q)})
		return
	}
	sess.Search.SetProducts(ps)
	sess.Search.SetQuery(q)
	reply(w, http.StatusOK, sess, map[string]interface{}{"products": sess.Search.Results()})
}

// GetProduct handles GET /products/{id}, flagging the session's relation to it.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.browse(w, r)
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if sess == nil {
		reply(w, http.StatusOK, nil, map[string]interface{}{
			"product": p, "in_cart": 0, "is_favorite": false, "in_compare": false,
		})
		return
	}

	inCart := 0
	for _, it := range sess.Cart.Items() {
		if it.ID == p.ID {
			inCart = it.Quantity
		}
	}
	reply(w, http.StatusOK, sess, map[string]interface{}{
		"product":     p,
		"in_cart":     inCart,
		"is_favorite": sess.Favorites.IsFavorite(p.ID),
		"in_compare":  sess.Comparison.IsInCompare(p.ID),
	})
}

// Home handles GET /home
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	sections, err := h.catalog.Home(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

// WhatsApp handles GET /contact/whatsapp[?product_id=...]
func (h *Handler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	if h.contact.Phone == "" {
		writeErr(w, http.StatusNotFound, "contact number not configured")
		return
	}
	msg := h.contact.Greeting
	if id := r.URL.Query().Get("product_id"); id != "" {
		p, err := h.catalog.GetProduct(r.Context(), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		msg = service.ProductInquiry(h.contact.Greeting, p)
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": service.WhatsAppURL(h.contact.Phone, msg)})
}
