package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"storefront/service"
)

func cartView(c *service.Cart) map[string]interface{} {
	return map[string]interface{}{
		"items":       c.Items(),
		"total_items": c.TotalItems(),
		"total_price": c.TotalPrice(),
	}
}

// GetCart handles GET /cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	reply(w, http.StatusOK, sess, cartView(sess.Cart))
}

// AddToCart handles POST /cart/items
// body: { "product_id": "..." }
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	p, ok := h.productFromBody(w, r)
	if !ok {
		return
	}
	qty := sess.Cart.AddToCart(r.Context(), p)
	out := cartView(sess.Cart)
	out["quantity"] = qty
	reply(w, http.StatusOK, sess, out)
}

// UpdateQuantity handles PUT /cart/items/{id}
// body: { "quantity": 3 }; zero or less removes the line
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req quantityReq
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		writeErr(w, http.StatusBadRequest, "quantity is required")
		return
	}
	sess.Cart.UpdateQuantity(r.Context(), mux.Vars(r)["id"], *req.Quantity)
	reply(w, http.StatusOK, sess, cartView(sess.Cart))
}

// RemoveFromCart handles DELETE /cart/items/{id}
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Cart.RemoveFromCart(r.Context(), mux.Vars(r)["id"])
	reply(w, http.StatusOK, sess, cartView(sess.Cart))
}

// ClearCart handles DELETE /cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Cart.ClearCart(r.Context())
	reply(w, http.StatusOK, sess, cartView(sess.Cart))
}
