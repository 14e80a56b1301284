package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"storefront/service"
)

func compareView(c *service.Comparison) map[string]interface{} {
	return map[string]interface{}{
		"products":     c.Products(),
		"count":        c.Count(),
		"can_add_more": c.CanAddMore(),
	}
}

// GetCompare handles GET /compare
func (h *Handler) GetCompare(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	reply(w, http.StatusOK, sess, compareView(sess.Comparison))
}

// AddToCompare handles POST /compare
// body: { "product_id": "..." }; a rejected add is still a 200 with success=false
func (h *Handler) AddToCompare(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	p, ok := h.productFromBody(w, r)
	if !ok {
		return
	}
	res := sess.Comparison.AddToCompare(r.Context(), p)
	out := compareView(sess.Comparison)
	out["result"] = res
	reply(w, http.StatusOK, sess, out)
}

// RemoveFromCompare handles DELETE /compare/{id}
func (h *Handler) RemoveFromCompare(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Comparison.RemoveFromCompare(r.Context(), mux.Vars(r)["id"])
	reply(w, http.StatusOK, sess, compareView(sess.Comparison))
}

// ClearCompare handles DELETE /compare
func (h *Handler) ClearCompare(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Comparison.ClearCompare(r.Context())
	reply(w, http.StatusOK, sess, compareView(sess.Comparison))
}
