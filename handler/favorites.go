package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	models "storefront/model"
	"storefront/service"
)

func favoritesView(f *service.Favorites) map[string]interface{} {
	return map[string]interface{}{"favorites": f.List()}
}

// ListFavorites handles GET /favorites[?refresh=true]
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("refresh") == "true" {
		sess.Favorites.FetchFavorites(r.Context())
	}
	reply(w, http.StatusOK, sess, favoritesView(sess.Favorites))
}

// AddFavorite handles POST /favorites
// body: { "product_id": "..." }
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if sess.Favorites.RequireUser() == nil {
		reply(w, http.StatusUnauthorized, sess, favoritesView(sess.Favorites))
		return
	}
	p, ok := h.productFromBody(w, r)
	if !ok {
		return
	}
	sess.Favorites.AddToFavorites(r.Context(), p)
	reply(w, http.StatusOK, sess, favoritesView(sess.Favorites))
}

// RemoveFavorite handles DELETE /favorites/{id}
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if sess.Favorites.RequireUser() == nil {
		reply(w, http.StatusUnauthorized, sess, favoritesView(sess.Favorites))
		return
	}
	sess.Favorites.RemoveFromFavorites(r.Context(), mux.Vars(r)["id"])
	reply(w, http.StatusOK, sess, favoritesView(sess.Favorites))
}

// ToggleFavorite handles POST /favorites/{id}/toggle
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if sess.Favorites.RequireUser() == nil {
		reply(w, http.StatusUnauthorized, sess, favoritesView(sess.Favorites))
		return
	}

	id := mux.Vars(r)["id"]

	p := models.Product{ID: id}
	if !sess.Favorites.IsFavorite(id) {
		var err error
		if p, err = h.catalog.GetProduct(r.Context(), id); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	sess.Favorites.ToggleFavorite(r.Context(), p)
	out := favoritesView(sess.Favorites)
	out["is_favorite"] = sess.Favorites.IsFavorite(id)
	reply(w, http.StatusOK, sess, out)
}
