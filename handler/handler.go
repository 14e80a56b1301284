package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	models "storefront/model"
	"storefront/service"
	"storefront/store"
)

const (
	SessionHeader = "X-Session-ID"
	UserHeader    = "X-User-ID"
)

// Contact configures the WhatsApp widget.
type Contact struct {
	Phone    string
	Greeting string
}

// Handler is the HTTP layer over the catalog and the session aggregates.
type Handler struct {
	catalog  service.CatalogService
	sessions service.SessionProvider
	contact  Contact
	log      logrus.FieldLogger
}

func NewHandler(catalog service.CatalogService, sessions service.SessionProvider, contact Contact, log logrus.FieldLogger) *Handler {
	return &Handler{catalog: catalog, sessions: sessions, contact: contact, log: log}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.Use(h.instrument)

	// Catalog
	r.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", h.GetProduct).Methods(http.MethodGet)
	r.HandleFunc("/home", h.Home).Methods(http.MethodGet)

	// Cart
	r.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/cart", h.ClearCart).Methods(http.MethodDelete)
	r.HandleFunc("/cart/items", h.AddToCart).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/{id}", h.UpdateQuantity).Methods(http.MethodPut)
	r.HandleFunc("/cart/items/{id}", h.RemoveFromCart).Methods(http.MethodDelete)

	// Favorites
	r.HandleFunc("/favorites", h.ListFavorites).Methods(http.MethodGet)
	r.HandleFunc("/favorites", h.AddFavorite).Methods(http.MethodPost)
	r.HandleFunc("/favorites/{id}", h.RemoveFavorite).Methods(http.MethodDelete)
	r.HandleFunc("/favorites/{id}/toggle", h.ToggleFavorite).Methods(http.MethodPost)

	// Comparison
	r.HandleFunc("/compare", h.GetCompare).Methods(http.MethodGet)
	r.HandleFunc("/compare", h.AddToCompare).Methods(http.MethodPost)
	r.HandleFunc("/compare", h.ClearCompare).Methods(http.MethodDelete)
	r.HandleFunc("/compare/{id}", h.RemoveFromCompare).Methods(http.MethodDelete)

	// Contact, ops
	r.HandleFunc("/contact/whatsapp", h.WhatsApp).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())
}

// --- request shapes ---
type productReq struct {
	ProductID string `json:"product_id"`
}

type quantityReq struct {
	Quantity *int `json:"quantity"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// fail maps service and store errors to a status code.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "product not found")
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	if errors.Is(err, service.ErrStorageUnavailable) {
		h.log.WithError(err).Warn("session storage unavailable")
		writeErr(w, http.StatusServiceUnavailable, "session storage unavailable")
		return
	}
	h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	writeErr(w, http.StatusInternalServerError, "internal error")
}

// session resolves the caller's session, issuing a new id when the header is
// absent, and syncs the signed-in user from the user header.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	w.Header().Set(SessionHeader, id)

	sess, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	var user *models.User
	if uid := r.Header.Get(UserHeader); uid != "" {
		user = &models.User{ID: uid}
	}
	sess.SetUser(r.Context(), user)
	return sess, true
}

// browse resolves the session for read-only catalog requests. Without a
// session header none is created and nil is returned.
func (h *Handler) browse(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	if r.Header.Get(SessionHeader) == "" {
		return nil, true
	}
	return h.session(w, r)
}

// reply writes payload plus the notifications raised while serving the
// request.
func reply(w http.ResponseWriter, code int, sess *service.Session, payload map[string]interface{}) {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["notifications"] = []models.Notification{}
	if sess != nil {
		payload["notifications"] = sess.Inbox.Drain()
	}
	writeJSON(w, code, payload)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func (h *Handler) productFromBody(w http.ResponseWriter, r *http.Request) (models.Product, bool) {
	var req productReq
	if !decode(w, r, &req) {
		return models.Product{}, false
	}
	if req.ProductID == "" {
		writeErr(w, http.StatusBadRequest, "product_id is required")
		return models.Product{}, false
	}
	p, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.fail(w, r, err)
		return models.Product{}, false
	}
	return p, true
}
