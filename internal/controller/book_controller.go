package controller

import (
	"net/http"
	"strconv"

	"github.com/booklend/booklend/internal/application/catalog"
	"github.com/booklend/booklend/internal/domain/book"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// BookController handles catalog HTTP requests.
type BookController struct {
	catalog *catalog.Service
}

// NewBookController creates a new BookController.
func NewBookController(cs *catalog.Service) *BookController {
	return &BookController{catalog: cs}
}

// Create handles POST /api/v1/books
func (h *BookController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	b, err := h.catalog.Create(r.Context(), catalog.CreateBookRequest{
		Title:         req.Title,
		Author:        req.Author,
		Cover:         book.Cover(req.Cover),
		Inventory:     req.Inventory,
		DailyFeeCents: floatToCents(req.DailyFee),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, FromBook(b))
}

// Get handles GET /api/v1/books/{id}
func (h *BookController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid book id", Code: "invalid_id"})
		return
	}

	b, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromBook(b))
}

// List handles GET /api/v1/books
func (h *BookController) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	books, err := h.catalog.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, FromBook(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Update handles PATCH /api/v1/books/{id}
func (h *BookController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid book id", Code: "invalid_id"})
		return
	}

	var req UpdateBookRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	upd := catalog.UpdateBookRequest{
		Title:     req.Title,
		Author:    req.Author,
		Inventory: req.Inventory,
	}
	if req.Cover != nil {
		c := book.Cover(*req.Cover)
		upd.Cover = &c
	}
	if req.DailyFee != nil {
		cents := floatToCents(*req.DailyFee)
		upd.DailyFeeCents = &cents
	}

	b, err := h.catalog.Update(r.Context(), id, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromBook(b))
}

// Delete handles DELETE /api/v1/books/{id}
func (h *BookController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid book id", Code: "invalid_id"})
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
