package controller

import (
	"net/http"
	"strconv"
	"time"

	appBorrowing "github.com/booklend/booklend/internal/application/borrowing"
	"github.com/booklend/booklend/internal/domain/borrowing"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// BorrowingController handles borrowing HTTP requests.
type BorrowingController struct {
	createUC *appBorrowing.CreateBorrowingUseCase
	returnUC *appBorrowing.ReturnBorrowingUseCase
	listUC   *appBorrowing.ListBorrowingsUseCase
	getUC    *appBorrowing.GetBorrowingUseCase
}

// NewBorrowingController creates a new BorrowingController.
func NewBorrowingController(
	createUC *appBorrowing.CreateBorrowingUseCase,
	returnUC *appBorrowing.ReturnBorrowingUseCase,
	listUC *appBorrowing.ListBorrowingsUseCase,
	getUC *appBorrowing.GetBorrowingUseCase,
) *BorrowingController {
	return &BorrowingController{
		createUC: createUC,
		returnUC: returnUC,
		listUC:   listUC,
		getUC:    getUC,
	}
}

// Create handles POST /api/v1/borrowings
func (h *BorrowingController) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	var req CreateBorrowingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid book_id", Code: "invalid_id"})
		return
	}

	expected, err := time.Parse(time.DateOnly, req.ExpectedReturnDate)
	if err != nil {
		writeError(w, domainErrors.NewValidationError("expected_return_date", "must be a date in YYYY-MM-DD format"))
		return
	}

	resp, err := h.createUC.Execute(r.Context(), appBorrowing.CreateBorrowingRequest{
		UserID:             p.UserID,
		BookID:             bookID,
		ExpectedReturnDate: expected,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := FromBorrowing(resp.Borrowing)
	out.PaymentURL = resp.Payment.SessionURL
	writeJSON(w, http.StatusCreated, out)
}

// Return handles POST /api/v1/borrowings/{id}/return
func (h *BorrowingController) Return(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid borrowing id", Code: "invalid_id"})
		return
	}

	resp, err := h.returnUC.Execute(r.Context(), appBorrowing.ReturnBorrowingRequest{
		BorrowingID: id,
		ActorID:     p.UserID,
		ActorStaff:  p.IsStaff,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := FromBorrowing(resp.Borrowing)
	if resp.Fine != nil {
		out.PaymentURL = resp.Fine.SessionURL
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/borrowings/{id}
func (h *BorrowingController) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid borrowing id", Code: "invalid_id"})
		return
	}

	b, err := h.getUC.Execute(r.Context(), id, p.UserID, p.IsStaff)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromBorrowing(b))
}

// List handles GET /api/v1/borrowings
func (h *BorrowingController) List(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	req := appBorrowing.ListBorrowingsRequest{
		ActorID:    p.UserID,
		ActorStaff: p.IsStaff,
		Active:     borrowing.ParseActiveFilter(q.Get("is_active")),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := q.Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid user_id", Code: "invalid_id"})
			return
		}
		req.UserID = &id
	}

	borrowings, err := h.listUC.Execute(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*BorrowingResponse, 0, len(borrowings))
	for _, b := range borrowings {
		resp = append(resp, FromBorrowing(b))
	}
	writeJSON(w, http.StatusOK, resp)
}
