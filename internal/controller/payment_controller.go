package controller

import (
	"net/http"
	"strconv"

	appPayment "github.com/booklend/booklend/internal/application/payment"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PaymentController handles payment HTTP requests.
type PaymentController struct {
	listUC    *appPayment.ListPaymentsUseCase
	getUC     *appPayment.GetPaymentUseCase
	renewUC   *appPayment.RenewPaymentUseCase
	confirmUC *appPayment.ConfirmPaymentUseCase
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(
	listUC *appPayment.ListPaymentsUseCase,
	getUC *appPayment.GetPaymentUseCase,
	renewUC *appPayment.RenewPaymentUseCase,
	confirmUC *appPayment.ConfirmPaymentUseCase,
) *PaymentController {
	return &PaymentController{
		listUC:    listUC,
		getUC:     getUC,
		renewUC:   renewUC,
		confirmUC: confirmUC,
	}
}

// List handles GET /api/v1/payments
func (h *PaymentController) List(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	req := appPayment.ListPaymentsRequest{
		ActorID:    p.UserID,
		ActorStaff: p.IsStaff,
		Status:     payment.Status(q.Get("status")),
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

	payments, err := h.listUC.Execute(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*PaymentResponse, 0, len(payments))
	for _, pm := range payments {
		resp = append(resp, FromPayment(pm))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/payments/{id}
func (h *PaymentController) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid payment id", Code: "invalid_id"})
		return
	}

	pm, err := h.getUC.Execute(r.Context(), id, p.UserID, p.IsStaff)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromPayment(pm))
}

// Renew handles POST /api/v1/payments/{id}/renew
func (h *PaymentController) Renew(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid payment id", Code: "invalid_id"})
		return
	}

	pm, err := h.renewUC.Execute(r.Context(), id, p.UserID, p.IsStaff)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromPayment(pm))
}

// Success handles GET /api/v1/payments/success. The gateway redirects the
// user here after checkout with the session id in the query string.
func (h *PaymentController) Success(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing session_id", Code: "invalid_input"})
		return
	}

	resp, err := h.confirmUC.Execute(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !resp.Confirmed {
		writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
		return
	}
	writeJSON(w, http.StatusOK, FromPayment(resp.Payment))
}

// Cancel handles GET /api/v1/payments/cancel. The session stays open at the
// gateway; the expiry scan will pick it up eventually.
func (h *PaymentController) Cancel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
