package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/diewo77/tutoring-app/internal/httpx"
	"github.com/diewo77/tutoring-app/internal/models"
	"github.com/diewo77/tutoring-app/internal/services"
)

type PaymentHandler struct {
	Ledger *services.LedgerService
}

func NewPaymentHandler(ledger *services.LedgerService) *PaymentHandler {
	return &PaymentHandler{Ledger: ledger}
}

type createPaymentReq struct {
	StudentID     uint    `json:"student_id" validate:"required"`
	CourseID      uint    `json:"course_id" validate:"required"`
	FeeItem       string  `json:"fee_item" validate:"required"`
	FeeDate       string  `json:"fee_date" validate:"required"`
	PaymentType   string  `json:"payment_type" validate:"required,oneof=monthly quarterly semi_annual"`
	DepositAmount float64 `json:"deposit_amount" validate:"gte=0"`
	DueDate       string  `json:"due_date"`
	Notes         string  `json:"notes"`
}

type payRemainingReq struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Ledger.ListPayments()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_payments", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations(err))
		return
	}
	payment, err := h.Ledger.CreatePayment(services.CreatePaymentInput{
		StudentID:     req.StudentID,
		CourseID:      req.CourseID,
		FeeItem:       req.FeeItem,
		FeeDate:       req.FeeDate,
		Cadence:       models.Cadence(req.PaymentType),
		DepositAmount: req.DepositAmount,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.Created(w, payment.ID, "payment record created")
}

func (h *PaymentHandler) Details(w http.ResponseWriter, r *http.Request) {
	details, err := h.Ledger.ListPaymentDetails(pathID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *PaymentHandler) PayRemaining(w http.ResponseWriter, r *http.Request) {
	var req payRemainingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations(err))
		return
	}
	if _, err := h.Ledger.ApplyPayment(pathID(r), req.Amount, req.PaymentMethod, req.Notes); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "balance payment recorded")
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.DeletePayment(pathID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "payment record deleted")
}
