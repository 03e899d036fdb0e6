package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/coursemart/internal/gateway"
	"github.com/mmeshcher/coursemart/internal/middleware"
	"github.com/mmeshcher/coursemart/internal/service"
	"github.com/mmeshcher/coursemart/internal/validation"
)

const paymentNotVerified = "payment could not be verified"

type enrollRequest struct {
	CourseID      string `json:"course_id" validate:"required,uuid"`
	TransactionID string `json:"transaction_id" validate:"required,max=100"`
}

func enrollStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusCreated
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return http.StatusConflict
	case errors.Is(err, service.ErrCourseNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Enroll записывает текущего студента на курс после оплаты транзакцией transaction_id.
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetStudentIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, service.ResultOf(service.ErrInvalidInput))
		return
	}

	if err := h.validate.Struct(req); err != nil || !validation.IsValidTransactionReference(req.TransactionID) {
		writeJSON(w, http.StatusBadRequest, service.ResultOf(service.ErrInvalidInput))
		return
	}

	log := h.logger.With(
		zap.String("studentID", studentID),
		zap.String("courseID", req.CourseID),
		zap.String("transactionID", req.TransactionID),
	)

	if _, err := h.services.Courses.Get(r.Context(), req.CourseID); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			writeJSON(w, http.StatusNotFound, service.ResultOf(err))
			return
		}
		log.Error("get course error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, service.ResultOf(err))
		return
	}

	if h.services.Verifier != nil {
		v, err := h.services.Verifier.Verify(r.Context(), req.TransactionID)
		if err != nil {
			if errors.Is(err, gateway.ErrDeclined) || errors.Is(err, gateway.ErrTransactionNotFound) {
				log.Warn("payment not verified", zap.Error(err))
				writeJSON(w, http.StatusPaymentRequired, service.Result{Error: paymentNotVerified})
				return
			}
			log.Error("verify payment error", zap.Error(err))
			writeJSON(w, http.StatusBadGateway, service.Result{Error: paymentNotVerified})
			return
		}
		log.Info("payment verified",
			zap.String("reference", v.Reference),
			zap.String("amount", v.Amount.StringFixed(2)),
			zap.String("currency", string(v.Currency)),
			zap.Time("paidAt", v.PaidAt),
		)
	}

	err := h.services.Enrollments.Enroll(r.Context(), studentID, req.CourseID, req.TransactionID)
	writeJSON(w, enrollStatus(err), service.ResultOf(err))
}

type enrollmentResponse struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	EnrolledAt string `json:"enrolled_at"`
	Progress   int    `json:"progress"`
	Completed  bool   `json:"completed"`
}

// ListEnrollments возвращает записи текущего студента на курсы.
func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetStudentIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	enrollments, err := h.services.Enrollments.ListForStudent(r.Context(), studentID)
	if err != nil {
		h.logger.Error("list enrollments error", zap.Error(err), zap.String("studentID", studentID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(enrollments) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]enrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		resp = append(resp, enrollmentResponse{
			ID:         e.ID,
			CourseID:   e.CourseID,
			EnrolledAt: e.EnrolledAt.Format(time.RFC3339),
			Progress:   e.Progress,
			Completed:  e.Completed,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
