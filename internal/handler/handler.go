// Package handler содержит HTTP-обработчики API сервиса coursemart.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mmeshcher/coursemart/internal/currency"
	"github.com/mmeshcher/coursemart/internal/gateway"
	"github.com/mmeshcher/coursemart/internal/middleware"
	"github.com/mmeshcher/coursemart/internal/model"
	"github.com/mmeshcher/coursemart/internal/service"
	"github.com/mmeshcher/coursemart/internal/validation"
)

// CourseService определяет чтение каталога курсов.
type CourseService interface {
	Get(ctx context.Context, id string) (*model.Course, error)
	ListPublished(ctx context.Context) ([]model.Course, error)
}

// PaymentService определяет чтение конфигурации платёжного шлюза.
type PaymentService interface {
	ActiveGateway(ctx context.Context) (*model.PaymentGateway, error)
}

// EnrollmentService определяет запись на курсы.
type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID, transactionID string) error
	ListForStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
}

// TransactionVerifier подтверждает транзакцию в платёжном шлюзе.
type TransactionVerifier interface {
	Verify(ctx context.Context, reference string) (*gateway.Verification, error)
}

// Services объединяет зависимости обработчиков. Verifier может быть nil.
type Services struct {
	Courses     CourseService
	Payments    PaymentService
	Enrollments EnrollmentService
	Verifier    TransactionVerifier
}

// Handler реализует HTTP-обработчики API сервиса coursemart.
type Handler struct {
	services       Services
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	validate       *validator.Validate
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Services, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		services:       s,
		logger:         logger,
		authMiddleware: auth,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type courseResponse struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	InstructorID string        `json:"instructor_id"`
	Category     string        `json:"category"`
	Price        service.Price `json:"price"`
	CreatedAt    string        `json:"created_at"`
}

func toCourseResponse(c model.Course, code currency.Code) (courseResponse, error) {
	price, err := service.PriceIn(c, code)
	if err != nil {
		return courseResponse{}, err
	}
	return courseResponse{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		InstructorID: c.InstructorID,
		Category:     c.Category,
		Price:        price,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}, nil
}

func displayCurrency(r *http.Request) (currency.Code, error) {
	raw := r.URL.Query().Get("currency")
	if raw == "" {
		return currency.Base, nil
	}
	return currency.ParseCode(raw)
}

// ListCourses возвращает опубликованный каталог с ценами в запрошенной валюте.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	code, err := displayCurrency(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	courses, err := h.services.Courses.ListPublished(r.Context())
	if err != nil {
		h.logger.Error("list courses error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(courses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]courseResponse, 0, len(courses))
	for _, c := range courses {
		cr, err := toCourseResponse(c, code)
		if err != nil {
			h.logger.Error("convert course price error", zap.Error(err), zap.String("courseID", c.ID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		resp = append(resp, cr)
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetCourse возвращает курс по идентификатору.
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validation.IsValidCourseID(id) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	code, err := displayCurrency(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	course, err := h.services.Courses.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get course error", zap.Error(err), zap.String("courseID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp, err := toCourseResponse(*course, code)
	if err != nil {
		h.logger.Error("convert course price error", zap.Error(err), zap.String("courseID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetPaymentGateway возвращает публичную конфигурацию активного платёжного шлюза.
func (h *Handler) GetPaymentGateway(w http.ResponseWriter, r *http.Request) {
	g, err := h.services.Payments.ActiveGateway(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoActiveGateway) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get payment gateway error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, g)
}
