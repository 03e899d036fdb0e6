package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/coursemart/internal/backend"
	"github.com/mmeshcher/coursemart/internal/currency"
	"github.com/mmeshcher/coursemart/internal/model"
)

// EnrollmentService записывает студентов на курсы после успешной оплаты.
type EnrollmentService struct {
	backend backend.Client
	logger  *zap.Logger
	clock   Clock
}

// NewEnrollmentService создаёт сервис записи на курсы.
func NewEnrollmentService(b backend.Client, logger *zap.Logger, clock Clock) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		backend: b,
		logger:  logger,
		clock:   clock,
	}
}

// Enroll создаёт запись на курс и запись об успешном платеже с идентификатором transactionID.
//
// Уникальность пары (студент, курс) обеспечивает хранилище: нарушение ограничения
// трактуется так же, как найденная заранее запись. Если платёж сохранить не удалось,
// запись на курс остаётся, а недостающий платёж досоздаёт Reconciler.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID, transactionID string) error {
	studentID = strings.TrimSpace(studentID)
	courseID = strings.TrimSpace(courseID)
	transactionID = strings.TrimSpace(transactionID)
	if studentID == "" || courseID == "" || transactionID == "" {
		return ErrInvalidInput
	}

	log := s.logger.With(
		zap.String("studentID", studentID),
		zap.String("courseID", courseID),
		zap.String("transactionID", transactionID),
	)

	_, err := s.backend.FindOne(ctx, backend.TableEnrollments, backend.Predicate{
		"student_id": studentID,
		"course_id":  courseID,
	})
	switch {
	case err == nil:
		return ErrAlreadyEnrolled
	case !errors.Is(err, backend.ErrNoRecord):
		log.Error("check existing enrollment", zap.Error(err))
		return ErrUnexpected
	}

	now := s.clock.now()

	enrollment := model.Enrollment{
		StudentID:        studentID,
		CourseID:         courseID,
		EnrolledAt:       now,
		Progress:         0,
		Completed:        false,
		PaymentReference: transactionID,
	}
	if err := s.backend.Insert(ctx, backend.TableEnrollments, enrollmentRow(enrollment)); err != nil {
		if errors.Is(err, backend.ErrDuplicate) {
			return ErrAlreadyEnrolled
		}
		if errors.Is(err, backend.ErrMissingReference) {
			return ErrCourseNotFound
		}
		log.Error("create enrollment", zap.Error(err))
		return ErrEnrollmentNotCreated
	}

	if err := s.recordPayment(ctx, studentID, courseID, transactionID); err != nil {
		log.Error("record payment transaction", zap.Error(err))
		return ErrPaymentNotRecorded
	}

	log.Info("student enrolled")
	return nil
}

func (s *EnrollmentService) recordPayment(ctx context.Context, studentID, courseID, transactionID string) error {
	// Сумма уточняется при сверке с платёжным шлюзом.
	tx := model.PaymentTransaction{
		UserID:        studentID,
		CourseID:      courseID,
		TransactionID: transactionID,
		Status:        model.PaymentStatusSuccessful,
		Amount:        decimal.Zero,
		Currency:      currency.NGN,
		CreatedAt:     s.clock.now(),
	}
	return s.backend.Insert(ctx, backend.TablePaymentTransactions, paymentTransactionRow(tx))
}

// ListForStudent возвращает записи студента на курсы, начиная с последней.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, ErrInvalidInput
	}

	rows, err := s.backend.FindAll(ctx, backend.TableEnrollments,
		backend.Predicate{"student_id": studentID},
		backend.Order{Column: "enrolled_at", Desc: true},
	)
	if err != nil {
		s.logger.Error("list enrollments", zap.Error(err), zap.String("studentID", studentID))
		return nil, ErrUnexpected
	}

	res := make([]model.Enrollment, 0, len(rows))
	for _, r := range rows {
		res = append(res, enrollmentFromRow(r))
	}
	return res, nil
}
