// Package service реализует бизнес-логику сервиса coursemart: каталог курсов,
// конфигурацию платёжного шлюза и запись на курс после оплаты.
package service

import (
	"errors"
	"time"
)

var (
	// ErrInvalidInput возвращается, если не передан один из обязательных идентификаторов.
	ErrInvalidInput = errors.New("student id, course id and transaction id are required")
	// ErrAlreadyEnrolled возвращается при повторной записи студента на тот же курс.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	// ErrEnrollmentNotCreated возвращается, если не удалось сохранить запись на курс.
	ErrEnrollmentNotCreated = errors.New("failed to create enrollment record")
	// ErrPaymentNotRecorded возвращается, если запись на курс создана, а платёж сохранить не удалось.
	ErrPaymentNotRecorded = errors.New("failed to record payment transaction")
	// ErrUnexpected скрывает непредвиденные ошибки хранилища от вызывающей стороны.
	ErrUnexpected = errors.New("an unexpected error occurred")
	// ErrCourseNotFound возвращается, если курс не найден.
	ErrCourseNotFound = errors.New("course not found")
	// ErrNoActiveGateway возвращается, если ни один платёжный шлюз не активен.
	ErrNoActiveGateway = errors.New("no active payment gateway")
)

// Result описывает результат операции в виде, пригодном для отдачи клиенту.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ResultOf превращает ошибку сервиса в Result. Неизвестные ошибки не раскрываются.
func ResultOf(err error) Result {
	if err == nil {
		return Result{Success: true}
	}

	for _, known := range []error{
		ErrInvalidInput,
		ErrAlreadyEnrolled,
		ErrEnrollmentNotCreated,
		ErrPaymentNotRecorded,
		ErrCourseNotFound,
		ErrNoActiveGateway,
	} {
		if errors.Is(err, known) {
			return Result{Error: known.Error()}
		}
	}
	return Result{Error: ErrUnexpected.Error()}
}

// Clock возвращает текущее время; подменяется в тестах.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}
