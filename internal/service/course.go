package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/coursemart/internal/backend"
	"github.com/mmeshcher/coursemart/internal/currency"
	"github.com/mmeshcher/coursemart/internal/model"
)

// CourseService читает каталог курсов.
type CourseService struct {
	backend backend.Client
}

// NewCourseService создаёт сервис каталога.
func NewCourseService(b backend.Client) *CourseService {
	return &CourseService{backend: b}
}

// Get возвращает курс по идентификатору.
func (s *CourseService) Get(ctx context.Context, id string) (*model.Course, error) {
	row, err := s.backend.FindOne(ctx, backend.TableCourses, backend.Predicate{"id": id})
	if err != nil {
		if errors.Is(err, backend.ErrNoRecord) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	c := courseFromRow(row)
	return &c, nil
}

// ListPublished возвращает опубликованные курсы, начиная с новых.
func (s *CourseService) ListPublished(ctx context.Context) ([]model.Course, error) {
	rows, err := s.backend.FindAll(ctx, backend.TableCourses,
		backend.Predicate{"published": true},
		backend.Order{Column: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]model.Course, 0, len(rows))
	for _, r := range rows {
		res = append(res, courseFromRow(r))
	}
	return res, nil
}

// Price описывает цену курса в выбранной валюте.
type Price struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  currency.Code   `json:"currency"`
	Formatted string          `json:"formatted"`
}

// PriceIn пересчитывает цену курса из базовой валюты в code.
func PriceIn(c model.Course, code currency.Code) (Price, error) {
	amount, err := currency.ConvertFromNGN(c.Price, code)
	if err != nil {
		return Price{}, err
	}

	formatted, err := currency.Format(amount, code)
	if err != nil {
		return Price{}, err
	}

	return Price{Amount: amount, Currency: code, Formatted: formatted}, nil
}
