// Package model содержит доменные сущности сервиса coursemart.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/coursemart/internal/currency"
)

// Course описывает курс из каталога. Цена хранится в базовой валюте.
type Course struct {
	ID           string
	Title        string
	Description  string
	InstructorID string
	Category     string
	Price        decimal.Decimal
	Published    bool
	CreatedAt    time.Time
}

// Enrollment связывает студента с оплаченным курсом.
type Enrollment struct {
	ID               string
	StudentID        string
	CourseID         string
	EnrolledAt       time.Time
	Progress         int
	Completed        bool
	PaymentReference string
}

// PaymentStatus описывает статус платёжной транзакции.
type PaymentStatus string

// PaymentStatusSuccessful означает подтверждённую оплату.
const PaymentStatusSuccessful PaymentStatus = "successful"

// PaymentTransaction фиксирует платёж, по которому выполнена запись на курс.
type PaymentTransaction struct {
	ID            string
	UserID        string
	CourseID      string
	TransactionID string
	Status        PaymentStatus
	Amount        decimal.Decimal
	Currency      currency.Code
	CreatedAt     time.Time
}

// PaymentGateway содержит публичную конфигурацию активного платёжного шлюза.
type PaymentGateway struct {
	Provider  string        `json:"provider"`
	PublicKey string        `json:"public_key"`
	Currency  currency.Code `json:"currency"`
}
