package service

import (
	"context"
	"fmt"

	"github.com/mmeshcher/coursemart/internal/backend"
	"github.com/mmeshcher/coursemart/internal/model"
)

// PaymentService отдаёт публичную конфигурацию платёжного шлюза.
type PaymentService struct {
	backend backend.Client
}

// NewPaymentService создаёт сервис платёжной конфигурации.
func NewPaymentService(b backend.Client) *PaymentService {
	return &PaymentService{backend: b}
}

// ActiveGateway возвращает конфигурацию активного шлюза.
func (s *PaymentService) ActiveGateway(ctx context.Context) (*model.PaymentGateway, error) {
	rows, err := s.backend.CallRemoteProcedure(ctx, backend.ProcActivePaymentGateway, nil)
	if err != nil {
		return nil, fmt.Errorf("load payment gateway: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoActiveGateway
	}

	g, err := gatewayFromRow(rows[0])
	if err != nil {
		return nil, fmt.Errorf("load payment gateway: %w", err)
	}
	return &g, nil
}
