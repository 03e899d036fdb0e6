package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/coursemart/internal/backend"
)

const (
	reconcileBatchLimit = 100
	// reconcileGrace не даёт сверке вмешаться в запись, которая ещё выполняется.
	reconcileGrace = time.Minute
)

// Reconciler досоздаёт платёжные транзакции для записей на курс, у которых их нет.
type Reconciler struct {
	backend  backend.Client
	logger   *zap.Logger
	clock    Clock
	interval time.Duration
}

// NewReconciler создаёт процесс сверки с указанным интервалом запуска.
func NewReconciler(b backend.Client, logger *zap.Logger, clock Clock, interval time.Duration) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		backend:  b,
		logger:   logger,
		clock:    clock,
		interval: interval,
	}
}

// Start запускает периодическую сверку и блокируется до отмены контекста.
func (r *Reconciler) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			repaired, err := r.Sweep(ctx)
			if err != nil {
				r.logger.Error("reconcile sweep", zap.Error(err))
				continue
			}
			if repaired > 0 {
				r.logger.Info("reconcile sweep repaired enrollments", zap.Int("repaired", repaired))
			}
		}
	}
}

// Sweep выполняет один проход сверки и возвращает число восстановленных платежей.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	rows, err := r.backend.CallRemoteProcedure(ctx, backend.ProcOrphanedEnrollments, map[string]any{
		"older_than":  r.clock.now().Add(-reconcileGrace),
		"batch_limit": reconcileBatchLimit,
	})
	if err != nil {
		return 0, fmt.Errorf("find orphaned enrollments: %w", err)
	}

	es := &EnrollmentService{backend: r.backend, logger: r.logger, clock: r.clock}

	repaired := 0
	for _, row := range rows {
		e := enrollmentFromRow(row)
		if e.PaymentReference == "" {
			r.logger.Warn("orphaned enrollment without payment reference",
				zap.String("enrollmentID", e.ID))
			continue
		}

		if err := es.recordPayment(ctx, e.StudentID, e.CourseID, e.PaymentReference); err != nil {
			if ctx.Err() != nil {
				return repaired, ctx.Err()
			}
			r.logger.Error("repair payment transaction", zap.Error(err),
				zap.String("enrollmentID", e.ID))
			continue
		}
		repaired++
	}

	return repaired, nil
}
