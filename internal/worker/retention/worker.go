// Package retention плановая очистка журнала webhook-доставок.
// Записи старше TTL больше не нужны для дедупликации: провайдеры
// не повторяют доставки спустя столько времени.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DeliveryLedger интерфейс журнала доставок
type DeliveryLedger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Worker планировщик очистки журнала
type Worker struct {
	ledger   DeliveryLedger
	logger   Logger
	ttl      time.Duration
	schedule string
	cron     *cron.Cron
}

// New создает воркер очистки. ttlDays определяет возраст удаляемых записей,
// schedule задает cron-выражение запуска.
func New(ledger DeliveryLedger, logger Logger, ttlDays int, schedule string) *Worker {
	return &Worker{
		ledger:   ledger,
		logger:   logger,
		ttl:      time.Duration(ttlDays) * 24 * time.Hour,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start регистрирует задачу и запускает планировщик
func (w *Worker) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.sweep); err != nil {
		return fmt.Errorf("retention: invalid sweep schedule %q: %w", w.schedule, err)
	}

	w.cron.Start()
	w.logger.Info("Retention worker started: schedule=%q ttl=%s", w.schedule, w.ttl)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущей задачи
func (w *Worker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info("Retention worker stopped")
}

func (w *Worker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-w.ttl)
	deleted, err := w.ledger.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.logger.Error("Retention sweep failed: %v", err)
		return
	}

	w.logger.Info("Retention sweep done: deleted=%d cutoff=%s", deleted, cutoff.Format(time.RFC3339))
}
