package delivery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	"github.com/m04kA/SMC-WebhookService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WebhookService/pkg/psqlbuilder"
)

const pgUniqueViolation = "23505"

// Repository журнал идемпотентности webhook-доставок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр журнала доставок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// HasProcessed проверяет, была ли доставка уже успешно обработана.
// Неуспешные записи (outcome=failure) не считаются: провайдер повторит
// доставку и мы должны обработать её заново.
func (r *Repository) HasProcessed(ctx context.Context, deliveryID string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("webhook_deliveries").
		Where(squirrel.Eq{
			"delivery_id": deliveryID,
			"outcome":     domain.OutcomeSuccess,
		}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: HasProcessed - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: HasProcessed - scan: %v", ErrScanRow, err)
	}

	return true, nil
}

// RecordProcessed фиксирует результат обработки доставки.
// Повторная фиксация того же delivery_id с outcome=success трактуется как
// параллельный дубликат (ErrAlreadyRecorded); failure-записи перезаписываются,
// чтобы успешный retry провайдера был учтен.
func (r *Repository) RecordProcessed(ctx context.Context, rec *domain.WebhookDelivery) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("webhook_deliveries").
		Columns("delivery_id", "provider", "event_type", "outcome", "duration_ms").
		Values(rec.DeliveryID, rec.Provider, rec.EventType, rec.Outcome, rec.DurationMS).
		Suffix("ON CONFLICT (delivery_id) DO UPDATE SET outcome = EXCLUDED.outcome, duration_ms = EXCLUDED.duration_ms WHERE webhook_deliveries.outcome <> 'success'").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RecordProcessed - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyRecorded
		}
		return fmt.Errorf("%w: RecordProcessed - execute insert: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: RecordProcessed - get rows affected: %v", ErrExecQuery, err)
	}

	// Строка не изменена: запись уже есть с outcome=success
	if rowsAffected == 0 {
		return ErrAlreadyRecorded
	}

	return nil
}

// DeleteOlderThan удаляет записи журнала старше cutoff.
// Возвращает количество удаленных строк.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("webhook_deliveries").
		Where(squirrel.Lt{"received_at": cutoff}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return false
}
