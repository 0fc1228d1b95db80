package booking

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

// Код ошибки PostgreSQL unique_violation
const pgUniqueViolation = "23505"

var bookingColumns = []string{
	"id",
	"external_event_id",
	"external_invitee_id",
	"correlation_key",
	"builder_id",
	"client_id",
	"session_type_id",
	"start_time",
	"end_time",
	"status",
	"payment_status",
	"amount_minor",
	"currency",
	"client_timezone",
	"builder_timezone",
	"cancellation_reason",
	"cancelled_by",
	"cancelled_at",
	"payment_session_id",
	"payment_intent_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// При нарушении уникальности external_event_id возвращает
// ErrDuplicateExternalEventID: параллельная доставка уже создала запись,
// вызывающая сторона должна перечитать и применить транзицию как update.
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"external_event_id",
			"external_invitee_id",
			"correlation_key",
			"builder_id",
			"client_id",
			"session_type_id",
			"start_time",
			"end_time",
			"status",
			"payment_status",
			"amount_minor",
			"currency",
			"client_timezone",
			"builder_timezone",
			"cancellation_reason",
			"cancelled_by",
			"cancelled_at",
			"payment_session_id",
			"payment_intent_id",
		).
		Values(
			b.ExternalEventID,
			b.ExternalInviteeID,
			b.CorrelationKey,
			b.BuilderID,
			b.ClientID,
			b.SessionTypeID,
			b.StartTime,
			b.EndTime,
			b.Status,
			b.PaymentStatus,
			b.AmountMinor,
			b.Currency,
			b.ClientTimezone,
			b.BuilderTimezone,
			b.CancellationReason,
			b.CancelledBy,
			b.CancelledAt,
			b.PaymentSessionID,
			b.PaymentIntentID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateExternalEventID
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по внутреннему ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "GetByID")
}

// GetByExternalEventID получает бронирование по ID scheduling-события провайдера.
// Внутри транзакции добавляет FOR UPDATE: строка блокируется на время транзиции,
// чтобы параллельные доставки для одного бронирования не теряли обновления.
func (r *Repository) GetByExternalEventID(ctx context.Context, externalEventID string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"external_event_id": externalEventID}, "GetByExternalEventID")
}

// GetByCorrelationKey получает бронирование по ключу корреляции
func (r *Repository) GetByCorrelationKey(ctx context.Context, correlationKey string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"correlation_key": correlationKey}, "GetByCorrelationKey")
}

// GetByPaymentIntentID получает бронирование по payment intent платежного провайдера
func (r *Repository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"payment_intent_id": paymentIntentID}, "GetByPaymentIntentID")
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq, method string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where)

	// Блокировка строки на время транзиции state machine
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, method, err)
	}

	return b, nil
}

// GetByClientID получает список бронирований клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("start_time DESC NULLS LAST, id DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	return r.getList(ctx, selectBuilder, "GetByClientID")
}

// GetBySessionType получает бронирования по типу сессии (для builder-а)
func (r *Repository) GetBySessionType(ctx context.Context, sessionTypeID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"session_type_id": sessionTypeID}).
		OrderBy("start_time DESC NULLS LAST, id DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	return r.getList(ctx, selectBuilder, "GetBySessionType")
}

func (r *Repository) getList(ctx context.Context, selectBuilder squirrel.SelectBuilder, method string) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, method, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, method, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, method, err)
	}

	return bookings, nil
}

// UpdateSchedule обновляет мутабельные scheduling-поля бронирования
// (времена, invitee, таймзона). Используется для идемпотентного повторного
// применения invitee.created и для reschedule.
func (r *Repository) UpdateSchedule(ctx context.Context, id int64, startTime, endTime *time.Time, inviteeID, clientTimezone string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if startTime != nil {
		updateBuilder = updateBuilder.Set("start_time", *startTime)
	}
	if endTime != nil {
		updateBuilder = updateBuilder.Set("end_time", *endTime)
	}
	if inviteeID != "" {
		updateBuilder = updateBuilder.Set("external_invitee_id", inviteeID)
	}
	if clientTimezone != "" {
		updateBuilder = updateBuilder.Set("client_timezone", clientTimezone)
	}

	return r.execUpdate(ctx, executor, updateBuilder, "UpdateSchedule")
}

// UpdateStatus обновляет scheduling-статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, executor, updateBuilder, "UpdateStatus")
}

// MarkCancelled переводит бронирование в статус cancelled с причиной и актором
func (r *Repository) MarkCancelled(ctx context.Context, id int64, reason string, actor domain.CancelActor) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_by", actor).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, executor, updateBuilder, "MarkCancelled")
}

// SetPayment записывает результат успешного платежа
func (r *Repository) SetPayment(ctx context.Context, id int64, status domain.PaymentStatus, amountMinor int64, currency, paymentSessionID, paymentIntentID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("payment_status", status).
		Set("amount_minor", amountMinor).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if currency != "" {
		updateBuilder = updateBuilder.Set("currency", currency)
	}
	if paymentSessionID != "" {
		updateBuilder = updateBuilder.Set("payment_session_id", paymentSessionID)
	}
	if paymentIntentID != "" {
		updateBuilder = updateBuilder.Set("payment_intent_id", paymentIntentID)
	}

	return r.execUpdate(ctx, executor, updateBuilder, "SetPayment")
}

// SetPaymentStatus обновляет только платежный статус (refunded, failed)
func (r *Repository) SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("payment_status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, executor, updateBuilder, "SetPaymentStatus")
}

func (r *Repository) execUpdate(ctx context.Context, executor DBExecutor, updateBuilder squirrel.UpdateBuilder, method string) error {
	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, method, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// rowScanner общий интерфейс для *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку в бронирование
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var startTime, endTime, cancelledAt, createdAt, updatedAt sql.NullTime
	var cancelledBy sql.NullString

	err := row.Scan(
		&b.ID,
		&b.ExternalEventID,
		&b.ExternalInviteeID,
		&b.CorrelationKey,
		&b.BuilderID,
		&b.ClientID,
		&b.SessionTypeID,
		&startTime,
		&endTime,
		&b.Status,
		&b.PaymentStatus,
		&b.AmountMinor,
		&b.Currency,
		&b.ClientTimezone,
		&b.BuilderTimezone,
		&b.CancellationReason,
		&cancelledBy,
		&cancelledAt,
		&b.PaymentSessionID,
		&b.PaymentIntentID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startTime.Valid {
		b.StartTime = &startTime.Time
	}
	if endTime.Valid {
		b.EndTime = &endTime.Time
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if cancelledBy.Valid {
		actor := domain.CancelActor(cancelledBy.String)
		b.CancelledBy = &actor
	}
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return false
}
