package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonService/pkg/psqlbuilder"
)

// Код ошибки Postgres "unique_violation"
// Нарушение частичного уникального индекса по (lesson_date, start_time)
// для активных индивидуальных занятий превращаем в ErrSlotTaken
const pqUniqueViolation = "23505"

var bookingColumns = []string{
	"id",
	"owner_id",
	"service_kind",
	"lesson_type",
	"lesson_date",
	"start_time",
	"weekday",
	"duration_minutes",
	"status",
	"payment_status",
	"amount",
	"currency",
	"series_id",
	"series_sequence",
	"series_total",
	"payment_provider_ref",
	"payment_failure_reason",
	"refund_unresolved",
	"cancellation_deadline",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с занятиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория занятий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает одно занятие
// Если в контексте передана активная транзакция, использует её
// Конфликт частичного уникального индекса (конкурирующая запись на тот же слот)
// возвращается как ErrSlotTaken - транзакция выше откатывается целиком
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := insertBuilder(booking).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// CreateSeries создает все занятия серии одним multi-row insert
// Вызывается только внутри транзакции: либо вставляются все строки, либо ни одной
// ID присваиваются переданным занятиям в порядке вставки
func (r *Repository) CreateSeries(ctx context.Context, bookings []*domain.Booking) ([]*domain.Booking, error) {
	if len(bookings) == 0 {
		return bookings, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := insertBuilder(bookings[0])
	for _, b := range bookings[1:] {
		builder = builder.Values(insertValues(b)...)
	}

	query, args, err := builder.Suffix("RETURNING id, created_at, updated_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateSeries - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: CreateSeries - execute insert: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(bookings) {
			break
		}
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&bookings[i].ID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: CreateSeries - scan returned id: %v", ErrScanRow, err)
		}
		bookings[i].CreatedAt = createdAt.Time
		bookings[i].UpdatedAt = updatedAt.Time
		i++
	}

	if err := rows.Err(); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: CreateSeries - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// GetByID получает занятие по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByOwnerID получает список занятий пользователя
// Опционально фильтрует по статусу
func (r *Repository) GetByOwnerID(ctx context.Context, ownerID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("lesson_date DESC, start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOwnerID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOwnerID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetActiveBySlot получает активные (scheduled) занятия на конкретный слот
// Внутри транзакции блокирует строки через FOR UPDATE - это второй рубеж защиты
// от гонки между проверкой доступности и вставкой (первый - уникальный индекс)
func (r *Repository) GetActiveBySlot(ctx context.Context, lessonDate time.Time, startTime string) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{
			"lesson_date": lessonDate,
			"start_time":  startTime,
			"status":      domain.StatusScheduled,
		}).
		OrderBy("id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveBySlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveBySlot - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetActiveByDate получает все активные занятия на дату
// Используется обзором слотов дня: одна выборка вместо запроса на каждый слот
func (r *Repository) GetActiveByDate(ctx context.Context, lessonDate time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{
			"lesson_date": lessonDate,
			"status":      domain.StatusScheduled,
		}).
		OrderBy("start_time ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetSchedule получает занятия расписания с фильтрацией по периоду и статусу
// Используется админским представлением расписания
func (r *Repository) GetSchedule(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings")

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"lesson_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"lesson_date": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": domain.StatusScheduled})
	}

	selectBuilder = selectBuilder.OrderBy("lesson_date ASC, start_time ASC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetSchedule - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetSchedule - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ClaimDueForPayment атомарно забирает занятия, для которых наступил момент оплаты:
// pending -> processing одним условным UPDATE ... RETURNING
// Параллельный вызов свипа увидит строки уже не-pending и пропустит их,
// поэтому двойное списание невозможно независимо от частоты запуска
//
// Момент оплаты наступил, когда cancellation_deadline (= начало занятия
// минус период уведомления) уже прошёл, а само занятие ещё не началось
func (r *Repository) ClaimDueForPayment(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_status", domain.PaymentProcessing).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"payment_status": domain.PaymentPending,
			"status":         domain.StatusScheduled,
		}).
		Where(squirrel.LtOrEq{"cancellation_deadline": now}).
		Where(squirrel.Expr("(lesson_date + start_time) > ?", now)).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ClaimDueForPayment - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ClaimDueForPayment - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// MarkPaid переводит занятие processing -> paid и сохраняет ссылку на платеж
// Условие status = scheduled обязательно: занятие, отмененное между захватом
// и ответом провайдера, не должно стать paid - ноль строк сигнализирует
// вызывающей стороне, что списание надо вернуть
func (r *Repository) MarkPaid(ctx context.Context, id int64, providerRef string) error {
	return r.conditionalPaymentUpdate(ctx, "MarkPaid",
		map[string]interface{}{
			"payment_status":       domain.PaymentPaid,
			"payment_provider_ref": providerRef,
		},
		squirrel.Eq{
			"id":             id,
			"payment_status": domain.PaymentProcessing,
			"status":         domain.StatusScheduled,
		},
	)
}

// MarkPaymentFailed переводит занятие processing -> payment_failed
// Причина отказа сохраняется для ручного разбора; автоматических повторов нет
func (r *Repository) MarkPaymentFailed(ctx context.Context, id int64, reason string) error {
	return r.conditionalPaymentUpdate(ctx, "MarkPaymentFailed",
		map[string]interface{}{
			"payment_status":         domain.PaymentFailed,
			"payment_failure_reason": reason,
		},
		squirrel.Eq{"id": id, "payment_status": domain.PaymentProcessing},
	)
}

// ReleasePaymentClaim возвращает занятие processing -> pending
// Используется, когда исход платежа неизвестен (таймаут провайдера):
// следующий свип попробует снова, вместо ложной пометки об отказе
func (r *Repository) ReleasePaymentClaim(ctx context.Context, id int64) error {
	return r.conditionalPaymentUpdate(ctx, "ReleasePaymentClaim",
		map[string]interface{}{
			"payment_status": domain.PaymentPending,
		},
		squirrel.Eq{"id": id, "payment_status": domain.PaymentProcessing},
	)
}

// MarkChargeReversed переводит занятие processing -> refunded и сохраняет
// ссылку на платеж. Используется, когда занятие отменили во время списания
// и деньги вернули компенсирующим возвратом
func (r *Repository) MarkChargeReversed(ctx context.Context, id int64, providerRef string) error {
	return r.conditionalPaymentUpdate(ctx, "MarkChargeReversed",
		map[string]interface{}{
			"payment_status":       domain.PaymentRefunded,
			"payment_provider_ref": providerRef,
		},
		squirrel.Eq{"id": id, "payment_status": domain.PaymentProcessing},
	)
}

// FlagRefundUnresolved помечает занятие для ручного разбора возврата
// и сохраняет ссылку на платеж. Статус занятия не важен: флаг ставится
// в том числе на уже отмененную строку
func (r *Repository) FlagRefundUnresolved(ctx context.Context, id int64, providerRef string) error {
	return r.conditionalPaymentUpdate(ctx, "FlagRefundUnresolved",
		map[string]interface{}{
			"refund_unresolved":    true,
			"payment_provider_ref": providerRef,
		},
		squirrel.Eq{"id": id},
	)
}

// MarkRefunded переводит занятие paid -> refunded
func (r *Repository) MarkRefunded(ctx context.Context, id int64) error {
	return r.conditionalPaymentUpdate(ctx, "MarkRefunded",
		map[string]interface{}{
			"payment_status": domain.PaymentRefunded,
		},
		squirrel.Eq{"id": id, "payment_status": domain.PaymentPaid},
	)
}

// Cancel отменяет занятие с указанием причины
// Меняет только строки в статусе scheduled - повторная отмена не затрагивает строк
func (r *Repository) Cancel(ctx context.Context, id int64, reason string, refundUnresolved bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("refund_unresolved", refundUnresolved).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.StatusScheduled}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// conditionalPaymentUpdate выполняет условный переход статуса оплаты
// Ноль затронутых строк означает, что строка уже не в ожидаемом статусе
func (r *Repository) conditionalPaymentUpdate(ctx context.Context, op string, sets map[string]interface{}, where squirrel.Eq) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update("bookings").
		Set("updated_at", squirrel.Expr("NOW()"))
	for column, value := range sets {
		builder = builder.Set(column, value)
	}

	query, args, err := builder.Where(where).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrInvalidPaymentState
	}

	return nil
}

// Вспомогательные функции

func insertBuilder(b *domain.Booking) squirrel.InsertBuilder {
	return psqlbuilder.Insert("bookings").
		Columns(
			"owner_id",
			"service_kind",
			"lesson_type",
			"lesson_date",
			"start_time",
			"weekday",
			"duration_minutes",
			"status",
			"payment_status",
			"amount",
			"currency",
			"series_id",
			"series_sequence",
			"series_total",
			"cancellation_deadline",
		).
		Values(insertValues(b)...)
}

func insertValues(b *domain.Booking) []interface{} {
	return []interface{}{
		b.OwnerID,
		b.ServiceKind,
		b.LessonType,
		b.LessonDate,
		b.StartTime,
		int(b.Weekday),
		b.DurationMinutes,
		b.Status,
		b.PaymentStatus,
		b.Amount,
		b.Currency,
		b.SeriesID,
		b.SeriesSequence,
		b.SeriesTotal,
		b.CancellationDeadline,
	}
}

func columnList() string {
	list := bookingColumns[0]
	for _, c := range bookingColumns[1:] {
		list += ", " + c
	}
	return list
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		booking              domain.Booking
		weekday              int
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&booking.ID,
		&booking.OwnerID,
		&booking.ServiceKind,
		&booking.LessonType,
		&booking.LessonDate,
		&booking.StartTime,
		&weekday,
		&booking.DurationMinutes,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.Amount,
		&booking.Currency,
		&booking.SeriesID,
		&booking.SeriesSequence,
		&booking.SeriesTotal,
		&booking.PaymentProviderRef,
		&booking.PaymentFailureReason,
		&booking.RefundUnresolved,
		&booking.CancellationDeadline,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Weekday = time.Weekday(weekday)
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}
