package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// fakeBookingRepo репозиторий-заглушка с фиксированными строками
type fakeBookingRepo struct {
	bySlot []*domain.Booking
	byDate []*domain.Booking
	err    error
}

func (f *fakeBookingRepo) GetActiveBySlot(_ context.Context, _ time.Time, _ string) ([]*domain.Booking, error) {
	return f.bySlot, f.err
}

func (f *fakeBookingRepo) GetActiveByDate(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
	return f.byDate, f.err
}

// fixedTime провайдер фиксированного времени
type fixedTime struct {
	now time.Time
}

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testRules() domain.BookingRules {
	return domain.BookingRules{
		NoticeHours:          24,
		GroupCapacity:        6,
		MaxSeriesOccurrences: 52,
	}
}

func newTestService(repo *fakeBookingRepo, now time.Time) *Service {
	svc := NewService(repo, testSchedule(), testRules(), nopLogger{})
	svc.timeProvider = &fixedTime{now: now}
	return svc
}

func TestService_Check(t *testing.T) {
	// Вторник 19 августа, запрос за четыре дня
	tuesday := time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	t.Run("free slot is bookable", func(t *testing.T) {
		svc := newTestService(&fakeBookingRepo{}, now)

		reason, err := svc.Check(context.Background(), tuesday, "14:00", domain.KindIndividual)

		require.NoError(t, err)
		assert.Equal(t, ReasonNone, reason)
	})

	t.Run("off-grid slot", func(t *testing.T) {
		svc := newTestService(&fakeBookingRepo{}, now)

		reason, err := svc.Check(context.Background(), tuesday, "14:30", domain.KindIndividual)

		require.NoError(t, err)
		assert.Equal(t, ReasonSlotNotOffered, reason)
	})

	t.Run("closed sunday", func(t *testing.T) {
		svc := newTestService(&fakeBookingRepo{}, now)
		sunday := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)

		reason, err := svc.Check(context.Background(), sunday, "14:00", domain.KindIndividual)

		require.NoError(t, err)
		assert.Equal(t, ReasonSlotNotOffered, reason)
	})

	t.Run("less than 24h before start", func(t *testing.T) {
		// Сейчас 10:00, занятие сегодня в 14:00 - осталось 4 часа
		sameDay := time.Date(2025, 8, 19, 10, 0, 0, 0, time.UTC)
		svc := newTestService(&fakeBookingRepo{}, sameDay)

		reason, err := svc.Check(context.Background(), tuesday, "14:00", domain.KindIndividual)

		require.NoError(t, err)
		assert.Equal(t, ReasonTooSoon, reason)
	})

	t.Run("exactly 24h before start is allowed", func(t *testing.T) {
		dayBefore := time.Date(2025, 8, 18, 14, 0, 0, 0, time.UTC)
		svc := newTestService(&fakeBookingRepo{}, dayBefore)

		reason, err := svc.Check(context.Background(), tuesday, "14:00", domain.KindIndividual)

		require.NoError(t, err)
		assert.Equal(t, ReasonNone, reason)
	})

	t.Run("active individual booking blocks the slot", func(t *testing.T) {
		repo := &fakeBookingRepo{bySlot: []*domain.Booking{{
			ServiceKind:   domain.KindIndividual,
			Status:        domain.StatusScheduled,
			PaymentStatus: domain.PaymentPending,
			LessonDate:    tuesday,
			StartTime:     "14:00",
		}}}
		svc := newTestService(repo, now)

		reason, err := svc.Check(context.Background(), tuesday, "14:00", domain.KindIndividual)

		require.NoError(t, err)
		assert.Equal(t, ReasonAlreadyBooked, reason)
	})

	t.Run("refunded scheduled individual does not block", func(t *testing.T) {
		// Деньги вернули - слот снова продается, хоть строка и scheduled
		repo := &fakeBookingRepo{bySlot: []*domain.Booking{{
			ServiceKind:   domain.KindIndividual,
			Status:        domain.StatusScheduled,
			PaymentStatus: domain.PaymentRefunded,
			LessonDate:    tuesday,
			StartTime:     "14:00",
		}}}
		svc := newTestService(repo, now)

		reason, err := svc.Check(context.Background(), tuesday, "14:00", domain.KindIndividual)

		require.NoError(t, err)
		assert.Equal(t, ReasonNone, reason)
	})

	t.Run("group slot accepts members until capacity", func(t *testing.T) {
		groupRows := make([]*domain.Booking, 5)
		for i := range groupRows {
			groupRows[i] = &domain.Booking{
				ServiceKind:   domain.KindGroup,
				Status:        domain.StatusScheduled,
				PaymentStatus: domain.PaymentPending,
				LessonDate:    tuesday,
				StartTime:     "14:00",
			}
		}
		svc := newTestService(&fakeBookingRepo{bySlot: groupRows}, now)

		reason, err := svc.Check(context.Background(), tuesday, "14:00", domain.KindGroup)

		require.NoError(t, err)
		assert.Equal(t, ReasonNone, reason)
	})

	t.Run("group slot full at capacity", func(t *testing.T) {
		groupRows := make([]*domain.Booking, 6)
		for i := range groupRows {
			groupRows[i] = &domain.Booking{
				ServiceKind:   domain.KindGroup,
				Status:        domain.StatusScheduled,
				PaymentStatus: domain.PaymentPending,
				LessonDate:    tuesday,
				StartTime:     "14:00",
			}
		}
		svc := newTestService(&fakeBookingRepo{bySlot: groupRows}, now)

		reason, err := svc.Check(context.Background(), tuesday, "14:00", domain.KindGroup)

		require.NoError(t, err)
		assert.Equal(t, ReasonCapacityFull, reason)
	})

	t.Run("individual request rejected when group occupies slot", func(t *testing.T) {
		repo := &fakeBookingRepo{bySlot: []*domain.Booking{{
			ServiceKind:   domain.KindGroup,
			Status:        domain.StatusScheduled,
			PaymentStatus: domain.PaymentPending,
			LessonDate:    tuesday,
			StartTime:     "14:00",
		}}}
		svc := newTestService(repo, now)

		reason, err := svc.Check(context.Background(), tuesday, "14:00", domain.KindIndividual)

		require.NoError(t, err)
		assert.Equal(t, ReasonAlreadyBooked, reason)
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		svc := newTestService(&fakeBookingRepo{err: errors.New("db down")}, now)

		_, err := svc.Check(context.Background(), tuesday, "14:00", domain.KindIndividual)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestService_DayOverview(t *testing.T) {
	tuesday := time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	t.Run("closed day is empty", func(t *testing.T) {
		svc := newTestService(&fakeBookingRepo{}, now)
		sunday := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)

		statuses, err := svc.DayOverview(context.Background(), sunday, domain.KindIndividual)

		require.NoError(t, err)
		assert.Empty(t, statuses)
	})

	t.Run("occupied slot reported, others bookable", func(t *testing.T) {
		repo := &fakeBookingRepo{byDate: []*domain.Booking{{
			ServiceKind:   domain.KindIndividual,
			Status:        domain.StatusScheduled,
			PaymentStatus: domain.PaymentPaid,
			LessonDate:    tuesday,
			StartTime:     "14:00",
		}}}
		svc := newTestService(repo, now)

		statuses, err := svc.DayOverview(context.Background(), tuesday, domain.KindIndividual)

		require.NoError(t, err)
		require.Len(t, statuses, 11)

		byTime := make(map[string]SlotStatus, len(statuses))
		for _, s := range statuses {
			byTime[s.StartTime.String()] = s
		}

		taken := byTime["14:00"]
		assert.False(t, taken.Bookable)
		assert.Equal(t, ReasonAlreadyBooked, taken.Reason)
		assert.Equal(t, 0, taken.AvailableSpots)

		free := byTime["10:00"]
		assert.True(t, free.Bookable)
		assert.Equal(t, ReasonNone, free.Reason)
		assert.Equal(t, 6, free.AvailableSpots)
	})

	t.Run("near slots flagged too soon", func(t *testing.T) {
		// Сейчас вторник 10:00: все слоты дня ближе 24 часов
		sameDay := time.Date(2025, 8, 19, 10, 0, 0, 0, time.UTC)
		svc := newTestService(&fakeBookingRepo{}, sameDay)

		statuses, err := svc.DayOverview(context.Background(), tuesday, domain.KindIndividual)

		require.NoError(t, err)
		require.Len(t, statuses, 11)
		for _, s := range statuses {
			assert.False(t, s.Bookable)
			assert.Equal(t, ReasonTooSoon, s.Reason)
		}
	})

	t.Run("group occupancy counts spots", func(t *testing.T) {
		rows := make([]*domain.Booking, 4)
		for i := range rows {
			rows[i] = &domain.Booking{
				ServiceKind:   domain.KindGroup,
				Status:        domain.StatusScheduled,
				PaymentStatus: domain.PaymentPending,
				LessonDate:    tuesday,
				StartTime:     "14:00",
			}
		}
		svc := newTestService(&fakeBookingRepo{byDate: rows}, now)

		statuses, err := svc.DayOverview(context.Background(), tuesday, domain.KindGroup)

		require.NoError(t, err)
		for _, s := range statuses {
			if s.StartTime == "14:00" {
				assert.Equal(t, 2, s.AvailableSpots)
				assert.True(t, s.Bookable)
			}
		}
	})

	t.Run("refunded individual does not reduce group spots", func(t *testing.T) {
		// Возвращенная scheduled-строка слот не занимает и из счетчика
		// мест исключается наравне с правилом занятости
		rows := []*domain.Booking{
			{
				ServiceKind:   domain.KindIndividual,
				Status:        domain.StatusScheduled,
				PaymentStatus: domain.PaymentRefunded,
				LessonDate:    tuesday,
				StartTime:     "14:00",
			},
			{
				ServiceKind:   domain.KindGroup,
				Status:        domain.StatusScheduled,
				PaymentStatus: domain.PaymentPending,
				LessonDate:    tuesday,
				StartTime:     "14:00",
			},
		}
		svc := newTestService(&fakeBookingRepo{byDate: rows}, now)

		statuses, err := svc.DayOverview(context.Background(), tuesday, domain.KindGroup)

		require.NoError(t, err)
		for _, s := range statuses {
			if s.StartTime == "14:00" {
				assert.Equal(t, 5, s.AvailableSpots)
				assert.True(t, s.Bookable)
			}
		}
	})
}
