package create_series

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
	"github.com/m04kA/SMC-LessonService/pkg/types"
)

type fakeRepo struct {
	created   []*domain.Booking
	createErr error
}

func (f *fakeRepo) CreateSeries(_ context.Context, bookings []*domain.Booking) ([]*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := make([]*domain.Booking, 0, len(bookings))
	for i, b := range bookings {
		created := *b
		created.ID = int64(100 + i)
		out = append(out, &created)
	}
	f.created = out
	return out, nil
}

// fakeChecker отказывает на датах из refuse, остальные считает свободными
type fakeChecker struct {
	refuse  map[string]availability.Reason
	checked []time.Time
}

func (f *fakeChecker) Check(_ context.Context, date time.Time, _ types.TimeString, _ domain.ServiceKind) (availability.Reason, error) {
	f.checked = append(f.checked, date)
	if reason, ok := f.refuse[date.Format(domain.DateFormat)]; ok {
		return reason, nil
	}
	return availability.ReasonNone, nil
}

func (f *fakeChecker) Schedule() domain.WeeklySchedule {
	return domain.WeeklySchedule{
		OpenWeekdays:        map[time.Weekday]bool{time.Monday: true},
		DayStart:            "09:00",
		DayEnd:              "20:00",
		SlotDurationMinutes: 60,
	}
}

func (f *fakeChecker) Rules() domain.BookingRules {
	return domain.BookingRules{NoticeHours: 24, GroupCapacity: 6, MaxSeriesOccurrences: 52}
}

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeMetrics struct {
	created []string
}

func (f *fakeMetrics) IncBookingCreated(lessonType string) {
	f.created = append(f.created, lessonType)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Понедельник 20 января 2025 - якорь из шести занятий
func validRequest() *Request {
	return &Request{
		OwnerID:         7,
		ServiceKind:     domain.KindIndividual,
		AnchorDate:      time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		Occurrences:     6,
		AmountPerLesson: 1200,
		Currency:        "RUB",
	}
}

func TestUseCase_Execute_Success(t *testing.T) {
	repo := &fakeRepo{}
	checker := &fakeChecker{}
	m := &fakeMetrics{}
	uc := NewUseCase(repo, checker, &fakeTxManager{}, m, nopLogger{})

	resp, err := uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, resp.SeriesID)
	assert.Equal(t, 6, resp.Total)
	require.Len(t, resp.Occurrences, 6)

	// Шесть понедельников подряд начиная с якоря
	wantDates := []string{
		"2025-01-20", "2025-01-27", "2025-02-03",
		"2025-02-10", "2025-02-17", "2025-02-24",
	}
	for i, occ := range resp.Occurrences {
		assert.Equal(t, wantDates[i], occ.LessonDate.Format(domain.DateFormat))
		assert.Equal(t, i+1, occ.Sequence)
		assert.Equal(t, "pending", occ.PaymentStatus)
	}

	// Каждая строка серии несет общий SeriesID и свой дедлайн отмены
	require.Len(t, repo.created, 6)
	for i, b := range repo.created {
		require.NotNil(t, b.SeriesID)
		assert.Equal(t, resp.SeriesID, *b.SeriesID)
		require.NotNil(t, b.SeriesTotal)
		assert.Equal(t, 6, *b.SeriesTotal)
		assert.Equal(t, domain.TypeRecurring, b.LessonType)
		assert.Equal(t, time.Monday, b.Weekday)

		wantDeadline := b.StartTime.OnDate(b.LessonDate).Add(-24 * time.Hour)
		assert.Equal(t, wantDeadline, b.CancellationDeadline, "occurrence %d", i+1)
	}

	assert.Len(t, m.created, 6)
}

func TestUseCase_Execute_AllOrNothing(t *testing.T) {
	// Третий понедельник занят - серия не создается вовсе
	repo := &fakeRepo{}
	checker := &fakeChecker{refuse: map[string]availability.Reason{
		"2025-02-03": availability.ReasonAlreadyBooked,
	}}
	uc := NewUseCase(repo, checker, &fakeTxManager{}, &fakeMetrics{}, nopLogger{})

	_, err := uc.Execute(context.Background(), validRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSeriesNotAvailable)

	var occErr *OccurrenceUnavailableError
	require.ErrorAs(t, err, &occErr)
	assert.Equal(t, 3, occErr.Sequence)
	assert.Equal(t, "2025-02-03", occErr.Date.Format(domain.DateFormat))
	assert.Equal(t, availability.ReasonAlreadyBooked, occErr.Reason)

	assert.Nil(t, repo.created, "no occurrence may be inserted when one is unavailable")
}

func TestUseCase_Execute_ConcurrentConflict(t *testing.T) {
	repo := &fakeRepo{createErr: bookingRepo.ErrSlotTaken}
	uc := NewUseCase(repo, &fakeChecker{}, &fakeTxManager{}, &fakeMetrics{}, nopLogger{})

	_, err := uc.Execute(context.Background(), validRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestUseCase_Execute_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "single occurrence is not a series", mutate: func(r *Request) { r.Occurrences = 1 }},
		{name: "too many occurrences", mutate: func(r *Request) { r.Occurrences = 53 }},
		{name: "zero owner", mutate: func(r *Request) { r.OwnerID = 0 }},
		{name: "unknown kind", mutate: func(r *Request) { r.ServiceKind = "chess" }},
		{name: "zero anchor", mutate: func(r *Request) { r.AnchorDate = time.Time{} }},
		{name: "bad time", mutate: func(r *Request) { r.StartTime = "10am" }},
		{name: "zero amount", mutate: func(r *Request) { r.AmountPerLesson = 0 }},
		{name: "bad currency", mutate: func(r *Request) { r.Currency = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &fakeTxManager{}
			uc := NewUseCase(&fakeRepo{}, &fakeChecker{}, tx, &fakeMetrics{}, nopLogger{})

			req := validRequest()
			tt.mutate(req)

			_, err := uc.Execute(context.Background(), req)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, tx.calls)
		})
	}
}

func TestExpandDates(t *testing.T) {
	anchor := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	dates := expandDates(anchor, 3)

	require.Len(t, dates, 3)
	assert.Equal(t, anchor, dates[0])
	assert.Equal(t, anchor.AddDate(0, 0, 7), dates[1])
	assert.Equal(t, anchor.AddDate(0, 0, 14), dates[2])
	for _, d := range dates {
		assert.Equal(t, time.Monday, d.Weekday())
	}
}
