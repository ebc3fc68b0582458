package payment_sweep

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-LessonService/internal/integrations/payprovider"
)

type fakeRepo struct {
	due      []*domain.Booking
	claimErr error

	// ID занятий, отмененных "конкурентно" между захватом и MarkPaid
	cancelledMidCharge map[int64]bool

	paid       []int64
	failed     []int64
	released   []int64
	reversed   []int64
	unresolved []int64
}

func (f *fakeRepo) ClaimDueForPayment(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
	return f.due, f.claimErr
}

func (f *fakeRepo) MarkPaid(_ context.Context, id int64, _ string) error {
	if f.cancelledMidCharge[id] {
		return bookingRepo.ErrInvalidPaymentState
	}
	f.paid = append(f.paid, id)
	return nil
}

func (f *fakeRepo) MarkPaymentFailed(_ context.Context, id int64, _ string) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) ReleasePaymentClaim(_ context.Context, id int64) error {
	f.released = append(f.released, id)
	return nil
}

func (f *fakeRepo) MarkChargeReversed(_ context.Context, id int64, _ string) error {
	f.reversed = append(f.reversed, id)
	return nil
}

func (f *fakeRepo) FlagRefundUnresolved(_ context.Context, id int64, _ string) error {
	f.unresolved = append(f.unresolved, id)
	return nil
}

// fakePayClient исходы по ID плательщика: nil - успех
type fakePayClient struct {
	outcomes  map[string]error
	refundErr error
	charges   []string
	refunds   []string
}

func (f *fakePayClient) Charge(_ context.Context, _ float64, _ string, payerRef string) (string, error) {
	f.charges = append(f.charges, payerRef)
	if err, ok := f.outcomes[payerRef]; ok {
		return "", err
	}
	return "prov-ref-" + payerRef, nil
}

func (f *fakePayClient) Refund(_ context.Context, providerRef string) (string, error) {
	f.refunds = append(f.refunds, providerRef)
	if f.refundErr != nil {
		return "", f.refundErr
	}
	return "refund-" + providerRef, nil
}

type fakeLocker struct {
	acquired bool
	err      error
	released bool
}

func (f *fakeLocker) Acquire(_ context.Context) (bool, error) { return f.acquired, f.err }
func (f *fakeLocker) Release(_ context.Context) error {
	f.released = true
	return nil
}

type fakeMetrics struct {
	payments []string
	claimed  int
}

func (f *fakeMetrics) IncPayment(result string) { f.payments = append(f.payments, result) }
func (f *fakeMetrics) AddSweepClaimed(n int)    { f.claimed += n }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func dueBooking(id, ownerID int64) *domain.Booking {
	return &domain.Booking{
		ID:            id,
		OwnerID:       ownerID,
		ServiceKind:   domain.KindIndividual,
		Status:        domain.StatusScheduled,
		PaymentStatus: domain.PaymentProcessing,
		Amount:        1500,
		Currency:      "RUB",
	}
}

func TestUseCase_Execute_AllPaid(t *testing.T) {
	repo := &fakeRepo{due: []*domain.Booking{dueBooking(1, 10), dueBooking(2, 20)}}
	pay := &fakePayClient{}
	m := &fakeMetrics{}
	uc := NewUseCase(repo, pay, nil, m, nopLogger{})

	report, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &Report{Claimed: 2, Paid: 2}, report)
	assert.Equal(t, []int64{1, 2}, repo.paid)
	assert.Equal(t, []string{"owner:10", "owner:20"}, pay.charges)
	assert.Equal(t, 2, m.claimed)
	assert.Equal(t, []string{"succeeded", "succeeded"}, m.payments)
}

func TestUseCase_Execute_DeclinedMarksFailed(t *testing.T) {
	repo := &fakeRepo{due: []*domain.Booking{dueBooking(1, 10), dueBooking(2, 20)}}
	pay := &fakePayClient{outcomes: map[string]error{
		"owner:20": fmt.Errorf("%w: insufficient funds", payprovider.ErrChargeDeclined),
	}}
	m := &fakeMetrics{}
	uc := NewUseCase(repo, pay, nil, m, nopLogger{})

	report, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &Report{Claimed: 2, Paid: 1, Failed: 1}, report)
	assert.Equal(t, []int64{1}, repo.paid)
	assert.Equal(t, []int64{2}, repo.failed)
	assert.Empty(t, repo.released)
}

func TestUseCase_Execute_IndeterminateReleasesClaim(t *testing.T) {
	// Таймаут провайдера: занятие возвращается в pending для повтора,
	// без пометки payment_failed
	repo := &fakeRepo{due: []*domain.Booking{dueBooking(1, 10)}}
	pay := &fakePayClient{outcomes: map[string]error{
		"owner:10": fmt.Errorf("%w: request timed out", payprovider.ErrIndeterminate),
	}}
	m := &fakeMetrics{}
	uc := NewUseCase(repo, pay, nil, m, nopLogger{})

	report, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &Report{Claimed: 1, Released: 1}, report)
	assert.Equal(t, []int64{1}, repo.released)
	assert.Empty(t, repo.paid)
	assert.Empty(t, repo.failed)
	assert.Equal(t, []string{"indeterminate"}, m.payments)
}

func TestUseCase_Execute_CancelledDuringChargeIsReversed(t *testing.T) {
	// Занятие отменили между захватом и ответом провайдера: оплаченным
	// оно стать не должно - списание возвращается компенсирующим возвратом
	repo := &fakeRepo{
		due:                []*domain.Booking{dueBooking(1, 10), dueBooking(2, 20)},
		cancelledMidCharge: map[int64]bool{2: true},
	}
	pay := &fakePayClient{}
	m := &fakeMetrics{}
	uc := NewUseCase(repo, pay, nil, m, nopLogger{})

	report, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &Report{Claimed: 2, Paid: 1, Reversed: 1}, report)
	assert.Equal(t, []int64{1}, repo.paid)
	assert.Equal(t, []int64{2}, repo.reversed, "cancelled booking must not end up paid")
	assert.Equal(t, []string{"prov-ref-owner:20"}, pay.refunds, "the charge must be refunded")
	assert.Empty(t, repo.unresolved)
	assert.Equal(t, []string{"succeeded", "reversed"}, m.payments)
}

func TestUseCase_Execute_CancelledDuringChargeRefundFails(t *testing.T) {
	// Компенсирующий возврат не прошел: строка помечается refund_unresolved
	// для ручного разбора, paid не выставляется
	repo := &fakeRepo{
		due:                []*domain.Booking{dueBooking(1, 10)},
		cancelledMidCharge: map[int64]bool{1: true},
	}
	pay := &fakePayClient{refundErr: fmt.Errorf("%w: request timed out", payprovider.ErrIndeterminate)}
	m := &fakeMetrics{}
	uc := NewUseCase(repo, pay, nil, m, nopLogger{})

	report, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &Report{Claimed: 1}, report)
	assert.Empty(t, repo.paid)
	assert.Empty(t, repo.reversed)
	assert.Equal(t, []int64{1}, repo.unresolved, "failed reversal goes to manual follow-up")
	assert.Equal(t, []string{"unresolved"}, m.payments)
}

func TestUseCase_Execute_EmptySweep(t *testing.T) {
	pay := &fakePayClient{}
	uc := NewUseCase(&fakeRepo{}, pay, nil, &fakeMetrics{}, nopLogger{})

	report, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &Report{}, report)
	assert.Empty(t, pay.charges, "no charges without claimed bookings")
}

func TestUseCase_Execute_ClaimError(t *testing.T) {
	repo := &fakeRepo{claimErr: errors.New("db down")}
	uc := NewUseCase(repo, &fakePayClient{}, nil, &fakeMetrics{}, nopLogger{})

	_, err := uc.Execute(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestUseCase_Execute_LockHeld(t *testing.T) {
	repo := &fakeRepo{due: []*domain.Booking{dueBooking(1, 10)}}
	pay := &fakePayClient{}
	locker := &fakeLocker{acquired: false}
	uc := NewUseCase(repo, pay, locker, &fakeMetrics{}, nopLogger{})

	_, err := uc.Execute(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLockHeld)
	assert.Empty(t, pay.charges)
	assert.False(t, locker.released, "lock we did not take must not be released")
}

func TestUseCase_Execute_LockAcquiredAndReleased(t *testing.T) {
	locker := &fakeLocker{acquired: true}
	uc := NewUseCase(&fakeRepo{}, &fakePayClient{}, locker, &fakeMetrics{}, nopLogger{})

	_, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.True(t, locker.released)
}
