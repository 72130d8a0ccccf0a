package sideeffects

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

type fakeRepo struct {
	payments      []*domain.Payment
	notifications []*domain.Notification
	failPayments  bool
}

func (f *fakeRepo) CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	if f.failPayments {
		return nil, errors.New("db is down")
	}
	f.payments = append(f.payments, p)
	return p, nil
}

func (f *fakeRepo) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	f.notifications = append(f.notifications, n)
	return n, nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func TestEmitBookingConfirmed(t *testing.T) {
	repo := &fakeRepo{}
	e := NewEmitter(repo, nopLogger{})

	e.EmitBookingConfirmed(context.Background(), &domain.Booking{
		ID: 7, UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 2,
	})

	require.Len(t, repo.payments, 1)
	assert.Equal(t, int64(7), repo.payments[0].BookingID)
	assert.Equal(t, domain.PaymentPending, repo.payments[0].Status)

	require.Len(t, repo.notifications, 1)
	n := repo.notifications[0]
	assert.Equal(t, "booking_confirmation", n.Type)
	assert.Equal(t, domain.NotificationQueued, n.Status)
	assert.Equal(t, int64(10), n.UserID)
}

// Отказ платежной таблицы не мешает постановке уведомления в очередь.
func TestEmitBookingConfirmed_PaymentFailureIsSwallowed(t *testing.T) {
	repo := &fakeRepo{failPayments: true}
	e := NewEmitter(repo, nopLogger{})

	e.EmitBookingConfirmed(context.Background(), &domain.Booking{ID: 7, UserID: 10})

	assert.Empty(t, repo.payments)
	assert.Len(t, repo.notifications, 1)
}

func TestEmitBookingCancelled(t *testing.T) {
	repo := &fakeRepo{}
	e := NewEmitter(repo, nopLogger{})

	e.EmitBookingCancelled(context.Background(), &domain.Booking{ID: 7, UserID: 10})

	require.Len(t, repo.notifications, 1)
	assert.Equal(t, "booking_cancelled", repo.notifications[0].Type)
}
