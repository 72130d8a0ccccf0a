package admin_set_status

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/booking"
	timeslotRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/timeslot"
)

type txState struct {
	undo []func()
}

type txStateKey struct{}

func stateFromCtx(ctx context.Context) *txState {
	st, _ := ctx.Value(txStateKey{}).(*txState)
	return st
}

type fakeTxManager struct{}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	st := &txState{}
	err := fn(context.WithValue(ctx, txStateKey{}, st))
	if err != nil {
		for i := len(st.undo) - 1; i >= 0; i-- {
			st.undo[i]()
		}
	}
	return err
}

type fakeStore struct {
	mu        sync.Mutex
	timeslots map[int64]*domain.Timeslot
	bookings  map[int64]*domain.Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		timeslots: map[int64]*domain.Timeslot{},
		bookings:  map[int64]*domain.Booking{},
	}
}

func (s *fakeStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	prev := b.Status
	b.Status = status
	if st := stateFromCtx(ctx); st != nil {
		st.undo = append(st.undo, func() { b.Status = prev })
	}
	return nil
}

type slotStore struct {
	store *fakeStore
}

func (s *slotStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Timeslot, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	ts, ok := s.store.timeslots[id]
	if !ok {
		return nil, timeslotRepo.ErrTimeslotNotFound
	}
	cp := *ts
	return &cp, nil
}

func (s *slotStore) ApplyCapacityDelta(ctx context.Context, id int64, delta int) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	ts, ok := s.store.timeslots[id]
	if !ok {
		return timeslotRepo.ErrTimeslotNotFound
	}
	ts.AvailableCapacity += delta
	if st := stateFromCtx(ctx); st != nil {
		st.undo = append(st.undo, func() { ts.AvailableCapacity -= delta })
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestEnv(strict bool) (*UseCase, *fakeStore) {
	store := newFakeStore()
	uc := NewUseCase(store, &slotStore{store: store}, &fakeTxManager{}, nopLogger{}, strict)
	return uc, store
}

func seed(store *fakeStore, status domain.BookingStatus, guests, available, max int) {
	store.timeslots[30] = &domain.Timeslot{
		ID: 30, ResourceID: 20, Status: domain.TimeslotOpen,
		AvailableCapacity: available, MaxCapacity: max,
	}
	store.bookings[1] = &domain.Booking{
		ID: 1, UserID: 10, ResourceID: 20, TimeslotID: 30,
		Status: status, GuestCount: guests,
	}
}

func TestExecute_CancelCreditsCapacity(t *testing.T) {
	uc, store := newTestEnv(false)
	seed(store, domain.StatusConfirmed, 2, 0, 2)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStatus: domain.StatusCancelled})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	assert.Equal(t, 2, store.timeslots[30].AvailableCapacity)
}

// Переход между двумя не-cancelled статусами не трогает вместимость.
func TestExecute_NoShowKeepsDebit(t *testing.T) {
	uc, store := newTestEnv(false)
	seed(store, domain.StatusConfirmed, 2, 0, 2)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStatus: domain.StatusNoShow})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusNoShow), resp.Status)
	assert.Equal(t, 0, store.timeslots[30].AvailableCapacity)
}

// Реактивация из cancelled списывает guest_count без проверки остатка:
// вместимость может стать отрицательной.
func TestExecute_ReactivationUnconditionalDebit(t *testing.T) {
	uc, store := newTestEnv(false)
	seed(store, domain.StatusCancelled, 3, 1, 3)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStatus: domain.StatusConfirmed})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, -2, store.timeslots[30].AvailableCapacity)
}

// Отмена и обратная реактивация дают нулевой суммарный эффект.
func TestExecute_CancelThenReactivateNetZero(t *testing.T) {
	uc, store := newTestEnv(false)
	seed(store, domain.StatusConfirmed, 2, 0, 2)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStatus: domain.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 2, store.timeslots[30].AvailableCapacity)

	_, err = uc.Execute(context.Background(), &Request{BookingID: 1, NewStatus: domain.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, 0, store.timeslots[30].AvailableCapacity)
	assert.Equal(t, domain.StatusConfirmed, store.bookings[1].Status)
}

func TestExecute_StrictModeRejectsOverbookingReactivation(t *testing.T) {
	uc, store := newTestEnv(true)
	seed(store, domain.StatusCancelled, 3, 1, 3)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStatus: domain.StatusConfirmed})

	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.Equal(t, 1, store.timeslots[30].AvailableCapacity)
	assert.Equal(t, domain.StatusCancelled, store.bookings[1].Status)
}

func TestExecute_StrictModeAllowsFittingReactivation(t *testing.T) {
	uc, store := newTestEnv(true)
	seed(store, domain.StatusCancelled, 2, 2, 2)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStatus: domain.StatusConfirmed})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, 0, store.timeslots[30].AvailableCapacity)
}

func TestExecute_SameStatusIsNoOp(t *testing.T) {
	uc, store := newTestEnv(false)
	seed(store, domain.StatusConfirmed, 2, 1, 3)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStatus: domain.StatusConfirmed})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, 1, store.timeslots[30].AvailableCapacity)
}

func TestExecute_InvalidStatus(t *testing.T) {
	uc, store := newTestEnv(false)
	seed(store, domain.StatusConfirmed, 2, 1, 3)

	for _, status := range []domain.BookingStatus{"pending", "deleted", ""} {
		t.Run(string(status), func(t *testing.T) {
			_, err := uc.Execute(context.Background(), &Request{BookingID: 1, NewStatus: status})
			assert.ErrorIs(t, err, ErrInvalidStatus)
		})
	}
}

func TestExecute_BookingNotFound(t *testing.T) {
	uc, _ := newTestEnv(false)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 999, NewStatus: domain.StatusCancelled})

	assert.ErrorIs(t, err, ErrBookingNotFound)
}
