package cancel_booking

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
	locked []*sync.Mutex
	undo   []func()
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
	for i := len(st.locked) - 1; i >= 0; i-- {
		st.locked[i].Unlock()
	}
	return err
}

type fakeStore struct {
	mu           sync.Mutex
	timeslots    map[int64]*domain.Timeslot
	slotLocks    map[int64]*sync.Mutex
	bookings     map[int64]*domain.Booking
	bookingLocks map[int64]*sync.Mutex
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		timeslots:    map[int64]*domain.Timeslot{},
		slotLocks:    map[int64]*sync.Mutex{},
		bookings:     map[int64]*domain.Booking{},
		bookingLocks: map[int64]*sync.Mutex{},
	}
}

func (s *fakeStore) addTimeslot(ts domain.Timeslot) {
	s.timeslots[ts.ID] = &ts
	s.slotLocks[ts.ID] = &sync.Mutex{}
}

func (s *fakeStore) addBooking(b domain.Booking) {
	s.bookings[b.ID] = &b
	s.bookingLocks[b.ID] = &sync.Mutex{}
}

func (s *fakeStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	s.mu.Lock()
	lock, ok := s.bookingLocks[id]
	s.mu.Unlock()
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}

	lock.Lock()
	if st := stateFromCtx(ctx); st != nil {
		st.locked = append(st.locked, lock)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.bookings[id]
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
		st.undo = append(st.undo, func() {
			s.mu.Lock()
			b.Status = prev
			s.mu.Unlock()
		})
	}
	return nil
}

type slotStore struct {
	store *fakeStore
}

func (s *slotStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Timeslot, error) {
	s.store.mu.Lock()
	lock, ok := s.store.slotLocks[id]
	s.store.mu.Unlock()
	if !ok {
		return nil, timeslotRepo.ErrTimeslotNotFound
	}

	lock.Lock()
	if st := stateFromCtx(ctx); st != nil {
		st.locked = append(st.locked, lock)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	cp := *s.store.timeslots[id]
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
		st.undo = append(st.undo, func() {
			s.store.mu.Lock()
			ts.AvailableCapacity -= delta
			s.store.mu.Unlock()
		})
	}
	return nil
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []*domain.Booking
}

func (e *fakeEmitter) EmitBookingCancelled(ctx context.Context, b *domain.Booking) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, b)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestEnv() (*UseCase, *fakeStore, *fakeEmitter) {
	store := newFakeStore()
	emitter := &fakeEmitter{}
	uc := NewUseCase(store, &slotStore{store: store}, emitter, &fakeTxManager{}, nopLogger{})
	return uc, store, emitter
}

// Отмена confirmed-бронирования на 3 гостей при available=0 возвращает
// слоту все 3 единицы вместимости.
func TestExecute_CancelReleasesCapacity(t *testing.T) {
	uc, store, _ := newTestEnv()
	store.addTimeslot(domain.Timeslot{
		ID: 30, ResourceID: 20, Status: domain.TimeslotOpen,
		AvailableCapacity: 0, MaxCapacity: 3,
	})
	store.addBooking(domain.Booking{
		ID: 1, UserID: 10, ResourceID: 20, TimeslotID: 30,
		Status: domain.StatusConfirmed, GuestCount: 3,
	})

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	assert.Equal(t, 3, store.timeslots[30].AvailableCapacity)
	assert.Equal(t, domain.StatusCancelled, store.bookings[1].Status)
}

// Повторная отмена успешна и не дает ни двойного кредита вместимости,
// ни повторного уведомления.
func TestExecute_IdempotentCancel(t *testing.T) {
	uc, store, emitter := newTestEnv()
	store.addTimeslot(domain.Timeslot{
		ID: 30, ResourceID: 20, Status: domain.TimeslotOpen,
		AvailableCapacity: 0, MaxCapacity: 2,
	})
	store.addBooking(domain.Booking{
		ID: 1, UserID: 10, ResourceID: 20, TimeslotID: 30,
		Status: domain.StatusConfirmed, GuestCount: 2,
	})

	first, err := uc.Execute(context.Background(), &Request{BookingID: 1})
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), &Request{BookingID: 1})
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, 2, store.timeslots[30].AvailableCapacity)
	assert.Len(t, emitter.events, 1)
}

// Конкурентные отмены одного бронирования: кредит выдается ровно один раз.
func TestExecute_ConcurrentCancelsSingleCredit(t *testing.T) {
	uc, store, _ := newTestEnv()
	store.addTimeslot(domain.Timeslot{
		ID: 30, ResourceID: 20, Status: domain.TimeslotOpen,
		AvailableCapacity: 0, MaxCapacity: 4,
	})
	store.addBooking(domain.Booking{
		ID: 1, UserID: 10, ResourceID: 20, TimeslotID: 30,
		Status: domain.StatusConfirmed, GuestCount: 4,
	})

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), &Request{BookingID: 1})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 4, store.timeslots[30].AvailableCapacity)
}

func TestExecute_BookingNotFound(t *testing.T) {
	uc, _, _ := newTestEnv()

	_, err := uc.Execute(context.Background(), &Request{BookingID: 999})

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_InvalidID(t *testing.T) {
	uc, _, _ := newTestEnv()

	_, err := uc.Execute(context.Background(), &Request{BookingID: 0})

	assert.ErrorIs(t, err, ErrInvalidInput)
}
