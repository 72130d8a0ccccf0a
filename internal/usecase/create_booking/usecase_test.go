package create_booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/catalog"
	timeslotRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/timeslot"
	userRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/user"
)

// txState имитирует открытую транзакцию: журнал отката и список
// удерживаемых блокировок строк. Снимается в конце fakeTxManager.Do.
type txState struct {
	locked []*sync.Mutex
	undo   []func()
}

type txStateKey struct{}

func stateFromCtx(ctx context.Context) *txState {
	st, _ := ctx.Value(txStateKey{}).(*txState)
	return st
}

type fakeTxManager struct {
	store *fakeStore
}

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

// fakeStore реализует все репозитории usecase поверх карт в памяти.
// GetByIDForUpdate захватывает мьютекс слота до конца "транзакции",
// воспроизводя сериализацию конкурентных запросов на одной строке.
type fakeStore struct {
	mu        sync.Mutex
	timeslots map[int64]*domain.Timeslot
	slotLocks map[int64]*sync.Mutex
	bookings  map[int64]*domain.Booking
	users     map[int64]*domain.User
	resources map[int64]*domain.Resource
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		timeslots: map[int64]*domain.Timeslot{},
		slotLocks: map[int64]*sync.Mutex{},
		bookings:  map[int64]*domain.Booking{},
		users:     map[int64]*domain.User{},
		resources: map[int64]*domain.Resource{},
		nextID:    1,
	}
}

func (s *fakeStore) addTimeslot(ts domain.Timeslot) {
	s.timeslots[ts.ID] = &ts
	s.slotLocks[ts.ID] = &sync.Mutex{}
}

func (s *fakeStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Timeslot, error) {
	s.mu.Lock()
	lock, ok := s.slotLocks[id]
	s.mu.Unlock()
	if !ok {
		return nil, timeslotRepo.ErrTimeslotNotFound
	}

	lock.Lock()
	if st := stateFromCtx(ctx); st != nil {
		st.locked = append(st.locked, lock)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.timeslots[id]
	return &cp, nil
}

func (s *fakeStore) ApplyCapacityDelta(ctx context.Context, id int64, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.timeslots[id]
	if !ok {
		return timeslotRepo.ErrTimeslotNotFound
	}
	ts.AvailableCapacity += delta
	if st := stateFromCtx(ctx); st != nil {
		st.undo = append(st.undo, func() {
			s.mu.Lock()
			ts.AvailableCapacity -= delta
			s.mu.Unlock()
		})
	}
	return nil
}

func (s *fakeStore) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.bookings {
		if existing.TimeslotID == b.TimeslotID && existing.IsActive() {
			return nil, bookingRepo.ErrActiveBookingExists
		}
	}
	cp := *b
	cp.ID = s.nextID
	s.nextID++
	s.bookings[cp.ID] = &cp
	if st := stateFromCtx(ctx); st != nil {
		id := cp.ID
		st.undo = append(st.undo, func() {
			s.mu.Lock()
			delete(s.bookings, id)
			s.mu.Unlock()
		})
	}
	out := cp
	return &out, nil
}

func (s *fakeStore) HasActiveOnTimeslot(ctx context.Context, timeslotID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.TimeslotID == timeslotID && b.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) GetResource(ctx context.Context, id int64) (*domain.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resources[id]
	if !ok {
		return nil, catalogRepo.ErrResourceNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, userRepo.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []*domain.Booking
}

func (e *fakeEmitter) EmitBookingConfirmed(ctx context.Context, b *domain.Booking) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, b)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeMetrics struct {
	mu        sync.Mutex
	created   int
	conflicts int
}

func (m *fakeMetrics) IncBookingsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *fakeMetrics) IncCapacityConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

func newTestEnv() (*UseCase, *fakeStore, *fakeEmitter) {
	uc, store, emitter, _ := newTestEnvWithMetrics()
	return uc, store, emitter
}

func newTestEnvWithMetrics() (*UseCase, *fakeStore, *fakeEmitter, *fakeMetrics) {
	store := newFakeStore()
	emitter := &fakeEmitter{}
	counters := &fakeMetrics{}
	uc := NewUseCase(store, store, store, store, emitter, &fakeTxManager{store: store}, counters, nopLogger{})
	return uc, store, emitter, counters
}

func seedBookable(store *fakeStore, capacity int) {
	store.users[10] = &domain.User{ID: 10, Email: "ivan@example.com", Role: domain.RoleCustomer}
	store.resources[20] = &domain.Resource{ID: 20, BranchID: 1, Name: "Room A", Capacity: capacity, Active: true}
	store.addTimeslot(domain.Timeslot{
		ID:                30,
		ResourceID:        20,
		Status:            domain.TimeslotOpen,
		AvailableCapacity: capacity,
		MaxCapacity:       capacity,
	})
}

func TestExecute_Success(t *testing.T) {
	uc, store, emitter := newTestEnv()
	seedBookable(store, 4)

	resp, err := uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, 3, resp.GuestCount)
	assert.Equal(t, 1, store.timeslots[30].AvailableCapacity)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, resp.ID, emitter.events[0].ID)
}

func TestExecute_UnknownUser(t *testing.T) {
	uc, store, _ := newTestEnv()
	seedBookable(store, 2)

	_, err := uc.Execute(context.Background(), &Request{
		UserID: 999, ResourceID: 20, TimeslotID: 30, GuestCount: 1,
	})

	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestExecute_ResourceNotFound(t *testing.T) {
	uc, store, _ := newTestEnv()
	seedBookable(store, 2)

	_, err := uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 999, TimeslotID: 30, GuestCount: 1,
	})

	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestExecute_TimeslotNotFound(t *testing.T) {
	uc, store, _ := newTestEnv()
	seedBookable(store, 2)

	_, err := uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 20, TimeslotID: 999, GuestCount: 1,
	})

	assert.ErrorIs(t, err, ErrTimeslotNotFound)
}

func TestExecute_TimeslotBelongsToOtherResource(t *testing.T) {
	uc, store, _ := newTestEnv()
	seedBookable(store, 2)
	store.resources[21] = &domain.Resource{ID: 21, BranchID: 1, Name: "Room B", Capacity: 2, Active: true}

	_, err := uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 21, TimeslotID: 30, GuestCount: 1,
	})

	assert.ErrorIs(t, err, ErrTimeslotMismatch)
}

func TestExecute_SlotNotOpen(t *testing.T) {
	for _, status := range []domain.TimeslotStatus{domain.TimeslotClosed, domain.TimeslotBlocked} {
		t.Run(string(status), func(t *testing.T) {
			uc, store, _ := newTestEnv()
			seedBookable(store, 2)
			store.timeslots[30].Status = status

			_, err := uc.Execute(context.Background(), &Request{
				UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 1,
			})

			assert.ErrorIs(t, err, ErrSlotNotOpen)
		})
	}
}

func TestExecute_InsufficientCapacity(t *testing.T) {
	uc, store, _ := newTestEnv()
	seedBookable(store, 2)

	_, err := uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 3,
	})

	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	// Отказ до списания: вместимость не тронута
	assert.Equal(t, 2, store.timeslots[30].AvailableCapacity)
}

func TestExecute_SlotAlreadyTaken(t *testing.T) {
	uc, store, _ := newTestEnv()
	seedBookable(store, 5)
	store.bookings[1] = &domain.Booking{
		ID: 1, UserID: 11, ResourceID: 20, TimeslotID: 30,
		Status: domain.StatusConfirmed, GuestCount: 1,
	}

	_, err := uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 1,
	})

	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Equal(t, 5, store.timeslots[30].AvailableCapacity)
}

func TestExecute_CancelledBookingDoesNotBlockSlot(t *testing.T) {
	uc, store, _ := newTestEnv()
	seedBookable(store, 2)
	store.bookings[1] = &domain.Booking{
		ID: 1, UserID: 11, ResourceID: 20, TimeslotID: 30,
		Status: domain.StatusCancelled, GuestCount: 1,
	}

	_, err := uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 1,
	})

	assert.NoError(t, err)
}

func TestExecute_Validation(t *testing.T) {
	uc, store, _ := newTestEnv()
	seedBookable(store, 2)

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{"zero user", &Request{UserID: 0, ResourceID: 20, TimeslotID: 30, GuestCount: 1}, ErrUnauthenticated},
		{"zero resource", &Request{UserID: 10, ResourceID: 0, TimeslotID: 30, GuestCount: 1}, ErrInvalidInput},
		{"zero timeslot", &Request{UserID: 10, ResourceID: 20, TimeslotID: 0, GuestCount: 1}, ErrInvalidInput},
		{"zero guests", &Request{UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 0}, ErrInvalidInput},
		{"negative guests", &Request{UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: -1}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExecute_FailedTransactionEmitsNothing(t *testing.T) {
	uc, store, emitter := newTestEnv()
	seedBookable(store, 2)

	_, err := uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 5,
	})

	require.Error(t, err)
	assert.Empty(t, emitter.events)
}

// Два конкурентных запроса на один слот с guest_count=1 при вместимости 1:
// побеждает ровно один, вместимость доходит до нуля, overselling исключен.
func TestExecute_ConcurrentRequestsOneWinner(t *testing.T) {
	uc, store, emitter := newTestEnv()
	seedBookable(store, 1)
	store.users[11] = &domain.User{ID: 11, Email: "petr@example.com", Role: domain.RoleCustomer}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []int64{10, 11} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), &Request{
				UserID: userID, ResourceID: 20, TimeslotID: 30, GuestCount: 1,
			})
		}(i, userID)
	}
	wg.Wait()

	var okCount, failCount int
	for _, err := range errs {
		if err == nil {
			okCount++
		} else {
			failCount++
			// Проигравший видит либо нехватку вместимости, либо занятый слот
			assert.True(t, errors.Is(err, ErrInsufficientCapacity) || errors.Is(err, ErrSlotTaken),
				"unexpected loser error: %v", err)
		}
	}

	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, failCount)
	assert.Equal(t, 0, store.timeslots[30].AvailableCapacity)
	assert.Len(t, emitter.events, 1)

	var active int
	for _, b := range store.bookings {
		if b.IsActive() {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

// Инвариант сохранения: available_capacity == max_capacity - сумма гостей
// активных бронирований, при любом числе конкурентных попыток.
func TestExecute_CapacityConservationUnderLoad(t *testing.T) {
	uc, store, _ := newTestEnv()

	const maxCapacity = 10
	store.resources[20] = &domain.Resource{ID: 20, BranchID: 1, Name: "Hall", Capacity: maxCapacity, Active: true}
	for slotID := int64(100); slotID < 105; slotID++ {
		store.addTimeslot(domain.Timeslot{
			ID:                slotID,
			ResourceID:        20,
			Status:            domain.TimeslotOpen,
			AvailableCapacity: maxCapacity,
			MaxCapacity:       maxCapacity,
		})
	}
	for userID := int64(1); userID <= 20; userID++ {
		store.users[userID] = &domain.User{ID: userID, Role: domain.RoleCustomer}
	}

	var wg sync.WaitGroup
	for userID := int64(1); userID <= 20; userID++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			slotID := 100 + (userID % 5)
			guests := int(userID%3) + 1
			_, _ = uc.Execute(context.Background(), &Request{
				UserID: userID, ResourceID: 20, TimeslotID: slotID, GuestCount: guests,
			})
		}(userID)
	}
	wg.Wait()

	consumed := map[int64]int{}
	active := map[int64]int{}
	for _, b := range store.bookings {
		if b.IsActive() {
			consumed[b.TimeslotID] += b.GuestCount
			active[b.TimeslotID]++
		}
	}
	for slotID := int64(100); slotID < 105; slotID++ {
		ts := store.timeslots[slotID]
		assert.Equal(t, maxCapacity-consumed[slotID], ts.AvailableCapacity, "slot %d", slotID)
		assert.GreaterOrEqual(t, ts.AvailableCapacity, 0, "slot %d oversold", slotID)
		assert.LessOrEqual(t, active[slotID], 1, "slot %d has multiple active bookings", slotID)
	}
}

func TestExecute_CountsCreatedBookings(t *testing.T) {
	uc, store, _, counters := newTestEnvWithMetrics()
	seedBookable(store, 4)

	_, err := uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, counters.created)
	assert.Equal(t, 0, counters.conflicts)
}

func TestExecute_CountsCapacityConflicts(t *testing.T) {
	uc, store, _, counters := newTestEnvWithMetrics()
	seedBookable(store, 2)

	_, err := uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 3,
	})
	require.ErrorIs(t, err, ErrInsufficientCapacity)

	// Занятый слот - тоже конфликт за вместимость
	_, err = uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 1,
	})
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), &Request{
		UserID: 10, ResourceID: 20, TimeslotID: 30, GuestCount: 1,
	})
	require.ErrorIs(t, err, ErrSlotTaken)

	assert.Equal(t, 2, counters.conflicts)
	assert.Equal(t, 1, counters.created)
}
