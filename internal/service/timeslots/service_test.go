package timeslots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-TimeslotService/internal/service/timeslots/models"
)

type fakeTimeslots struct {
	slots []*domain.Timeslot

	lastFilter   domain.TimeslotsFilter
	generated    int
	generateFrom time.Time
	generateTo   time.Time
}

func (f *fakeTimeslots) ListByFilter(ctx context.Context, filter domain.TimeslotsFilter) ([]*domain.Timeslot, error) {
	f.lastFilter = filter
	var out []*domain.Timeslot
	for _, ts := range f.slots {
		if ts.ResourceID != filter.ResourceID {
			continue
		}
		if filter.OnlyOpen && !ts.IsOpen() {
			continue
		}
		cp := *ts
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeTimeslots) GenerateForResource(ctx context.Context, resourceID int64, startDate, endDate time.Time) (int, error) {
	f.generateFrom, f.generateTo = startDate, endDate
	return f.generated, nil
}

type fakeResources struct {
	known map[int64]bool
}

func (f *fakeResources) GetResource(ctx context.Context, id int64) (*domain.Resource, error) {
	if !f.known[id] {
		return nil, catalogRepo.ErrResourceNotFound
	}
	return &domain.Resource{ID: id, Active: true, Capacity: 4}, nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestService() (*Service, *fakeTimeslots) {
	slots := &fakeTimeslots{}
	resources := &fakeResources{known: map[int64]bool{20: true}}
	return NewService(slots, resources, nopLogger{}), slots
}

func slot(id int64, status domain.TimeslotStatus, available int) *domain.Timeslot {
	return &domain.Timeslot{
		ID: id, ResourceID: 20, Status: status,
		AvailableCapacity: available, MaxCapacity: 4,
		StartAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC),
	}
}

func TestList_OnlyOpenHidesClosedSlots(t *testing.T) {
	svc, repo := newTestService()
	repo.slots = []*domain.Timeslot{
		slot(1, domain.TimeslotOpen, 4),
		slot(2, domain.TimeslotClosed, 4),
		slot(3, domain.TimeslotBlocked, 4),
	}

	resp, err := svc.List(context.Background(), &models.ListRequest{ResourceID: 20, OnlyOpen: true})

	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, int64(1), resp.Timeslots[0].ID)
}

func TestList_AdminSeesAllStatuses(t *testing.T) {
	svc, repo := newTestService()
	repo.slots = []*domain.Timeslot{
		slot(1, domain.TimeslotOpen, 4),
		slot(2, domain.TimeslotClosed, 4),
	}

	resp, err := svc.List(context.Background(), &models.ListRequest{ResourceID: 20, OnlyOpen: false})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
}

func TestList_ResourceNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.List(context.Background(), &models.ListRequest{ResourceID: 404})

	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestList_InvalidResourceID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.List(context.Background(), &models.ListRequest{ResourceID: 0})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerate(t *testing.T) {
	svc, repo := newTestService()
	repo.generated = 14

	resp, err := svc.Generate(context.Background(), &models.GenerateRequest{
		ResourceID: 20, StartDate: "2025-06-02", EndDate: "2025-06-08",
	})

	require.NoError(t, err)
	assert.Equal(t, 14, resp.Created)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), repo.generateFrom)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), repo.generateTo)
}

func TestGenerate_Validation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name string
		req  models.GenerateRequest
	}{
		{"кривая дата начала", models.GenerateRequest{ResourceID: 20, StartDate: "02.06.2025", EndDate: "2025-06-08"}},
		{"кривая дата конца", models.GenerateRequest{ResourceID: 20, StartDate: "2025-06-02", EndDate: "июнь"}},
		{"конец раньше начала", models.GenerateRequest{ResourceID: 20, StartDate: "2025-06-08", EndDate: "2025-06-02"}},
		{"нулевой ресурс", models.GenerateRequest{ResourceID: 0, StartDate: "2025-06-02", EndDate: "2025-06-08"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), &tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestGenerate_ResourceNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{
		ResourceID: 404, StartDate: "2025-06-02", EndDate: "2025-06-08",
	})

	assert.ErrorIs(t, err, ErrResourceNotFound)
}
