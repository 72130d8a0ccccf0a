package bookings

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-TimeslotService/internal/service/bookings/models"
	"github.com/m04kA/SMC-TimeslotService/pkg/ptr"
)

type fakeBookings struct {
	byID    map[int64]*domain.Booking
	details []*domain.BookingDetails

	lastFilter domain.BookingsFilter
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{byID: map[int64]*domain.Booking{}}
}

func (f *fakeBookings) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) ListByEmail(ctx context.Context, email string, status *domain.BookingStatus) ([]*domain.BookingDetails, error) {
	var out []*domain.BookingDetails
	for _, d := range f.details {
		if !strings.EqualFold(d.CustomerEmail, email) {
			continue
		}
		if status != nil && d.Status != *status {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeBookings) ListWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.BookingDetails, error) {
	f.lastFilter = filter
	out := make([]*domain.BookingDetails, 0, len(f.details))
	for _, d := range f.details {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestService() (*Service, *fakeBookings) {
	repo := newFakeBookings()
	return NewService(repo, nopLogger{}), repo
}

func details(id int64, email string, status domain.BookingStatus) *domain.BookingDetails {
	return &domain.BookingDetails{
		Booking: domain.Booking{
			ID: id, UserID: 10, ResourceID: 20, TimeslotID: 30,
			Status: status, GuestCount: 2,
		},
		CustomerName:  "Иван",
		CustomerEmail: email,
		ResourceName:  "Зал 1",
	}
}

func TestGetByID(t *testing.T) {
	svc, repo := newTestService()
	repo.byID[1] = &domain.Booking{ID: 1, UserID: 10, Status: domain.StatusConfirmed, GuestCount: 2}

	resp, err := svc.GetByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "confirmed", resp.Status)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetByID(context.Background(), 404)

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListByEmail(t *testing.T) {
	svc, repo := newTestService()
	repo.details = []*domain.BookingDetails{
		details(1, "ivan@example.com", domain.StatusConfirmed),
		details(2, "ivan@example.com", domain.StatusCancelled),
		details(3, "petr@example.com", domain.StatusConfirmed),
	}

	resp, err := svc.ListByEmail(context.Background(), &models.ListByEmailRequest{Email: " ivan@example.com "})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
}

func TestListByEmail_StatusFilter(t *testing.T) {
	svc, repo := newTestService()
	repo.details = []*domain.BookingDetails{
		details(1, "ivan@example.com", domain.StatusConfirmed),
		details(2, "ivan@example.com", domain.StatusCancelled),
	}

	resp, err := svc.ListByEmail(context.Background(), &models.ListByEmailRequest{
		Email: "ivan@example.com", Status: ptr.Ptr("cancelled"),
	})

	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, int64(2), resp.Bookings[0].ID)
}

func TestListByEmail_InvalidStatus(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ListByEmail(context.Background(), &models.ListByEmailRequest{
		Email: "ivan@example.com", Status: ptr.Ptr("deleted"),
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListByEmail_EmptyEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ListByEmail(context.Background(), &models.ListByEmailRequest{Email: "   "})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdminList_PassesFilter(t *testing.T) {
	svc, repo := newTestService()
	repo.details = []*domain.BookingDetails{details(1, "ivan@example.com", domain.StatusConfirmed)}

	resp, err := svc.AdminList(context.Background(), &models.AdminListRequest{
		OrgID:  ptr.Ptr(int64(7)),
		Status: ptr.Ptr("confirmed"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	require.NotNil(t, repo.lastFilter.OrgID)
	assert.Equal(t, int64(7), *repo.lastFilter.OrgID)
	require.NotNil(t, repo.lastFilter.Status)
	assert.Equal(t, domain.StatusConfirmed, *repo.lastFilter.Status)
}

func TestAdminList_InvalidStatus(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AdminList(context.Background(), &models.AdminListRequest{Status: ptr.Ptr("whatever")})

	assert.ErrorIs(t, err, ErrInvalidInput)
}
