package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/resort_booking/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type ReservationRepository struct {
	mock.Mock
}

func (_m *ReservationRepository) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	ret := _m.Called(ctx, reservation)
	return ret.Error(0)
}

func (_m *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.Reservation
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Reservation)
	}
	return r0, ret.Error(1)
}

func (_m *ReservationRepository) ListByStatuses(ctx context.Context, statuses []domain.BookingStatus) ([]domain.Reservation, error) {
	ret := _m.Called(ctx, statuses)

	var r0 []domain.Reservation
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.Reservation)
	}
	return r0, ret.Error(1)
}

func (_m *ReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error {
	ret := _m.Called(ctx, id, from, to)
	return ret.Error(0)
}

func (_m *ReservationRepository) MarkProofOfPayment(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *ReservationRepository) AppendExtension(ctx context.Context, id uuid.UUID, ext domain.ExtensionRecord) error {
	ret := _m.Called(ctx, id, ext)
	return ret.Error(0)
}

func (_m *ReservationRepository) GetExpiredPending(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	ret := _m.Called(ctx, now)

	var r0 []uuid.UUID
	if v := ret.Get(0); v != nil {
		r0 = v.([]uuid.UUID)
	}
	return r0, ret.Error(1)
}

func NewReservationRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ReservationRepository {
	m := &ReservationRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
