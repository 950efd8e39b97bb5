package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/resort_booking/internal/core/domain"
)

type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	ListByStatuses(ctx context.Context, statuses []domain.BookingStatus) ([]domain.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error
	MarkProofOfPayment(ctx context.Context, id uuid.UUID) error
	AppendExtension(ctx context.Context, id uuid.UUID, ext domain.ExtensionRecord) error
	GetExpiredPending(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type CartStore interface {
	Load(ctx context.Context, sessionID string) (*domain.CartSnapshot, error)
	Save(ctx context.Context, sessionID string, snapshot domain.CartSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

type StatusPublisher interface {
	PublishStatusCommand(ctx context.Context, cmd domain.StatusCommand) error
}
