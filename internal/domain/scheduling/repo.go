package scheduling

import (
	"context"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	// ListRecent returns appointments newest-first plus the total count.
	ListRecent(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
