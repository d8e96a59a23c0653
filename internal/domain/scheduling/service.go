package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepulse/carepulse/internal/platform/notification"
)

type Service struct {
	appointments AppointmentRepository
	sms          notification.SMSSender
	logger       zerolog.Logger
}

func NewService(appointments AppointmentRepository, sms notification.SMSSender, logger zerolog.Logger) *Service {
	return &Service{appointments: appointments, sms: sms, logger: logger}
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.PrimaryPhysician == "" {
		return fmt.Errorf("primary_physician is required")
	}
	if a.Schedule.IsZero() {
		return fmt.Errorf("schedule is required")
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.Status != StatusPending && a.Status != StatusScheduled && a.Status != StatusCancelled {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// RecentAppointments backs the admin dashboard: the newest appointments
// plus scheduled/pending/cancelled counts.
func (s *Service) RecentAppointments(ctx context.Context, limit, offset int) (*RecentList, error) {
	items, total, err := s.appointments.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	counts, err := s.appointments.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &RecentList{
		TotalCount:     total,
		ScheduledCount: counts[StatusScheduled],
		PendingCount:   counts[StatusPending],
		CancelledCount: counts[StatusCancelled],
		Documents:      items,
	}, nil
}

func (s *Service) ListAppointmentsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByUser(ctx, userID, limit, offset)
}

// UpdateAppointment applies a schedule or cancel transition and notifies
// the patient by SMS. Notification failures are logged, not surfaced; the
// state change has already been committed.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch req.Type {
	case "schedule":
		a.Status = StatusScheduled
		if req.Schedule != nil {
			a.Schedule = *req.Schedule
		}
		if req.PrimaryPhysician != nil {
			a.PrimaryPhysician = *req.PrimaryPhysician
		}
	case "cancel":
		a.Status = StatusCancelled
		if req.CancellationReason == nil || *req.CancellationReason == "" {
			return nil, fmt.Errorf("cancellation_reason is required")
		}
		a.CancellationReason = req.CancellationReason
	default:
		return nil, fmt.Errorf("invalid update type: %s", req.Type)
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}

	if s.sms != nil {
		if err := s.sms.SendSMS(ctx, a.UserID.String(), smsMessage(a, req.Type)); err != nil {
			s.logger.Error().Err(err).Str("appointment_id", a.ID.String()).Msg("failed to send sms notification")
		}
	}
	return a, nil
}

func smsMessage(a *Appointment, updateType string) string {
	if updateType == "schedule" {
		return fmt.Sprintf("Hi %s, it's Carepulse. Your appointment has been scheduled for %s with Dr.%s",
			a.PatientName, a.Schedule.Format("Jan 2, 2006 3:04 PM"), a.PrimaryPhysician)
	}
	reason := ""
	if a.CancellationReason != nil {
		reason = *a.CancellationReason
	}
	return fmt.Sprintf("Hi %s, it's Carepulse. We regret to inform you that your appointment has been cancelled for the following reason: %s",
		a.PatientName, reason)
}
