package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. New appointments start pending until an admin
// schedules or cancels them.
const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Appointment maps to the appointments table.
type Appointment struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	UserID             uuid.UUID  `db:"user_id" json:"user_id"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientName        string     `db:"patient_name" json:"patient_name"`
	PrimaryPhysician   string     `db:"primary_physician" json:"primary_physician"`
	Schedule           time.Time  `db:"schedule" json:"schedule"`
	Reason             *string    `db:"reason" json:"reason,omitempty"`
	Note               *string    `db:"note" json:"note,omitempty"`
	Status             string     `db:"status" json:"status"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// RecentList is the admin dashboard view: the newest appointments plus
// per-status counts across the whole table.
type RecentList struct {
	TotalCount     int            `json:"total_count"`
	ScheduledCount int            `json:"scheduled_count"`
	PendingCount   int            `json:"pending_count"`
	CancelledCount int            `json:"cancelled_count"`
	Documents      []*Appointment `json:"documents"`
}

// UpdateRequest is the body of PATCH /appointments/:id. Type selects the
// transition: "schedule" confirms, "cancel" cancels with a reason.
type UpdateRequest struct {
	Type               string     `json:"type"`
	Schedule           *time.Time `json:"schedule,omitempty"`
	PrimaryPhysician   *string    `json:"primary_physician,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
}
