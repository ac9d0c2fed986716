package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusCancelled:
		return true
	}
	return false
}

// Intent is the declared purpose of a single submission. It is never stored.
type Intent string

const (
	IntentCreate   Intent = "create"
	IntentSchedule Intent = "schedule"
	IntentCancel   Intent = "cancel"
)

// Label is the submit button text for the intent.
func (i Intent) Label() string {
	switch i {
	case IntentCreate:
		return "Create Appointment"
	case IntentSchedule:
		return "Schedule Appointment"
	case IntentCancel:
		return "Cancel Appointment"
	}
	return ""
}

type Patient struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Appointment struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	PatientID          uuid.UUID
	PrimaryPhysician   string
	Schedule           time.Time
	Reason             string
	Note               *string
	CancellationReason *string
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewAppointment is what the gateway needs to insert a fresh appointment.
type NewAppointment struct {
	UserID           uuid.UUID
	PatientID        uuid.UUID
	PrimaryPhysician string
	Schedule         time.Time
	Reason           string
	Note             *string
	Status           Status
}

// UpdateRequest carries a patch for an existing appointment owned by UserID.
type UpdateRequest struct {
	UserID        uuid.UUID
	AppointmentID uuid.UUID
	Patch         Patch
	Intent        Intent
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
