package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/carepulse-appointments/internal/appointment"
)

// AppointmentFormRequest is the form state posted by a client. Form fields
// keep their form names so error keys line up with input keys. A nil field
// was not submitted.
type AppointmentFormRequest struct {
	UserID             string  `json:"userId,omitempty"`
	PrimaryPhysician   *string `json:"primaryPhysician,omitempty"`
	Schedule           *string `json:"schedule,omitempty"`
	Reason             *string `json:"reason,omitempty"`
	Note               *string `json:"note,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

func (r AppointmentFormRequest) Raw() appointment.RawFields {
	raw := appointment.RawFields{}
	put := func(f appointment.Field, v *string) {
		if v != nil {
			raw[f] = *v
		}
	}
	put(appointment.FieldPrimaryPhysician, r.PrimaryPhysician)
	put(appointment.FieldSchedule, r.Schedule)
	put(appointment.FieldReason, r.Reason)
	put(appointment.FieldNote, r.Note)
	put(appointment.FieldCancellationReason, r.CancellationReason)
	return raw
}

type AppointmentResponse struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	PatientID          uuid.UUID `json:"patient_id"`
	PrimaryPhysician   string    `json:"primary_physician"`
	Schedule           time.Time `json:"schedule"`
	Reason             string    `json:"reason"`
	Note               *string   `json:"note,omitempty"`
	CancellationReason *string   `json:"cancellation_reason,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:                 a.ID,
		UserID:             a.UserID,
		PatientID:          a.PatientID,
		PrimaryPhysician:   a.PrimaryPhysician,
		Schedule:           a.Schedule,
		Reason:             a.Reason,
		Note:               a.Note,
		CancellationReason: a.CancellationReason,
		Status:             string(a.Status),
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// SubmissionResponse wraps a persisted appointment with the navigation hint
// for the client: a success page after create, closing the dialog otherwise.
type SubmissionResponse struct {
	Appointment AppointmentResponse `json:"appointment"`
	NextPath    string              `json:"next_path,omitempty"`
	Close       bool                `json:"close,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

type PatientResponse struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  *string   `json:"email,omitempty"`
}

type PhysicianListResponse struct {
	Physicians []string `json:"physicians"`
}

type FieldRuleResponse struct {
	Field    string `json:"field"`
	Presence string `json:"presence"`
	MinLen   int    `json:"min_len,omitempty"`
	MaxLen   int    `json:"max_len,omitempty"`
}

type RulesetResponse struct {
	Intent string              `json:"intent"`
	Label  string              `json:"label"`
	Fields []FieldRuleResponse `json:"fields"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
