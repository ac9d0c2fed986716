package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Gateway is the persistence boundary used by Submit. Each submission makes
// at most one call on it.
type Gateway interface {
	CreateAppointment(ctx context.Context, in NewAppointment) (*Appointment, error)
	UpdateAppointment(ctx context.Context, req UpdateRequest) (*Appointment, error)
}

// PatientDirectory resolves the patient record of a user before a create.
type PatientDirectory interface {
	GetPatient(ctx context.Context, userID uuid.UUID) (*Patient, error)
}

// Repository contains all DB interactions needed by the service and the API.
type Repository interface {
	Gateway
	PatientDirectory

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointmentsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Appointment, error)
}
