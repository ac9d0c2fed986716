package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Reader interface {
	PatientDirectory
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointmentsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Appointment, error)
}

// Queries is the read side used to render forms and lists. It never writes.
type Queries struct {
	repo Reader
}

func NewQueries(repo Reader) *Queries {
	return &Queries{repo: repo}
}

// GetPatient resolves the patient of a user. The error wraps
// ErrPatientNotFound when the user has no patient record.
func (q *Queries) GetPatient(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	p, err := q.repo.GetPatient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (q *Queries) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := q.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// ListAppointmentsByUser retrieves appointments owned by a user, newest
// schedule first.
func (q *Queries) ListAppointmentsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit, offset = ClampPage(limit, offset)

	appointments, err := q.repo.ListAppointmentsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by user: %w", err)
	}
	return appointments, nil
}

// ClampPage applies the list defaults: limit 20, at most 100, offset >= 0.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
