package appointment

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidStatus = errors.New("invalid appointment status")

// Patch is the set of stored fields a transition changes. Nil fields are
// left as they are.
type Patch struct {
	PrimaryPhysician   *string
	Schedule           *time.Time
	Reason             *string
	Note               *string
	CancellationReason *string
	Status             Status
}

// Apply returns a copy of a with the patch applied.
func (p Patch) Apply(a Appointment) Appointment {
	if p.PrimaryPhysician != nil {
		a.PrimaryPhysician = *p.PrimaryPhysician
	}
	if p.Schedule != nil {
		a.Schedule = *p.Schedule
	}
	if p.Reason != nil {
		a.Reason = *p.Reason
	}
	if p.Note != nil {
		note := *p.Note
		a.Note = &note
	}
	if p.CancellationReason != nil {
		reason := *p.CancellationReason
		a.CancellationReason = &reason
	}
	if p.Status != "" {
		a.Status = p.Status
	}
	return a
}

// Transition computes the next status and the patch for applying rec to an
// appointment currently in state current.
//
// A create record is construction rather than a transition: it always yields
// pending. Schedule is accepted from any state, cancelled included. Cancel
// only ever touches the cancellation reason.
func Transition(current Status, rec Record) (Status, Patch, error) {
	if !current.Valid() {
		return "", Patch{}, fmt.Errorf("%w: %q", ErrInvalidStatus, current)
	}

	switch r := rec.(type) {
	case CreateRecord:
		physician, schedule, reason := r.PrimaryPhysician, r.Schedule, r.Reason
		return StatusPending, Patch{
			PrimaryPhysician: &physician,
			Schedule:         &schedule,
			Reason:           &reason,
			Note:             cloneString(r.Note),
			Status:           StatusPending,
		}, nil
	case ScheduleRecord:
		physician, schedule := r.PrimaryPhysician, r.Schedule
		return StatusScheduled, Patch{
			PrimaryPhysician: &physician,
			Schedule:         &schedule,
			Reason:           cloneString(r.Reason),
			Note:             cloneString(r.Note),
			Status:           StatusScheduled,
		}, nil
	case CancelRecord:
		reason := r.CancellationReason
		return StatusCancelled, Patch{
			CancellationReason: &reason,
			Status:             StatusCancelled,
		}, nil
	}
	return "", Patch{}, fmt.Errorf("%w: record %T", ErrUnsupportedIntent, rec)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
