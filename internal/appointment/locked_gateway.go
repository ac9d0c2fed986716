package appointment

import (
	"context"
	"errors"

	redisclient "github.com/hackgods/carepulse-appointments/internal/redis"
)

var ErrAppointmentBusy = errors.New("appointment is being updated, please retry")

// LockedGateway holds the per-appointment lock around updates so two staff
// members editing the same appointment cannot interleave writes.
type LockedGateway struct {
	next   Gateway
	locker redisclient.Locker
}

func NewLockedGateway(next Gateway, locker redisclient.Locker) *LockedGateway {
	return &LockedGateway{next: next, locker: locker}
}

func (g *LockedGateway) CreateAppointment(ctx context.Context, in NewAppointment) (*Appointment, error) {
	return g.next.CreateAppointment(ctx, in)
}

func (g *LockedGateway) UpdateAppointment(ctx context.Context, req UpdateRequest) (*Appointment, error) {
	var updated *Appointment

	err := g.locker.WithAppointmentLock(ctx, req.AppointmentID, func(lockCtx context.Context) error {
		appt, err := g.next.UpdateAppointment(lockCtx, req)
		if err != nil {
			return err
		}
		updated = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrAppointmentBusy
		}
		return nil, err
	}

	return updated, nil
}
