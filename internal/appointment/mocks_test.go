package appointment

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// gatewayMock is a hand-written Gateway double that records its calls.
type gatewayMock struct {
	CreateFunc func(ctx context.Context, in NewAppointment) (*Appointment, error)
	UpdateFunc func(ctx context.Context, req UpdateRequest) (*Appointment, error)

	mu          sync.Mutex
	createCalls []NewAppointment
	updateCalls []UpdateRequest
}

func (m *gatewayMock) CreateAppointment(ctx context.Context, in NewAppointment) (*Appointment, error) {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, in)
	m.mu.Unlock()
	if m.CreateFunc == nil {
		panic("gatewayMock.CreateFunc: not set")
	}
	return m.CreateFunc(ctx, in)
}

func (m *gatewayMock) UpdateAppointment(ctx context.Context, req UpdateRequest) (*Appointment, error) {
	m.mu.Lock()
	m.updateCalls = append(m.updateCalls, req)
	m.mu.Unlock()
	if m.UpdateFunc == nil {
		panic("gatewayMock.UpdateFunc: not set")
	}
	return m.UpdateFunc(ctx, req)
}

func (m *gatewayMock) CreateCalls() []NewAppointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]NewAppointment(nil), m.createCalls...)
}

func (m *gatewayMock) UpdateCalls() []UpdateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]UpdateRequest(nil), m.updateCalls...)
}

func (m *gatewayMock) Calls() int {
	return len(m.CreateCalls()) + len(m.UpdateCalls())
}

// createEcho returns a CreateFunc that stores the input as a new appointment.
func createEcho() func(ctx context.Context, in NewAppointment) (*Appointment, error) {
	return func(ctx context.Context, in NewAppointment) (*Appointment, error) {
		return &Appointment{
			ID:               uuid.New(),
			UserID:           in.UserID,
			PatientID:        in.PatientID,
			PrimaryPhysician: in.PrimaryPhysician,
			Schedule:         in.Schedule,
			Reason:           in.Reason,
			Note:             in.Note,
			Status:           in.Status,
		}, nil
	}
}

// updateOnto returns an UpdateFunc that applies the patch to existing.
func updateOnto(existing Appointment) func(ctx context.Context, req UpdateRequest) (*Appointment, error) {
	return func(ctx context.Context, req UpdateRequest) (*Appointment, error) {
		a := req.Patch.Apply(existing)
		return &a, nil
	}
}

// signalRecorder is a SignalSink keeping every emitted signal.
type signalRecorder struct {
	signals []Signal
}

func (r *signalRecorder) Emit(s Signal) { r.signals = append(r.signals, s) }

func (r *signalRecorder) kinds() []SignalKind {
	out := make([]SignalKind, 0, len(r.signals))
	for _, s := range r.signals {
		out = append(out, s.Kind)
	}
	return out
}

type lockerMock struct {
	err   error
	calls []uuid.UUID
}

func (l *lockerMock) WithAppointmentLock(ctx context.Context, id uuid.UUID, fn func(ctx context.Context) error) error {
	l.calls = append(l.calls, id)
	if l.err != nil {
		return l.err
	}
	return fn(ctx)
}

func strPtr(s string) *string { return &s }
