package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/carepulse-appointments/internal/logger"
)

func newTestService(gw Gateway) *Service {
	return NewService(gw, NewValidator(nil), logger.Discard())
}

func TestSubmit_CreateSuccess(t *testing.T) {
	t.Parallel()

	gw := &gatewayMock{CreateFunc: createEcho()}
	svc := newTestService(gw)
	rec := &signalRecorder{}

	userID, patientID := uuid.New(), uuid.New()
	out := svc.Submit(context.Background(), Submission{
		Intent:    IntentCreate,
		UserID:    userID,
		PatientID: patientID,
		Raw: RawFields{
			FieldPrimaryPhysician: "Dr. Lee",
			FieldSchedule:         "2025-03-01T10:00:00Z",
			FieldReason:           "Checkup",
		},
	}, rec)

	require.Equal(t, SignalSuccess, out.Kind, "err: %v", out.Err)
	require.NotNil(t, out.Appointment)
	assert.Equal(t, StatusPending, out.Appointment.Status)
	assert.Equal(t, "Dr. Lee", out.Appointment.PrimaryPhysician)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), out.Appointment.Schedule)

	calls := gw.CreateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, userID, calls[0].UserID)
	assert.Equal(t, patientID, calls[0].PatientID)
	assert.Equal(t, StatusPending, calls[0].Status)
	assert.Nil(t, calls[0].Note)
	assert.Empty(t, gw.UpdateCalls())

	assert.Equal(t, []SignalKind{SignalBusy, SignalSuccess}, rec.kinds())
	assert.Equal(t, out, rec.signals[len(rec.signals)-1])
}

func TestSubmit_ValidationFailedMakesNoGatewayCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    RawFields
		fields []Field
	}{
		{
			name: "missing physician",
			raw: RawFields{
				FieldSchedule: "2025-03-01T10:00:00Z",
				FieldReason:   "Checkup",
			},
			fields: []Field{FieldPrimaryPhysician},
		},
		{
			name: "missing schedule",
			raw: RawFields{
				FieldPrimaryPhysician: "Dr. Lee",
				FieldReason:           "Checkup",
			},
			fields: []Field{FieldSchedule},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &gatewayMock{}
			rec := &signalRecorder{}

			out := newTestService(gw).Submit(context.Background(), Submission{
				Intent:    IntentCreate,
				UserID:    uuid.New(),
				PatientID: uuid.New(),
				Raw:       tt.raw,
			}, rec)

			require.Equal(t, SignalValidationFailed, out.Kind)
			require.Len(t, out.FieldErrors, len(tt.fields))
			for _, f := range tt.fields {
				assert.ErrorIs(t, out.FieldErrors[f], ErrMissingField)
			}
			assert.Nil(t, out.Appointment)
			assert.Zero(t, gw.Calls())
			assert.Equal(t, []SignalKind{SignalBusy, SignalValidationFailed}, rec.kinds())
		})
	}
}

func TestSubmit_CancelKeepsStoredFields(t *testing.T) {
	t.Parallel()

	existing := storedAppointment(StatusScheduled)
	gw := &gatewayMock{UpdateFunc: updateOnto(existing)}
	rec := &signalRecorder{}

	out := newTestService(gw).Submit(context.Background(), Submission{
		Intent:   IntentCancel,
		UserID:   existing.UserID,
		Existing: &existing,
		Raw: RawFields{
			FieldCancellationReason: "Patient unavailable",
			// Ignored for cancel.
			FieldPrimaryPhysician: "Dr. Nobody",
		},
	}, rec)

	require.Equal(t, SignalSuccess, out.Kind, "err: %v", out.Err)
	got := out.Appointment
	require.NotNil(t, got)
	assert.Equal(t, StatusCancelled, got.Status)
	require.NotNil(t, got.CancellationReason)
	assert.Equal(t, "Patient unavailable", *got.CancellationReason)
	assert.Equal(t, existing.PrimaryPhysician, got.PrimaryPhysician)
	assert.Equal(t, existing.Schedule, got.Schedule)

	calls := gw.UpdateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, existing.ID, calls[0].AppointmentID)
	assert.Equal(t, existing.UserID, calls[0].UserID)
	assert.Equal(t, IntentCancel, calls[0].Intent)
	assert.Nil(t, calls[0].Patch.PrimaryPhysician)
	assert.Nil(t, calls[0].Patch.Schedule)
	assert.Empty(t, gw.CreateCalls())
}

func TestSubmit_ScheduleCancelledAppointment(t *testing.T) {
	t.Parallel()

	existing := storedAppointment(StatusCancelled)
	gw := &gatewayMock{UpdateFunc: updateOnto(existing)}

	out := newTestService(gw).Submit(context.Background(), Submission{
		Intent:   IntentSchedule,
		UserID:   existing.UserID,
		Existing: &existing,
		Raw: RawFields{
			FieldPrimaryPhysician: "Dr. Sharma",
			FieldSchedule:         "2025-06-01T08:15:00Z",
		},
	}, nil)

	require.Equal(t, SignalSuccess, out.Kind, "err: %v", out.Err)
	assert.Equal(t, StatusScheduled, out.Appointment.Status)
	assert.Equal(t, "Dr. Sharma", out.Appointment.PrimaryPhysician)
}

func TestSubmit_GatewayFailure(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection reset")
	gw := &gatewayMock{
		CreateFunc: func(ctx context.Context, in NewAppointment) (*Appointment, error) {
			return nil, storeErr
		},
	}
	rec := &signalRecorder{}

	out := newTestService(gw).Submit(context.Background(), Submission{
		Intent:    IntentCreate,
		UserID:    uuid.New(),
		PatientID: uuid.New(),
		Raw: RawFields{
			FieldPrimaryPhysician: "Dr. Lee",
			FieldSchedule:         "2025-03-01T10:00:00Z",
			FieldReason:           "Checkup",
		},
	}, rec)

	assert.Equal(t, SignalPersistenceFailed, out.Kind)
	assert.ErrorIs(t, out.Err, storeErr)
	assert.Nil(t, out.Appointment)
	assert.Equal(t, 1, gw.Calls())

	require.NotEmpty(t, rec.signals)
	last := rec.signals[len(rec.signals)-1]
	assert.NotEqual(t, SignalBusy, last.Kind)
	assert.True(t, last.Terminal())
}

func TestSubmit_GatewayPanicIsRecovered(t *testing.T) {
	t.Parallel()

	existing := storedAppointment(StatusPending)
	gw := &gatewayMock{
		UpdateFunc: func(ctx context.Context, req UpdateRequest) (*Appointment, error) {
			panic("driver exploded")
		},
	}
	rec := &signalRecorder{}

	var out Signal
	require.NotPanics(t, func() {
		out = newTestService(gw).Submit(context.Background(), Submission{
			Intent:   IntentCancel,
			UserID:   existing.UserID,
			Existing: &existing,
			Raw:      RawFields{FieldCancellationReason: "Clinic closed"},
		}, rec)
	})

	assert.Equal(t, SignalPersistenceFailed, out.Kind)
	assert.ErrorIs(t, out.Err, ErrSubmissionPanicked)
	assert.Equal(t, []SignalKind{SignalBusy, SignalPersistenceFailed}, rec.kinds())
}

func TestSubmit_NilAppointmentFromGateway(t *testing.T) {
	t.Parallel()

	gw := &gatewayMock{
		CreateFunc: func(ctx context.Context, in NewAppointment) (*Appointment, error) {
			return nil, nil
		},
	}

	out := newTestService(gw).Submit(context.Background(), Submission{
		Intent:    IntentCreate,
		UserID:    uuid.New(),
		PatientID: uuid.New(),
		Raw: RawFields{
			FieldPrimaryPhysician: "Dr. Lee",
			FieldSchedule:         "2025-03-01T10:00:00Z",
			FieldReason:           "Checkup",
		},
	}, nil)

	assert.Equal(t, SignalPersistenceFailed, out.Kind)
	assert.ErrorIs(t, out.Err, ErrNothingPersisted)
}

func TestSubmit_PreconditionFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sub     Submission
		wantErr error
	}{
		{
			name: "create without patient",
			sub: Submission{
				Intent: IntentCreate,
				UserID: uuid.New(),
				Raw: RawFields{
					FieldPrimaryPhysician: "Dr. Lee",
					FieldSchedule:         "2025-03-01T10:00:00Z",
					FieldReason:           "Checkup",
				},
			},
			wantErr: ErrPatientRequired,
		},
		{
			name: "cancel without existing",
			sub: Submission{
				Intent: IntentCancel,
				UserID: uuid.New(),
				Raw:    RawFields{FieldCancellationReason: "No longer needed"},
			},
			wantErr: ErrExistingRequired,
		},
		{
			name: "unknown intent",
			sub: Submission{
				Intent: "reschedule",
				UserID: uuid.New(),
			},
			wantErr: ErrUnsupportedIntent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &gatewayMock{}
			rec := &signalRecorder{}

			out := newTestService(gw).Submit(context.Background(), tt.sub, rec)

			assert.Equal(t, SignalPersistenceFailed, out.Kind)
			assert.ErrorIs(t, out.Err, tt.wantErr)
			assert.Zero(t, gw.Calls())
			assert.Equal(t, []SignalKind{SignalBusy, SignalPersistenceFailed}, rec.kinds())
		})
	}
}

func TestSubmit_SignalFuncSink(t *testing.T) {
	t.Parallel()

	gw := &gatewayMock{CreateFunc: createEcho()}

	var terminal int
	sink := SignalFunc(func(s Signal) {
		if s.Terminal() {
			terminal++
		}
	})

	newTestService(gw).Submit(context.Background(), Submission{
		Intent:    IntentCreate,
		UserID:    uuid.New(),
		PatientID: uuid.New(),
		Raw: RawFields{
			FieldPrimaryPhysician: "Dr. Lee",
			FieldSchedule:         "2025-03-01T10:00:00Z",
			FieldReason:           "Checkup",
		},
	}, sink)

	assert.Equal(t, 1, terminal)
}

func TestSignalTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, Signal{Kind: SignalIdle}.Terminal())
	assert.False(t, Signal{Kind: SignalBusy}.Terminal())
	assert.True(t, Signal{Kind: SignalValidationFailed}.Terminal())
	assert.True(t, Signal{Kind: SignalSuccess}.Terminal())
	assert.True(t, Signal{Kind: SignalPersistenceFailed}.Terminal())
}
