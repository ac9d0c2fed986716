package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrExistingRequired   = errors.New("existing appointment required for this intent")
	ErrPatientRequired    = errors.New("patient id required to create an appointment")
	ErrNothingPersisted   = errors.New("gateway returned no appointment")
	ErrSubmissionPanicked = errors.New("submission panicked")
)

type SignalKind string

const (
	SignalIdle              SignalKind = "idle"
	SignalBusy              SignalKind = "busy"
	SignalValidationFailed  SignalKind = "validation_failed"
	SignalSuccess           SignalKind = "success"
	SignalPersistenceFailed SignalKind = "persistence_failed"
)

// Signal is one value of the caller-facing submission vocabulary. Only the
// fields relevant to Kind are set.
type Signal struct {
	Kind        SignalKind
	Appointment *Appointment
	FieldErrors FieldErrors
	Err         error
}

// Terminal reports whether the signal ends a submission.
func (s Signal) Terminal() bool {
	switch s.Kind {
	case SignalValidationFailed, SignalSuccess, SignalPersistenceFailed:
		return true
	}
	return false
}

// SignalSink receives the signals of one submission surface. Submit emits
// SignalBusy first and exactly one terminal signal last.
type SignalSink interface {
	Emit(Signal)
}

type SignalFunc func(Signal)

func (f SignalFunc) Emit(s Signal) { f(s) }

type Submission struct {
	Intent    Intent
	PatientID uuid.UUID
	UserID    uuid.UUID
	Raw       RawFields
	// Existing is the stored appointment for schedule and cancel; nil on create.
	Existing *Appointment
}

type Service struct {
	gateway   Gateway
	validator *Validator
	log       *logrus.Logger
}

func NewService(gateway Gateway, validator *Validator, log *logrus.Logger) *Service {
	return &Service{
		gateway:   gateway,
		validator: validator,
		log:       log,
	}
}

// Submit runs one user-initiated submission: ruleset, validation, transition
// and a single gateway call. It never panics and never returns a non-terminal
// signal. sink may be nil.
func (s *Service) Submit(ctx context.Context, sub Submission, sink SignalSink) (out Signal) {
	emit := func(sig Signal) {
		if sink != nil {
			sink.Emit(sig)
		}
	}

	emit(Signal{Kind: SignalBusy})

	defer func() {
		if r := recover(); r != nil {
			s.entry(sub).Errorf("submission panicked: %v", r)
			out = failed(fmt.Errorf("%w: %v", ErrSubmissionPanicked, r))
		}
		emit(out)
	}()

	return s.submit(ctx, sub)
}

func (s *Service) submit(ctx context.Context, sub Submission) Signal {
	log := s.entry(sub)

	rs, err := SelectRuleset(sub.Intent)
	if err != nil {
		log.WithError(err).Error("select ruleset")
		return failed(err)
	}

	rec, err := s.validator.Validate(rs, sub.Raw)
	if err != nil {
		var fieldErrs FieldErrors
		if errors.As(err, &fieldErrs) {
			log.WithField("fields", len(fieldErrs)).Debug("submission rejected by validation")
			return Signal{Kind: SignalValidationFailed, FieldErrors: fieldErrs}
		}
		log.WithError(err).Error("validate submission")
		return failed(err)
	}

	current := StatusPending
	if sub.Existing != nil {
		current = sub.Existing.Status
	}

	status, patch, err := Transition(current, rec)
	if err != nil {
		log.WithError(err).Error("transition")
		return failed(err)
	}

	var appt *Appointment
	if sub.Intent == IntentCreate {
		if sub.PatientID == uuid.Nil {
			log.Error(ErrPatientRequired.Error())
			return failed(ErrPatientRequired)
		}
		appt, err = s.gateway.CreateAppointment(ctx, NewAppointment{
			UserID:           sub.UserID,
			PatientID:        sub.PatientID,
			PrimaryPhysician: *patch.PrimaryPhysician,
			Schedule:         *patch.Schedule,
			Reason:           *patch.Reason,
			Note:             patch.Note,
			Status:           status,
		})
	} else {
		if sub.Existing == nil {
			log.Error(ErrExistingRequired.Error())
			return failed(ErrExistingRequired)
		}
		appt, err = s.gateway.UpdateAppointment(ctx, UpdateRequest{
			UserID:        sub.UserID,
			AppointmentID: sub.Existing.ID,
			Patch:         patch,
			Intent:        sub.Intent,
		})
	}
	if err != nil {
		log.WithError(err).Warn("persist appointment")
		return failed(err)
	}
	if appt == nil {
		log.Error(ErrNothingPersisted.Error())
		return failed(ErrNothingPersisted)
	}

	log.WithFields(logrus.Fields{
		"appointment_id": appt.ID,
		"status":         appt.Status,
	}).Info("appointment submitted")

	return Signal{Kind: SignalSuccess, Appointment: appt}
}

func (s *Service) entry(sub Submission) *logrus.Entry {
	fields := logrus.Fields{
		"intent":  sub.Intent,
		"user_id": sub.UserID,
	}
	if sub.Existing != nil {
		fields["appointment_id"] = sub.Existing.ID
	}
	return s.log.WithFields(fields)
}

func failed(err error) Signal {
	return Signal{Kind: SignalPersistenceFailed, Err: err}
}
