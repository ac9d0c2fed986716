package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	EventAppointmentCreated   = "APPOINTMENT_CREATED"
	EventAppointmentScheduled = "APPOINTMENT_SCHEDULED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

const appointmentColumns = `id, user_id, patient_id, primary_physician, schedule, reason, note,
	cancellation_reason, status, created_at, updated_at`

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.PatientID,
		&a.PrimaryPhysician,
		&a.Schedule,
		&a.Reason,
		&a.Note,
		&a.CancellationReason,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Schedule = a.Schedule.UTC()
	return &a, nil
}

func (r *PgRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, appointmentID uuid.UUID, eventType string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, now())
	`, eventType, appointmentID, data)
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

// Interface methods

func (r *PgRepository) GetPatient(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, name, email, created_at, updated_at
		FROM patients
		WHERE user_id = $1
	`, userID)
	return scanPatient(row)
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListAppointmentsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		ORDER BY schedule DESC, id
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// CreateAppointment inserts the appointment and its APPOINTMENT_CREATED event
// in one transaction.
func (r *PgRepository) CreateAppointment(ctx context.Context, in NewAppointment) (*Appointment, error) {
	var created *Appointment

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO appointments (id, user_id, patient_id, primary_physician, schedule, reason, note, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			RETURNING `+appointmentColumns,
			uuid.New(), in.UserID, in.PatientID, in.PrimaryPhysician, in.Schedule, in.Reason, in.Note, in.Status)

		appt, err := scanAppointment(row)
		if err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
		created = appt

		return insertEvent(ctx, tx, appt.ID, EventAppointmentCreated, map[string]any{
			"patient_id":        in.PatientID.String(),
			"primary_physician": in.PrimaryPhysician,
			"schedule":          in.Schedule,
		})
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateAppointment applies the patch to an appointment owned by req.UserID.
// Patient and owner columns are never written.
func (r *PgRepository) UpdateAppointment(ctx context.Context, req UpdateRequest) (*Appointment, error) {
	p := req.Patch
	if !p.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}

	var updated *Appointment

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE appointments
			SET primary_physician   = COALESCE($3, primary_physician),
			    schedule            = COALESCE($4, schedule),
			    reason              = COALESCE($5, reason),
			    note                = COALESCE($6, note),
			    cancellation_reason = COALESCE($7, cancellation_reason),
			    status              = $8,
			    updated_at          = now()
			WHERE id = $1
			  AND user_id = $2
			RETURNING `+appointmentColumns,
			req.AppointmentID, req.UserID, p.PrimaryPhysician, p.Schedule, p.Reason, p.Note, p.CancellationReason, p.Status)

		appt, err := scanAppointment(row)
		if err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				return err
			}
			return fmt.Errorf("update appointment: %w", err)
		}
		updated = appt

		payload := map[string]any{"status": string(p.Status)}
		if p.CancellationReason != nil {
			payload["cancellation_reason"] = *p.CancellationReason
		}
		if p.PrimaryPhysician != nil {
			payload["primary_physician"] = *p.PrimaryPhysician
		}
		return insertEvent(ctx, tx, appt.ID, eventForIntent(req.Intent), payload)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func eventForIntent(intent Intent) string {
	switch intent {
	case IntentSchedule:
		return EventAppointmentScheduled
	case IntentCancel:
		return EventAppointmentCancelled
	}
	return EventAppointmentCreated
}
