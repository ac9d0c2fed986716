package appointment

import (
	"time"
)

// RawFields is the unvalidated form state. A missing key means the field was
// not submitted.
type RawFields map[Field]string

// Record is a validated, normalized field set. Each intent has its own
// variant: CreateRecord, ScheduleRecord or CancelRecord.
type Record interface {
	Intent() Intent
	// Raw renders the record back into form fields.
	Raw() RawFields
	isRecord()
}

type CreateRecord struct {
	PrimaryPhysician string
	Schedule         time.Time
	Reason           string
	Note             *string
}

type ScheduleRecord struct {
	PrimaryPhysician string
	Schedule         time.Time
	Reason           *string
	Note             *string
}

type CancelRecord struct {
	CancellationReason string
}

func (CreateRecord) Intent() Intent   { return IntentCreate }
func (ScheduleRecord) Intent() Intent { return IntentSchedule }
func (CancelRecord) Intent() Intent   { return IntentCancel }

func (CreateRecord) isRecord()   {}
func (ScheduleRecord) isRecord() {}
func (CancelRecord) isRecord()   {}

func (r CreateRecord) Raw() RawFields {
	raw := RawFields{
		FieldPrimaryPhysician: r.PrimaryPhysician,
		FieldSchedule:         formatSchedule(r.Schedule),
		FieldReason:           r.Reason,
	}
	putOptional(raw, FieldNote, r.Note)
	return raw
}

func (r ScheduleRecord) Raw() RawFields {
	raw := RawFields{
		FieldPrimaryPhysician: r.PrimaryPhysician,
		FieldSchedule:         formatSchedule(r.Schedule),
	}
	putOptional(raw, FieldReason, r.Reason)
	putOptional(raw, FieldNote, r.Note)
	return raw
}

func (r CancelRecord) Raw() RawFields {
	return RawFields{FieldCancellationReason: r.CancellationReason}
}

func putOptional(raw RawFields, f Field, v *string) {
	if v != nil {
		raw[f] = *v
	}
}

func formatSchedule(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
