package appointment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingField       = errors.New("missing field")
	ErrInvalidFieldFormat = errors.New("invalid field format")
)

// FieldError is a validation failure scoped to one field. It unwraps to
// ErrMissingField or ErrInvalidFieldFormat.
type FieldError struct {
	Field   Field
	Err     error
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e FieldError) Unwrap() error { return e.Err }

// FieldErrors holds every field failure of one validation pass.
type FieldErrors map[Field]FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, f := range Fields {
		if e, ok := fe[f]; ok {
			parts = append(parts, e.Error())
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Messages flattens the errors into field name -> message.
func (fe FieldErrors) Messages() map[string]string {
	out := make(map[string]string, len(fe))
	for f, e := range fe {
		out[string(f)] = e.Message
	}
	return out
}

func (fe FieldErrors) missing(f Field, msg string) {
	fe[f] = FieldError{Field: f, Err: ErrMissingField, Message: msg}
}

func (fe FieldErrors) invalid(f Field, msg string) {
	fe[f] = FieldError{Field: f, Err: ErrInvalidFieldFormat, Message: msg}
}

var scheduleLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseSchedule(s string) (time.Time, error) {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

type Validator struct {
	physicians PhysicianDirectory
	rules      *validator.Validate
}

// NewValidator returns a Validator checking physicians against dir. A nil
// dir falls back to DefaultRoster.
func NewValidator(dir PhysicianDirectory) *Validator {
	if dir == nil {
		dir = DefaultRoster()
	}
	return &Validator{
		physicians: dir,
		rules:      validator.New(),
	}
}

// Validate applies rs to raw. On success it returns the record variant for
// rs.Intent(); otherwise the error is a FieldErrors naming every bad field.
func (v *Validator) Validate(rs Ruleset, raw RawFields) (Record, error) {
	switch rs.Intent() {
	case IntentCreate, IntentSchedule, IntentCancel:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedIntent, rs.Intent())
	}

	errs := FieldErrors{}
	texts := map[Field]string{}
	dates := map[Field]time.Time{}

	for _, f := range Fields {
		rule := rs.Rule(f)
		if rule.Presence == Forbidden {
			continue
		}

		value, ok := raw[f]
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			if rule.Presence == Required {
				errs.missing(f, "is required")
			}
			continue
		}

		switch rule.Kind {
		case KindDate:
			t, err := parseSchedule(value)
			if err != nil {
				if rule.Presence == Required {
					errs.missing(f, "must be a valid date and time")
				} else {
					errs.invalid(f, "must be a valid date and time")
				}
				continue
			}
			dates[f] = t
		case KindPhysician:
			if !v.physicians.Known(value) {
				errs.invalid(f, "must be a known physician")
				continue
			}
			texts[f] = value
		default:
			if msg := v.checkLength(value, rule); msg != "" {
				errs.invalid(f, msg)
				continue
			}
			texts[f] = value
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	switch rs.Intent() {
	case IntentCreate:
		return CreateRecord{
			PrimaryPhysician: texts[FieldPrimaryPhysician],
			Schedule:         dates[FieldSchedule],
			Reason:           texts[FieldReason],
			Note:             optionalText(texts, FieldNote),
		}, nil
	case IntentSchedule:
		return ScheduleRecord{
			PrimaryPhysician: texts[FieldPrimaryPhysician],
			Schedule:         dates[FieldSchedule],
			Reason:           optionalText(texts, FieldReason),
			Note:             optionalText(texts, FieldNote),
		}, nil
	default:
		return CancelRecord{CancellationReason: texts[FieldCancellationReason]}, nil
	}
}

func (v *Validator) checkLength(value string, rule FieldRule) string {
	var tag, msg string
	switch {
	case rule.MinLen > 0 && rule.MaxLen > 0:
		tag = fmt.Sprintf("min=%d,max=%d", rule.MinLen, rule.MaxLen)
		msg = fmt.Sprintf("must be between %d and %d characters", rule.MinLen, rule.MaxLen)
	case rule.MaxLen > 0:
		tag = fmt.Sprintf("max=%d", rule.MaxLen)
		msg = fmt.Sprintf("must be at most %d characters", rule.MaxLen)
	case rule.MinLen > 0:
		tag = fmt.Sprintf("min=%d", rule.MinLen)
		msg = fmt.Sprintf("must be at least %d characters", rule.MinLen)
	default:
		return ""
	}
	if err := v.rules.Var(value, tag); err != nil {
		return msg
	}
	return ""
}

func optionalText(texts map[Field]string, f Field) *string {
	v, ok := texts[f]
	if !ok {
		return nil
	}
	return &v
}
