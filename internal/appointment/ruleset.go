package appointment

import (
	"errors"
	"fmt"
)

var ErrUnsupportedIntent = errors.New("unsupported intent")

// Field is a form field name. The names are shared by input and error keys.
type Field string

const (
	FieldPrimaryPhysician   Field = "primaryPhysician"
	FieldSchedule           Field = "schedule"
	FieldReason             Field = "reason"
	FieldNote               Field = "note"
	FieldCancellationReason Field = "cancellationReason"
)

// Fields lists every form field in display order.
var Fields = []Field{
	FieldPrimaryPhysician,
	FieldSchedule,
	FieldReason,
	FieldNote,
	FieldCancellationReason,
}

// Presence is the policy for one field under one intent. The zero value is
// Forbidden, so a field a ruleset does not mention never reaches the output.
type Presence int

const (
	Forbidden Presence = iota
	Optional
	Required
)

func (p Presence) String() string {
	switch p {
	case Required:
		return "required"
	case Optional:
		return "optional"
	}
	return "forbidden"
}

type Kind int

const (
	KindText Kind = iota
	KindDate
	KindPhysician
)

const (
	minTextLen = 2
	maxTextLen = 500
)

type FieldRule struct {
	Presence Presence
	Kind     Kind
	MinLen   int
	MaxLen   int
}

// Ruleset is the validation policy for one intent.
type Ruleset struct {
	intent Intent
	rules  map[Field]FieldRule
}

func (r Ruleset) Intent() Intent { return r.intent }

func (r Ruleset) Rule(f Field) FieldRule { return r.rules[f] }

func required(kind Kind, minLen, maxLen int) FieldRule {
	return FieldRule{Presence: Required, Kind: kind, MinLen: minLen, MaxLen: maxLen}
}

func optional(kind Kind, minLen, maxLen int) FieldRule {
	return FieldRule{Presence: Optional, Kind: kind, MinLen: minLen, MaxLen: maxLen}
}

// SelectRuleset builds the ruleset for intent. A new value is returned on
// every call.
func SelectRuleset(intent Intent) (Ruleset, error) {
	switch intent {
	case IntentCreate:
		return Ruleset{intent: intent, rules: map[Field]FieldRule{
			FieldPrimaryPhysician: required(KindPhysician, 0, 0),
			FieldSchedule:         required(KindDate, 0, 0),
			FieldReason:           required(KindText, minTextLen, maxTextLen),
			FieldNote:             optional(KindText, 0, maxTextLen),
		}}, nil
	case IntentSchedule:
		return Ruleset{intent: intent, rules: map[Field]FieldRule{
			FieldPrimaryPhysician: required(KindPhysician, 0, 0),
			FieldSchedule:         required(KindDate, 0, 0),
			FieldReason:           optional(KindText, minTextLen, maxTextLen),
			FieldNote:             optional(KindText, 0, maxTextLen),
		}}, nil
	case IntentCancel:
		return Ruleset{intent: intent, rules: map[Field]FieldRule{
			FieldCancellationReason: required(KindText, minTextLen, maxTextLen),
		}}, nil
	}
	return Ruleset{}, fmt.Errorf("%w: %q", ErrUnsupportedIntent, intent)
}
