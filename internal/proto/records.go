package proto

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// ErrMalformed is returned when a message lacks a field or has the wrong kind.
var ErrMalformed = errors.New("malformed message")

// Field names shared by every message.
const (
	FieldID            = "id"
	FieldActivityType  = "tipo_atividade"
	FieldDescription   = "descricao"
	FieldStartedAt     = "inicio"
	FieldEndedAt       = "fim"
	FieldUserID        = "user_id"
	FieldYear          = "ano"
	FieldMonth         = "mes"
	FieldDay           = "dia"
	FieldDurationHours = "horas_trabalhadas"
	FieldLimit         = "limit"
	FieldSession       = "session"
	FieldSessions      = "sessions"
	FieldKey           = "key"
	FieldURL           = "url"
	FieldRows          = "rows"
)

// TimeLayout is the text form of instants on the wire.
const TimeLayout = time.RFC3339Nano

// SessionRecord is the wire form of one row of atividades.
type SessionRecord struct {
	ID            int64
	UserID        string
	ActivityType  string
	Description   string
	StartedAt     time.Time
	EndedAt       *time.Time
	DurationHours *float64
	Year          int
	Month         int
	Day           int
}

// ToStruct encodes r. Absent EndedAt and DurationHours become null.
func (r SessionRecord) ToStruct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		FieldID:            structpb.NewNumberValue(float64(r.ID)),
		FieldUserID:        structpb.NewStringValue(r.UserID),
		FieldActivityType:  structpb.NewStringValue(r.ActivityType),
		FieldDescription:   structpb.NewStringValue(r.Description),
		FieldStartedAt:     structpb.NewStringValue(r.StartedAt.Format(TimeLayout)),
		FieldEndedAt:       structpb.NewNullValue(),
		FieldDurationHours: structpb.NewNullValue(),
		FieldYear:          structpb.NewNumberValue(float64(r.Year)),
		FieldMonth:         structpb.NewNumberValue(float64(r.Month)),
		FieldDay:           structpb.NewNumberValue(float64(r.Day)),
	}
	if r.EndedAt != nil {
		fields[FieldEndedAt] = structpb.NewStringValue(r.EndedAt.Format(TimeLayout))
	}
	if r.DurationHours != nil {
		fields[FieldDurationHours] = structpb.NewNumberValue(*r.DurationHours)
	}
	return &structpb.Struct{Fields: fields}
}

// SessionRecordFromStruct decodes a message produced by ToStruct.
func SessionRecordFromStruct(s *structpb.Struct) (SessionRecord, error) {
	var (
		r   SessionRecord
		err error
	)
	if r.ID, err = Int(s, FieldID); err != nil {
		return r, err
	}
	if r.UserID, err = String(s, FieldUserID); err != nil {
		return r, err
	}
	if r.ActivityType, err = String(s, FieldActivityType); err != nil {
		return r, err
	}
	if r.Description, err = OptionalString(s, FieldDescription); err != nil {
		return r, err
	}
	if r.StartedAt, err = Time(s, FieldStartedAt); err != nil {
		return r, err
	}
	if r.EndedAt, err = OptionalTime(s, FieldEndedAt); err != nil {
		return r, err
	}
	if r.DurationHours, err = OptionalNumber(s, FieldDurationHours); err != nil {
		return r, err
	}
	year, err := Int(s, FieldYear)
	if err != nil {
		return r, err
	}
	month, err := Int(s, FieldMonth)
	if err != nil {
		return r, err
	}
	day, err := Int(s, FieldDay)
	if err != nil {
		return r, err
	}
	r.Year, r.Month, r.Day = int(year), int(month), int(day)
	return r, nil
}

// SessionListToStruct wraps records under "sessions".
func SessionListToStruct(records []SessionRecord) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(records))
	for _, r := range records {
		values = append(values, structpb.NewStructValue(r.ToStruct()))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldSessions: structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}

// SessionListFromStruct unwraps a message produced by SessionListToStruct.
func SessionListFromStruct(s *structpb.Struct) ([]SessionRecord, error) {
	v, ok := s.GetFields()[FieldSessions]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformed, FieldSessions)
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: %q is not a list", ErrMalformed, FieldSessions)
	}

	out := make([]SessionRecord, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		st := item.GetStructValue()
		if st == nil {
			return nil, fmt.Errorf("%w: %s[%d] is not an object", ErrMalformed, FieldSessions, i)
		}
		r, err := SessionRecordFromStruct(st)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", FieldSessions, i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// OptionalSessionToStruct wraps r under "session"; nil becomes null.
func OptionalSessionToStruct(r *SessionRecord) *structpb.Struct {
	v := structpb.NewNullValue()
	if r != nil {
		v = structpb.NewStructValue(r.ToStruct())
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{FieldSession: v}}
}

// OptionalSessionFromStruct unwraps a message produced by OptionalSessionToStruct.
func OptionalSessionFromStruct(s *structpb.Struct) (*SessionRecord, error) {
	v, ok := s.GetFields()[FieldSession]
	if !ok || isNull(v) {
		return nil, nil
	}
	st := v.GetStructValue()
	if st == nil {
		return nil, fmt.Errorf("%w: %q is not an object", ErrMalformed, FieldSession)
	}
	r, err := SessionRecordFromStruct(st)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func field(s *structpb.Struct, name string) (*structpb.Value, error) {
	v, ok := s.GetFields()[name]
	if !ok || isNull(v) {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformed, name)
	}
	return v, nil
}

func isNull(v *structpb.Value) bool {
	_, null := v.GetKind().(*structpb.Value_NullValue)
	return v == nil || v.GetKind() == nil || null
}

// String returns the required string field name.
func String(s *structpb.Struct, name string) (string, error) {
	v, err := field(s, name)
	if err != nil {
		return "", err
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", ErrMalformed, name)
	}
	return sv.StringValue, nil
}

// OptionalString returns the string field name or "" when absent.
func OptionalString(s *structpb.Struct, name string) (string, error) {
	if v, ok := s.GetFields()[name]; !ok || isNull(v) {
		return "", nil
	}
	return String(s, name)
}

// MaxSafeInt is the largest integer a Struct number carries exactly.
const MaxSafeInt = 1 << 53

// Int returns the required integral number field name. Values beyond
// ±MaxSafeInt are rejected since they may have lost precision on the wire.
func Int(s *structpb.Struct, name string) (int64, error) {
	v, err := field(s, name)
	if err != nil {
		return 0, err
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformed, name)
	}
	f := nv.NumberValue
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformed, name)
	}
	if math.Abs(f) > MaxSafeInt {
		return 0, fmt.Errorf("%w: %q is out of range", ErrMalformed, name)
	}
	return int64(f), nil
}

// OptionalNumber returns the number field name or nil when absent.
func OptionalNumber(s *structpb.Struct, name string) (*float64, error) {
	v, ok := s.GetFields()[name]
	if !ok || isNull(v) {
		return nil, nil
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a number", ErrMalformed, name)
	}
	f := nv.NumberValue
	return &f, nil
}

// Time returns the required instant field name.
func Time(s *structpb.Struct, name string) (time.Time, error) {
	str, err := String(s, name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(TimeLayout, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrMalformed, name, err)
	}
	return t, nil
}

// OptionalTime returns the instant field name or nil when absent.
func OptionalTime(s *structpb.Struct, name string) (*time.Time, error) {
	if v, ok := s.GetFields()[name]; !ok || isNull(v) {
		return nil, nil
	}
	t, err := Time(s, name)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
