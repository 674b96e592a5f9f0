package tempoapi

import (
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// KeyValue is a single span, scope or resource attribute.
type KeyValue struct {
	Key   string   `json:"key"`
	Value AnyValue `json:"value"`
}

// AnyValueType defines which variant of [AnyValue] is set.
type AnyValueType uint8

// Possible [AnyValue] variants.
const (
	EmptyValue AnyValueType = iota
	StringValue
	IntValue
	DoubleValue
	BoolValue
)

// AnyValue is an attribute value. Exactly one variant is populated.
type AnyValue struct {
	Type   AnyValueType
	Str    string
	Int    int64
	Double float64
	Bool   bool
}

// NewStringValue creates a string AnyValue.
func NewStringValue(v string) AnyValue { return AnyValue{Type: StringValue, Str: v} }

// NewIntValue creates an integer AnyValue.
func NewIntValue(v int64) AnyValue { return AnyValue{Type: IntValue, Int: v} }

// NewDoubleValue creates a floating-point AnyValue.
func NewDoubleValue(v float64) AnyValue { return AnyValue{Type: DoubleValue, Double: v} }

// NewBoolValue creates a boolean AnyValue.
func NewBoolValue(v bool) AnyValue { return AnyValue{Type: BoolValue, Bool: v} }

// IsZero reports whether no variant is populated.
func (v AnyValue) IsZero() bool { return v.Type == EmptyValue }

// AsString stringifies the populated variant. Returns "" for an empty value.
func (v AnyValue) AsString() string {
	switch v.Type {
	case StringValue:
		return v.Str
	case IntValue:
		return strconv.FormatInt(v.Int, 10)
	case DoubleValue:
		return strconv.FormatFloat(v.Double, 'f', -1, 64)
	case BoolValue:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// Encode writes the OTLP JSON form of the value.
func (v AnyValue) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		switch v.Type {
		case StringValue:
			e.FieldStart("stringValue")
			e.Str(v.Str)
		case IntValue:
			// int64 is string-encoded in OTLP JSON.
			e.FieldStart("intValue")
			e.Str(strconv.FormatInt(v.Int, 10))
		case DoubleValue:
			e.FieldStart("doubleValue")
			e.Float64(v.Double)
		case BoolValue:
			e.FieldStart("boolValue")
			e.Bool(v.Bool)
		}
	})
}

// Decode reads the OTLP JSON form of the value.
func (v *AnyValue) Decode(d *jx.Decoder) error {
	*v = AnyValue{}
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "stringValue":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "stringValue")
			}
			*v = NewStringValue(s)
		case "intValue":
			i, err := decodeInt64(d)
			if err != nil {
				return errors.Wrap(err, "intValue")
			}
			*v = NewIntValue(i)
		case "doubleValue":
			f, err := d.Float64()
			if err != nil {
				return errors.Wrap(err, "doubleValue")
			}
			*v = NewDoubleValue(f)
		case "boolValue":
			b, err := d.Bool()
			if err != nil {
				return errors.Wrap(err, "boolValue")
			}
			*v = NewBoolValue(b)
		default:
			return d.Skip()
		}
		return nil
	})
}

// MarshalJSON implements json.Marshaler.
func (v AnyValue) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	v.Encode(&e)
	return e.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *AnyValue) UnmarshalJSON(data []byte) error {
	return v.Decode(jx.DecodeBytes(data))
}

func decodeInt64(d *jx.Decoder) (int64, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		return strconv.ParseInt(s, 10, 64)
	default:
		return d.Int64()
	}
}
