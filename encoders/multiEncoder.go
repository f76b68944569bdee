package encoders

import (
	"fmt"
)

//A named input field and its encoder
type Field struct {
	Name    string
	Encoder Encoder
}

/*
 Encodes multivariable input by concatenating the encodings of its fields
in field order.
*/
type MultiEncoder struct {
	fields  []Field
	offsets []int
	width   int
	active  int
}

func NewMultiEncoder(fields ...Field) (*MultiEncoder, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("encoders: multi encoder needs at least one field")
	}
	me := &MultiEncoder{}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Encoder == nil {
			return nil, fmt.Errorf("encoders: field %q has no encoder", f.Name)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("encoders: duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		me.fields = append(me.fields, f)
		me.offsets = append(me.offsets, me.width)
		me.width += f.Encoder.Width()
		me.active += f.Encoder.ActiveBits()
	}
	return me, nil
}

func (me *MultiEncoder) Name() string {
	return "multi"
}

func (me *MultiEncoder) Width() int {
	return me.width
}

func (me *MultiEncoder) ActiveBits() int {
	return me.active
}

func (me *MultiEncoder) Fields() []Field {
	return me.fields
}

//Encoder of a field and its bit offset
func (me *MultiEncoder) Field(name string) (Encoder, int, bool) {
	for i, f := range me.fields {
		if f.Name == name {
			return f.Encoder, me.offsets[i], true
		}
	}
	return nil, 0, false
}

/*
 Encodes a map from field name to value. Every field must be present, extra
keys are ignored.
*/
func (me *MultiEncoder) Encode(value interface{}) ([]bool, error) {
	values, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrValueType, value)
	}

	output := make([]bool, 0, me.width)
	for _, f := range me.fields {
		v, ok := values[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrValueType, f.Name)
		}
		encoded, err := f.Encoder.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		output = append(output, encoded...)
	}
	return output, nil
}

func (me *MultiEncoder) BucketIndex(value interface{}) (int, error) {
	return 0, ErrNoBuckets
}
