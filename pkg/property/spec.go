package property

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/dna-dev/dna/internal/errors"
)

// Type is the declared value type of a property. It drives default values
// and attribute conversion.
type Type uint8

const (
	Any Type = iota
	String
	Int
	Float
	Bool
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	default:
		return "any"
	}
}

// Spec declares one property of an element type.
type Spec struct {
	// Name identifies the property. Unique per element type.
	Name string

	// Type is the declared value type.
	Type Type

	// Attribute is the name of the backing attribute. Empty means the
	// property is not attribute-backed.
	Attribute string

	// Reflect writes property changes back to Attribute.
	Reflect bool

	// State marks internal state: changes also run StateChanged.
	State bool

	// Default is the initial value. Nil means the zero value of Type.
	Default any

	// Equal overrides the equality rule used to detect changes.
	Equal func(a, b any) bool

	// FromAttribute overrides attribute-to-value conversion.
	// value is nil when the attribute was removed.
	FromAttribute func(value *string) (any, error)

	// ToAttribute overrides value-to-attribute conversion.
	// A nil result removes the attribute.
	ToAttribute func(value any) *string
}

// InitialValue returns the value a fresh store holds for the property.
func (s Spec) InitialValue() any {
	if s.Default != nil {
		return s.Default
	}
	switch s.Type {
	case String:
		return ""
	case Int:
		return 0
	case Float:
		return 0.0
	case Bool:
		return false
	default:
		return nil
	}
}

// Equals reports whether a and b are equal under the property's rule.
func (s Spec) Equals(a, b any) bool {
	if s.Equal != nil {
		return s.Equal(a, b)
	}
	return DefaultEquals(a, b)
}

// DefaultEquals uses == for comparable scalars and reflect.DeepEqual otherwise.
func DefaultEquals(a, b any) bool {
	switch a.(type) {
	case nil:
		return b == nil
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, string, bool:
		return a == b
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Coerce converts value to the declared type where a lossless conversion
// exists. Values of other types are returned unchanged for Any.
func (s Spec) Coerce(value any) (any, error) {
	if value == nil {
		return s.InitialValue(), nil
	}
	switch s.Type {
	case String:
		if v, ok := value.(string); ok {
			return v, nil
		}
		return fmt.Sprint(value), nil
	case Int:
		switch v := value.(type) {
		case int:
			return v, nil
		case int8:
			return int(v), nil
		case int16:
			return int(v), nil
		case int32:
			return int(v), nil
		case int64:
			return int(v), nil
		case uint8:
			return int(v), nil
		case uint16:
			return int(v), nil
		case uint32:
			return int(v), nil
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
		case string:
			return s.parse(v)
		}
	case Float:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			return s.parse(v)
		}
	case Bool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return s.parse(v)
		}
	default:
		return value, nil
	}
	return nil, errors.New(errors.CodeAttributeCast).
		WithSubject(s.Name).
		WithDetail(fmt.Sprintf("A %T value cannot be stored in a %s property.", value, s.Type))
}

// FromAttr converts an attribute value into a property value.
// A removed attribute (nil) yields false for Bool and the initial value
// otherwise. A present Bool attribute is true unless it reads "false".
func (s Spec) FromAttr(value *string) (any, error) {
	if s.FromAttribute != nil {
		return s.FromAttribute(value)
	}
	if value == nil {
		if s.Type == Bool {
			return false, nil
		}
		return s.InitialValue(), nil
	}
	return s.parse(*value)
}

func (s Spec) parse(raw string) (any, error) {
	var (
		v   any
		err error
	)
	switch s.Type {
	case Int:
		v, err = strconv.Atoi(raw)
	case Float:
		v, err = strconv.ParseFloat(raw, 64)
	case Bool:
		v = raw != "false"
	default:
		v = raw
	}
	if err != nil {
		return nil, errors.New(errors.CodeAttributeCast).WithSubject(s.Name).Wrap(err)
	}
	return v, nil
}

// ToAttr converts a property value into an attribute value.
// A nil result means the attribute should be removed.
func (s Spec) ToAttr(value any) *string {
	if s.ToAttribute != nil {
		return s.ToAttribute(value)
	}
	var out string
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		if !v {
			return nil
		}
	case string:
		out = v
	case int:
		out = strconv.Itoa(v)
	case float64:
		out = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		out = fmt.Sprint(v)
	}
	return &out
}
