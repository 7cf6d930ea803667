package xrm

// Enum constrains the generated option set enum types.
type Enum interface {
	~int32
}

// GetEnum returns an option set attribute as an enum value, or nil.
func GetEnum[T Enum](e *Entity, name string) *T {
	v := GetAttributeValue[*OptionSetValue](e, name)
	if v == nil {
		return nil
	}
	out := T(v.Value)
	return &out
}

// SetEnum stores an enum value as an option set attribute. A nil value
// clears the attribute.
func SetEnum[T Enum](e *Entity, name string, v *T) {
	if v == nil {
		e.SetAttributeValue(name, nil)
		return
	}
	e.SetAttributeValue(name, &OptionSetValue{Value: int32(*v)})
}

// GetMultiEnum returns a multi-select attribute as enum values.
func GetMultiEnum[T Enum](e *Entity, name string) []T {
	vs := GetAttributeValue[OptionSetValueCollection](e, name)
	if vs == nil {
		return nil
	}
	out := make([]T, 0, len(vs))
	for _, v := range vs {
		if v != nil {
			out = append(out, T(v.Value))
		}
	}
	return out
}

// SetMultiEnum stores enum values as a multi-select attribute. A nil slice
// clears the attribute.
func SetMultiEnum[T Enum](e *Entity, name string, vs []T) {
	if vs == nil {
		e.SetAttributeValue(name, nil)
		return
	}
	e.SetAttributeValue(name, MultiEnumValue(vs))
}

// MultiEnumValue converts enum values into a multi-select attribute value.
func MultiEnumValue[T Enum](vs []T) OptionSetValueCollection {
	if vs == nil {
		return nil
	}
	out := make(OptionSetValueCollection, len(vs))
	for i, v := range vs {
		out[i] = &OptionSetValue{Value: int32(v)}
	}
	return out
}

// OptionValue returns the integer value of an option set attribute, or nil.
func OptionValue(e *Entity, name string) *int32 {
	v := GetAttributeValue[*OptionSetValue](e, name)
	if v == nil {
		return nil
	}
	out := v.Value
	return &out
}
