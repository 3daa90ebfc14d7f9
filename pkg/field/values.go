package field

import (
	"fmt"
	"strconv"
)

// Values maps field names to collected answers. Text-like fields hold
// strings, binary fields hold booleans.
type Values map[string]any

// Merge copies every entry of other into v, overwriting existing keys.
func (v Values) Merge(other Values) {
	for key, value := range other {
		v[key] = value
	}
}

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// String returns the value stored under name formatted as a string.
func (v Values) String(name string) string {
	switch value := v[name].(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		return fmt.Sprint(value)
	}
}

// Bool reports a binary answer; string answers "true"/"false" are accepted.
func (v Values) Bool(name string) (bool, bool) {
	switch value := v[name].(type) {
	case bool:
		return value, true
	case string:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

// Form flattens the values into string pairs for form encoding.
func (v Values) Form() map[string]string {
	out := make(map[string]string, len(v))
	for key := range v {
		out[key] = v.String(key)
	}
	return out
}
