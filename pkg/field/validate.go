package field

// Check determines the validity of a raw input value. A field is invalid when
// it is required and empty, or when it carries a pattern the value fails.
// Binary fields are never validated and always report Valid.
func Check(d Descriptor, value string) Validity {
	if _, ok := d.(Binary); ok {
		return Valid
	}
	if d.Base().Required && value == "" {
		return Invalid
	}
	pattern := Pattern(d)
	if pattern == "" {
		return Valid
	}
	re, err := CompilePattern(pattern)
	if err != nil || !re.MatchString(value) {
		return Invalid
	}
	return Valid
}

// StoredValue converts a validated raw value into the value reported upward:
// dates move to the storage format, everything else is kept verbatim.
func StoredValue(d Descriptor, value string) string {
	if _, ok := d.(Date); ok {
		return FormatDateInput(value)
	}
	return value
}

// DisplayValue converts a descriptor's initial value into what the control
// shows.
func DisplayValue(d Descriptor) string {
	initial := d.Base().Initial
	if _, ok := d.(Date); ok {
		return FormatDateOutput(initial)
	}
	return initial
}
