package field

import (
	"fmt"
	"regexp"
	"sync"
)

const (
	// DatePattern accepts MM/DD/YYYY with a 19xx or 20xx year, e.g. 01/15/1980.
	DatePattern = `^(0[1-9]|1[012])[/](0[1-9]|[12][0-9]|3[01])[/](19|20)\d\d$`
	// SSNPattern accepts exactly nine digits, e.g. 123456789.
	SSNPattern = `^\d{9}$`
	// StatePattern accepts a two letter state code in any case, e.g. ny, NY.
	StatePattern = `^[A-Za-z]{2}$`
)

var (
	dateRe  = regexp.MustCompile(DatePattern)
	ssnRe   = regexp.MustCompile(SSNPattern)
	stateRe = regexp.MustCompile(StatePattern)

	patternCache sync.Map // string -> *regexp.Regexp
)

// IsDate reports whether value is a well-formed MM/DD/YYYY date.
func IsDate(value string) bool { return dateRe.MatchString(value) }

// IsSSN reports whether value is exactly nine digits.
func IsSSN(value string) bool { return ssnRe.MatchString(value) }

// IsState reports whether value is a two letter state code.
func IsState(value string) bool { return stateRe.MatchString(value) }

// Pattern returns the pattern a descriptor is validated against, or "" when
// the descriptor has none.
func Pattern(d Descriptor) string {
	switch f := d.(type) {
	case Text:
		return f.Pattern
	case Date:
		return DatePattern
	case SSN:
		return SSNPattern
	default:
		return ""
	}
}

// CompilePattern compiles and caches a pattern. Patterns are tested like a
// browser RegExp.test call: unanchored unless the expression anchors itself.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("field: compile pattern %q: %w", pattern, err)
	}
	actual, _ := patternCache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}
