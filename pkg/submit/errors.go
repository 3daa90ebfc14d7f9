package submit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInFlight is returned when Submit is called while a previous submission
// has not finished.
var ErrInFlight = errors.New("submit: submission already in flight")

// GenericMessage is shown when a request fails without a usable message.
const GenericMessage = "Whoops, something went wrong. Please try again."

// RequestError is the failure outcome of a backend call. General carries an
// opaque message, Validation per-field messages. Both are optional and
// independent.
type RequestError struct {
	Status     int
	General    string
	Validation map[string][]string
}

func (e *RequestError) Error() string {
	if e == nil {
		return "submit: request failed"
	}
	var parts []string
	if e.General != "" {
		parts = append(parts, e.General)
	}
	if len(e.Validation) > 0 {
		names := make([]string, 0, len(e.Validation))
		for name := range e.Validation {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Validation[name], "; ")))
		}
	}
	if len(parts) == 0 {
		if e.Status > 0 {
			return fmt.Sprintf("submit: request failed with status %d", e.Status)
		}
		return "submit: request failed"
	}
	return "submit: " + strings.Join(parts, ", ")
}

// HasGeneral reports whether a general message is present.
func (e *RequestError) HasGeneral() bool {
	return e != nil && strings.TrimSpace(e.General) != ""
}

// HasValidation reports whether any per-field message is present.
func (e *RequestError) HasValidation() bool {
	if e == nil {
		return false
	}
	for _, messages := range e.Validation {
		if len(messages) > 0 {
			return true
		}
	}
	return false
}

// AsRequestError extracts a *RequestError from err. Errors of any other type
// are converted into a general failure so callers always have something to
// display.
func AsRequestError(err error) *RequestError {
	if err == nil {
		return nil
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr != nil {
		return reqErr
	}
	return &RequestError{General: err.Error()}
}
