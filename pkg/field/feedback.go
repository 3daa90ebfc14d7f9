package field

// Feedback shown next to a control that failed validation.
const (
	RequiredMessage = "This field is required."
	DateMessage     = "Please check the date format."
	SSNMessage      = "Please enter a valid social security number."
)

// Feedback returns the client-side message for an invalid d. Dates and SSNs
// get a format hint; every other kind reports the required message.
func Feedback(d Descriptor) string {
	switch d.(type) {
	case Date:
		return DateMessage
	case SSN:
		return SSNMessage
	default:
		return RequiredMessage
	}
}
