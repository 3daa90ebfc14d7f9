package components

// Component names of the default registry, one per field kind.
const (
	NameText   = "text"
	NameDate   = "date"
	NameSSN    = "ssn"
	NameSelect = "select"
	NameBinary = "binary"
)
