package field

import "strings"

// FormatDateInput converts a MM/DD/YYYY display value into the YYYY-MM-DD
// storage format. Values that do not have three "/" separated parts return "".
func FormatDateInput(value string) string {
	parts := strings.Split(value, "/")
	if len(parts) != 3 {
		return ""
	}
	return parts[2] + "-" + parts[0] + "-" + parts[1]
}

// FormatDateOutput converts a YYYY-MM-DD storage value into MM/DD/YYYY. An
// empty or malformed value returns "".
func FormatDateOutput(value string) string {
	if value == "" {
		return ""
	}
	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return ""
	}
	return parts[1] + "/" + parts[2] + "/" + parts[0]
}
