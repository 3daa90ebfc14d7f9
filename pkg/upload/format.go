package upload

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var sizeUnits = []string{"bytes", "kb", "mb", "gb", "tb"}

// BytesToSize renders a byte count with a 1024 based unit, rounded to the
// nearest whole unit, e.g. 1536 becomes "2 kb".
func BytesToSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	value := math.Round(float64(bytes) / math.Pow(1024, float64(i)))
	return fmt.Sprintf("%d %s", int64(value), sizeUnits[i])
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormattedDate renders a backend timestamp as M/D/YYYY without padding.
// Unparseable values yield "".
func FormattedDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
		}
	}
	return ""
}
