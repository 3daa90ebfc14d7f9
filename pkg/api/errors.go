package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/goliatone/go-stepform/pkg/submit"
)

// DecodeError turns a failed response into a *submit.RequestError. A body
// with an "error" or "detail" string becomes the general message; any other
// JSON object is read as field name to messages. Bodies that are not JSON
// objects fall back to the HTTP status text.
func DecodeError(resp *http.Response) *submit.RequestError {
	reqErr := &submit.RequestError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		reqErr.General = http.StatusText(resp.StatusCode)
		return reqErr
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil || payload == nil {
		reqErr.General = http.StatusText(resp.StatusCode)
		return reqErr
	}

	for _, key := range []string{"error", "detail"} {
		if message, ok := payload[key].(string); ok && strings.TrimSpace(message) != "" {
			reqErr.General = message
			return reqErr
		}
	}

	validation := make(map[string][]string, len(payload))
	flattenMessages("", payload, validation)
	if len(validation) > 0 {
		reqErr.Validation = validation
	}
	return reqErr
}

// flattenMessages walks nested error objects, joining keys with dots, e.g.
// {"address": {"zip": ["bad"]}} becomes "address.zip".
func flattenMessages(prefix string, value any, dest map[string][]string) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			flattenMessages(joinKey(prefix, key), v[key], dest)
		}
	case []any:
		for _, item := range v {
			switch item.(type) {
			case map[string]any:
				flattenMessages(prefix, item, dest)
			default:
				appendMessage(prefix, item, dest)
			}
		}
	default:
		appendMessage(prefix, v, dest)
	}
}

func appendMessage(key string, value any, dest map[string][]string) {
	if value == nil {
		return
	}
	var message string
	switch v := value.(type) {
	case string:
		message = v
	default:
		message = fmt.Sprint(v)
	}
	if strings.TrimSpace(message) == "" {
		return
	}
	dest[key] = append(dest[key], message)
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
