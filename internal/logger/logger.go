// Package logger writes one-line structured application logs with sensitive keys masked.
package logger

import (
	"encoding/json"
	"log"
	"strings"
)

type Fields map[string]any

const mask = "******"

// Keys are compared lower-cased with '-' and '_' stripped.
var sensitiveKeys = map[string]struct{}{
	"pin":         {},
	"axpin":       {},
	"newpin":      {},
	"password":    {},
	"adminpass":   {},
	"fieldsecret": {},
}

func Info(message string, fields Fields) {
	log.Printf("INFO %s %s", message, fieldsJSON(fields))
}

func Warn(message string, fields Fields) {
	log.Printf("WARN %s %s", message, fieldsJSON(fields))
}

func Error(message string, err error, fields Fields) {
	base := Fields{}
	for k, v := range fields {
		base[k] = v
	}
	if err != nil {
		base["error"] = err.Error()
	}

	log.Printf("ERROR %s %s", message, fieldsJSON(base))
}

// Sanitize round-trips payload through JSON and masks every sensitive key at any depth.
func Sanitize(payload any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "<unavailable>"
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "<unavailable>"
	}

	return sanitizeValue(data)
}

func fieldsJSON(fields Fields) string {
	if fields == nil {
		fields = Fields{}
	}

	b, err := json.Marshal(Sanitize(fields))
	if err != nil {
		return `{}`
	}
	return string(b)
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			if isSensitiveKey(key) {
				out[key] = mask
				continue
			}
			out[key] = sanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, sanitizeValue(item))
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	r := strings.NewReplacer("-", "", "_", "")
	_, ok := sensitiveKeys[r.Replace(strings.ToLower(strings.TrimSpace(key)))]
	return ok
}
