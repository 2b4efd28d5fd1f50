package logger

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestSanitize_MasksNestedKeys(t *testing.T) {
	in := map[string]any{
		"account_number": "123123123",
		"Ax-Pin":         "123456",
		"nested": map[string]any{
			"pin":   "654321",
			"items": []any{map[string]any{"new_pin": "000000", "ok": 1}},
		},
	}
	out := Sanitize(in).(map[string]any)

	if out["Ax-Pin"] != mask {
		t.Fatalf("Ax-Pin not masked: %v", out["Ax-Pin"])
	}
	if out["account_number"] != "123123123" {
		t.Fatalf("account_number altered: %v", out["account_number"])
	}
	nested := out["nested"].(map[string]any)
	if nested["pin"] != mask {
		t.Fatalf("nested pin not masked")
	}
	item := nested["items"].([]any)[0].(map[string]any)
	if item["new_pin"] != mask || item["ok"] != float64(1) {
		t.Fatalf("array item not sanitized: %v", item)
	}
}

func TestSanitize_Unmarshalable(t *testing.T) {
	if got := Sanitize(make(chan int)); got != "<unavailable>" {
		t.Fatalf("want <unavailable>, got %v", got)
	}
}

func TestLevels(t *testing.T) {
	buf := captureLog(t)

	Info("deposit ok", Fields{"pin": "123456"})
	Warn("account locked", nil)
	Error("approve failed", errors.New("boom"), Fields{"loan_number": 1})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "INFO deposit ok ") || strings.Contains(lines[0], "123456") {
		t.Fatalf("info line: %q", lines[0])
	}
	if lines[1] != "WARN account locked {}" {
		t.Fatalf("warn line: %q", lines[1])
	}
	if !strings.Contains(lines[2], `"error":"boom"`) || !strings.Contains(lines[2], `"loan_number":1`) {
		t.Fatalf("error line: %q", lines[2])
	}
}
