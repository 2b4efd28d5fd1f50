package middleware

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"atm-ledger/internal/domain/account"

	"github.com/google/uuid"
)

const (
	HeaderRequestID     = "Ax-Request-Id"
	HeaderRequestAt     = "Ax-Request-At"
	HeaderAccountNumber = "Ax-Account-Number"

	// Allowed distance between Ax-Request-At and the server clock.
	maxClockSkew = 10 * time.Minute
)

// requestMeta is what a mutating client request must declare about itself.
type requestMeta struct {
	ID      string
	At      time.Time
	Account string
}

type headerError struct {
	header  string
	problem string
}

func (e *headerError) Error() string { return e.problem + " " + e.header }

func readMeta(h http.Header, now time.Time) (requestMeta, error) {
	var m requestMeta

	m.ID = strings.TrimSpace(h.Get(HeaderRequestID))
	if m.ID == "" {
		return m, &headerError{HeaderRequestID, "missing"}
	}
	if !validRequestID(m.ID) {
		return m, &headerError{HeaderRequestID, "malformed"}
	}

	rawAt := strings.TrimSpace(h.Get(HeaderRequestAt))
	if rawAt == "" {
		return m, &headerError{HeaderRequestAt, "missing"}
	}
	at, ok := parseRequestAt(rawAt)
	if !ok {
		return m, &headerError{HeaderRequestAt, "malformed"}
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return m, &headerError{HeaderRequestAt, "skewed"}
	}
	m.At = at

	m.Account = strings.TrimSpace(h.Get(HeaderAccountNumber))
	if m.Account == "" {
		return m, &headerError{HeaderAccountNumber, "missing"}
	}
	if !account.ValidNumber(m.Account) {
		return m, &headerError{HeaderAccountNumber, "malformed"}
	}
	return m, nil
}

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// validRequestID accepts a lowercase RFC 4122 UUID (versions 1-5) or 32 lowercase hex chars.
func validRequestID(id string) bool {
	if id != strings.ToLower(id) {
		return false
	}
	switch len(id) {
	case 32:
		return reHex32.MatchString(id)
	case 36:
		u, err := uuid.Parse(id)
		if err != nil || u.Variant() != uuid.RFC4122 {
			return false
		}
		v := u.Version()
		return v >= 1 && v <= 5
	}
	return false
}

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC 3339 with
// an explicit zone. Timestamps without a zone are rejected.
func parseRequestAt(raw string) (time.Time, bool) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
