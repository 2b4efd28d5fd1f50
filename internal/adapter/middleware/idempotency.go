package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"atm-ledger/internal/logger"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	// How long a request may hold its id before the reservation lapses.
	provisionalLockTTL = 60 * time.Second
	storeTimeout       = 2 * time.Second
)

var clock = func() time.Time { return time.Now().UTC() }

type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// Idempotency replays the stored response when a mutating request repeats its
// Ax-Request-Id for the same account and route. Requests are keyed by account
// number, method, route and request id. Server errors are not recorded, so the
// client may retry with the same id.
func Idempotency(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	store := &replayStore{rdb: rdb, ttl: ttl, pendingTTL: provisionalLockTTL}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !mutating(req.Method) {
				return next(c)
			}

			meta, err := readMeta(req.Header, clock())
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable request body"})
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			sum := digest(body)
			key := replayKey(meta.Account, req.Method, c.Path(), meta.ID)

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			reserved, err := store.reserve(ctx, key, outcome{
				Pending:   true,
				Digest:    sum,
				RequestID: meta.ID,
				RequestAt: meta.At.UnixMilli(),
				StoredAt:  clock(),
			})
			if err != nil {
				logger.Error("idempotency reserve failed", err, logger.Fields{"key": key})
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !reserved {
				return replay(ctx, c, store, key, sum)
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be canceled
			done, cancelDone := context.WithTimeout(context.Background(), storeTimeout)
			defer cancelDone()

			if cw.status >= http.StatusInternalServerError {
				if err := store.release(done, key); err != nil {
					logger.Error("idempotency release failed", err, logger.Fields{"key": key})
				}
				return nil
			}
			err = store.complete(done, key, outcome{
				Status:    cw.status,
				Body:      cw.buf.Bytes(),
				Digest:    sum,
				RequestID: meta.ID,
				RequestAt: meta.At.UnixMilli(),
				StoredAt:  clock(),
			})
			if err != nil {
				logger.Error("idempotency save failed", err, logger.Fields{"key": key})
			}
			return nil
		}
	}
}

func replay(ctx context.Context, c echo.Context, store *replayStore, key, sum string) error {
	prev, err := store.lookup(ctx, key)
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error("idempotency lookup failed", err, logger.Fields{"key": key})
	}
	if prev.Digest != "" && prev.Digest != sum {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Ax-Request-Id reused with different body"})
	}
	if !prev.Pending && prev.Status != 0 {
		return c.Blob(prev.Status, echo.MIMEApplicationJSON, prev.Body)
	}
	return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
}
