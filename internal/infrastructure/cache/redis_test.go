package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis_SelectsDB(t *testing.T) {
	s := miniredis.RunT(t)

	c, err := OpenRedis(context.Background(), s.Addr(), 2)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Set(ctx, "atm:probe", "1", time.Minute).Err(); err != nil {
		t.Fatalf("SET: %v", err)
	}
	s.Select(2)
	if got, _ := s.Get("atm:probe"); got != "1" {
		t.Fatalf("value not written to db 2, got %q", got)
	}
}

func TestOpenRedis_Unreachable(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	addr := s.Addr()
	s.Close()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		addr string
	}{
		{"unresolvable host", context.Background(), "not-a-real-host:6379"},
		{"closed server", context.Background(), addr},
		{"canceled context", cancelled, addr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := OpenRedis(tt.ctx, tt.addr, 0); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
