package loan

import (
	"testing"
	"time"
)

func TestState_Terminal(t *testing.T) {
	cases := map[State]bool{
		StatePending:  false,
		StateApproved: true,
		StateDeclined: true,
	}
	for s, want := range cases {
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal()=%v want %v", s, got, want)
		}
	}
}

func TestDueDate_TwoMonths(t *testing.T) {
	l := &Loan{DateRequested: time.Date(2022, 8, 6, 0, 0, 0, 0, time.UTC)}
	want := time.Date(2022, 10, 6, 0, 0, 0, 0, time.UTC)
	if got := l.DueDate(); !got.Equal(want) {
		t.Fatalf("DueDate=%v want %v", got, want)
	}
}
