package filter

import (
	"testing"

	"github.com/asv/lox/group"
)

func TestConsultMarksSeen(t *testing.T) {
	f := NewMemory()
	s := group.FromUint64(7)

	status, err := f.Check(s)
	if err != nil || status != Fresh {
		t.Fatalf("Check: got (%v, %v), want (Fresh, nil)", status, err)
	}

	status, err = f.Consult(s)
	if err != nil || status != Fresh {
		t.Fatalf("first Consult: got (%v, %v), want (Fresh, nil)", status, err)
	}

	status, err = f.Consult(s)
	if err != nil || status != Seen {
		t.Fatalf("second Consult: got (%v, %v), want (Seen, nil)", status, err)
	}
}

func TestHistoryRotate(t *testing.T) {
	h := NewHistory(NewMemory())
	s := group.FromUint64(1)
	if _, err := h.Current().Consult(s); err != nil {
		t.Fatalf("Consult: %v", err)
	}

	h.Rotate(NewMemory())
	if h.Generations() != 1 {
		t.Fatalf("Generations = %d, want 1", h.Generations())
	}

	retired, err := h.Retired(0)
	if err != nil {
		t.Fatalf("Retired: %v", err)
	}
	status, err := retired.Check(s)
	if err != nil || status != Seen {
		t.Fatalf("retired filter lost history: got (%v, %v)", status, err)
	}

	status, err = h.Current().Check(s)
	if err != nil || status != Fresh {
		t.Fatalf("new current filter should be fresh: got (%v, %v)", status, err)
	}
}
