package modesync

import (
	"errors"
	"testing"

	"github.com/five82/modedeck/internal/modes"
)

func TestQueue_PreservesOrder(t *testing.T) {
	q := NewQueue(0)
	for i := 0; i < 3; i++ {
		if err := q.Enqueue(MutationRequest{Mode: modes.Regular, Index: i}); err != nil {
			t.Fatalf("Enqueue(%d) returned error: %v", i, err)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	q.Close()
	q.Close()

	want := 0
	for req := range q.Requests() {
		if req.Index != want {
			t.Fatalf("dequeued index %d, want %d", req.Index, want)
		}
		want++
	}
	if want != 3 {
		t.Fatalf("dequeued %d requests, want 3", want)
	}
	if err := q.Enqueue(MutationRequest{}); !errors.Is(err, ErrChannelUnavailable) {
		t.Fatalf("Enqueue after Close error = %v, want ErrChannelUnavailable", err)
	}
}
