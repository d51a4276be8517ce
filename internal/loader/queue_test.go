package loader

import (
	"fmt"
	"testing"
)

func TestQueueUrgentBeforeBackground(t *testing.T) {
	q := newRequestQueue(10)

	q.pushBackground(Request{Path: "bg1", Thumbnail: true})
	q.pushBackground(Request{Path: "bg2", Thumbnail: true})
	q.pushUrgent(Request{Path: "urgent"})

	r, ok := q.pop()
	if !ok || r.Path != "urgent" {
		t.Fatalf("First pop = %q, want the urgent request", r.Path)
	}
	// Background work only once the urgent lane is drained.
	if r, _ := q.pop(); r.Path != "bg2" {
		t.Errorf("Second pop = %q, want bg2", r.Path)
	}
}

func TestQueueUrgentIsFIFO(t *testing.T) {
	q := newRequestQueue(10)

	for i := 1; i <= 3; i++ {
		q.pushUrgent(Request{Path: fmt.Sprintf("u%d", i)})
	}

	for i := 1; i <= 3; i++ {
		r, ok := q.pop()
		if !ok || r.Path != fmt.Sprintf("u%d", i) {
			t.Errorf("Pop %d = %q, want u%d", i, r.Path, i)
		}
	}
}

func TestQueueBackgroundIsLIFO(t *testing.T) {
	q := newRequestQueue(10)

	for i := 1; i <= 3; i++ {
		q.pushBackground(Request{Path: fmt.Sprintf("b%d", i), Thumbnail: true})
	}

	for i := 3; i >= 1; i-- {
		r, ok := q.pop()
		if !ok || r.Path != fmt.Sprintf("b%d", i) {
			t.Errorf("Pop = %q, want b%d", r.Path, i)
		}
	}
}

func TestQueueBackgroundOverflowDropsOldest(t *testing.T) {
	q := newRequestQueue(3)

	for i := 1; i <= 5; i++ {
		q.pushBackground(Request{Path: fmt.Sprintf("b%d", i), Thumbnail: true})
	}

	if _, depth := q.depths(); depth != 3 {
		t.Fatalf("Background depth = %d, want 3", depth)
	}
	// Each drop is counted: nothing else accounts for the vanished requests.
	if got := q.supersededCount(); got != 2 {
		t.Errorf("supersededCount() = %d, want 2", got)
	}

	// b1 and b2 were dropped as oldest; the newest is always retained.
	want := []string{"b5", "b4", "b3"}
	for _, w := range want {
		r, ok := q.pop()
		if !ok || r.Path != w {
			t.Errorf("Pop = %q, want %q", r.Path, w)
		}
	}
	if _, ok := q.pop(); ok {
		t.Error("Queue should be empty after draining")
	}
}

func TestQueuePopEmpty(t *testing.T) {
	q := newRequestQueue(10)
	if _, ok := q.pop(); ok {
		t.Error("pop() on an empty queue should report no work")
	}
}

func TestQueueWakeSignalCoalesces(t *testing.T) {
	q := newRequestQueue(10)

	// Many pushes must not block even though nobody is draining wake.
	for i := 0; i < 100; i++ {
		q.pushUrgent(Request{Path: "u"})
	}

	select {
	case <-q.wake:
	default:
		t.Error("A pending wake signal should be available after pushes")
	}
	select {
	case <-q.wake:
		t.Error("Wake signals should coalesce to at most one")
	default:
	}
}
