package quill

import (
	"sync"
	"testing"
)

func TestTaskQueueDrainOrder(t *testing.T) {
	var q TaskQueue
	var got []int
	for i := range 3 {
		q.Post(func() { got = append(got, i) })
	}
	if q.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", q.Pending())
	}
	if n := q.Drain(); n != 3 {
		t.Errorf("Drain() = %d, want 3", n)
	}
	for i, v := range got {
		if v != i {
			t.Errorf("got[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestTaskQueuePostDuringDrain(t *testing.T) {
	var q TaskQueue
	ran := 0
	q.Post(func() {
		ran++
		q.Post(func() { ran++ })
	})
	q.Drain()
	if ran != 1 {
		t.Errorf("ran = %d after first Drain, want 1", ran)
	}
	q.Drain()
	if ran != 2 {
		t.Errorf("ran = %d after second Drain, want 2", ran)
	}
}

func TestTaskQueueConcurrentPost(t *testing.T) {
	var q TaskQueue
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.Post(func() {})
			}
		}()
	}
	wg.Wait()
	if n := q.Drain(); n != 800 {
		t.Errorf("Drain() = %d, want 800", n)
	}
}
