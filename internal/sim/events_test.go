package sim

import "testing"

func TestEventBusFlushGroupsByFaceAndClearsPending(t *testing.T) {
	bus := NewEventBus(4)
	bus.Emit(Delta{Kind: DeltaBuildingPlaced, Face: 2, Tick: 1})
	bus.Emit(Delta{Kind: DeltaBuildingRemoved, Face: 5, Tick: 1})
	bus.Emit(Delta{Kind: DeltaBuildingPlaced, Face: 2, Tick: 1})

	if ok := bus.Flush(); !ok {
		t.Fatal("expected Flush to succeed with room in the queue")
	}

	batch := <-bus.Drain()
	if len(batch) != 3 {
		t.Fatalf("expected 3 deltas in the flushed batch, got %d", len(batch))
	}

	faceCounts := map[int]int{}
	for _, d := range batch {
		faceCounts[d.Face]++
	}
	if faceCounts[2] != 2 || faceCounts[5] != 1 {
		t.Fatalf("expected 2 deltas on face 2 and 1 on face 5, got %+v", faceCounts)
	}
}

func TestEventBusFlushNoOpWhenNothingPending(t *testing.T) {
	bus := NewEventBus(1)
	if ok := bus.Flush(); !ok {
		t.Fatal("flushing an empty bus should report success")
	}
	select {
	case batch := <-bus.Drain():
		t.Fatalf("expected no batch on an empty flush, got %+v", batch)
	default:
	}
}

func TestEventBusFlushDropsWhenQueueFull(t *testing.T) {
	bus := NewEventBus(1)
	bus.Emit(Delta{Face: 0})
	bus.Flush() // fills the one queue slot

	bus.Emit(Delta{Face: 0})
	if ok := bus.Flush(); ok {
		t.Fatal("expected Flush to report failure (dropped batch) when the queue is full")
	}
}
