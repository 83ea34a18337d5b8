package orders

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{StatusPending, StatusPaid},
		{StatusPending, StatusCancelled},
		{StatusPaid, StatusRefunded},
		{StatusPaid, StatusPartiallyRefunded},
	}
	for _, tr := range allowed {
		if !CanTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be allowed", tr[0], tr[1])
		}
	}

	forbidden := [][2]string{
		{StatusPending, StatusRefunded},
		{StatusPaid, StatusPending},
		{StatusPaid, StatusCancelled},
		{StatusCancelled, StatusPaid},
		{StatusRefunded, StatusPaid},
		{StatusRefunded, StatusRefunded},
		{StatusPartiallyRefunded, StatusRefunded},
		{StatusPaid, StatusPaid},
	}
	for _, tr := range forbidden {
		if CanTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be forbidden", tr[0], tr[1])
		}
	}
}
