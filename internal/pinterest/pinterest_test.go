package pinterest

import (
	"context"
	"errors"
	"testing"
)

func TestStubAlwaysFails(t *testing.T) {
	ctx := context.Background()
	var c Client = Stub{}

	res := c.Authenticate(ctx)
	if res.Success || res.Message == "" {
		t.Fatalf("expected failed result with message, got %+v", res)
	}
	if !errors.Is(res.Err(), ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", res.Err())
	}
	if b := c.Boards(ctx); b.Success || len(b.Boards) != 0 {
		t.Fatalf("unexpected boards result %+v", b)
	}
	if p := c.Pins(ctx, "token", "b1"); p.Success || len(p.Pins) != 0 {
		t.Fatalf("unexpected pins result %+v", p)
	}
	if (Result{Success: true}).Err() != nil {
		t.Fatalf("successful result must not error")
	}
}
