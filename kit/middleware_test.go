package kit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoggingPassesThrough(t *testing.T) {
	// WHY: the logging wrapper must be transparent to both results and errors.
	ep := Logging(quiet(), "demo")(func(ctx context.Context, req any) (any, error) {
		return req, nil
	})
	res, err := ep(context.Background(), "payload")
	if err != nil {
		t.Fatal(err)
	}
	if res != "payload" {
		t.Errorf("result: got %v, want payload", res)
	}

	sentinel := errors.New("boom")
	ep = Logging(quiet(), "demo")(func(ctx context.Context, req any) (any, error) {
		return nil, sentinel
	})
	if _, err := ep(context.Background(), nil); !errors.Is(err, sentinel) {
		t.Errorf("error: got %v, want %v", err, sentinel)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	// WHY: a panicking endpoint must surface as a tool error, not kill the
	// server process.
	ep := Recovery(quiet())(func(ctx context.Context, req any) (any, error) {
		panic("unexpected state")
	})
	_, err := ep(context.Background(), nil)
	if err == nil {
		t.Fatal("want error from recovered panic")
	}

	ep = Recovery(quiet())(func(ctx context.Context, req any) (any, error) {
		return 42, nil
	})
	res, err := ep(context.Background(), nil)
	if err != nil || res != 42 {
		t.Errorf("clean endpoint: got (%v, %v), want (42, nil)", res, err)
	}
}
