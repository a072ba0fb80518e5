package clipboard

import (
	"context"
	"errors"
	"testing"
)

func TestSnapshotEmpty(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"zero value", Snapshot{}, true},
		{"text", Snapshot{Text: "x"}, false},
		{"image", Snapshot{Image: []byte{1}}, false},
		{"files", Snapshot{Files: []string{"/tmp/a"}}, false},
	}
	for _, tc := range cases {
		if got := tc.snap.Empty(); got != tc.want {
			t.Errorf("%s: Empty() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	snap, err := m.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Empty() {
		t.Error("fresh memory clipboard should be empty")
	}

	m.SetText("hello")
	snap, err = m.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Text != "hello" {
		t.Errorf("text: got %q", snap.Text)
	}

	if err := m.Write(ctx, "written"); err != nil {
		t.Fatal(err)
	}
	if w := m.Writes(); len(w) != 1 || w[0] != "written" {
		t.Errorf("writes: %v", w)
	}
	snap, _ = m.Read(ctx)
	if snap.Text != "written" {
		t.Errorf("write should update the readable text, got %q", snap.Text)
	}

	boom := errors.New("boom")
	m.FailReads(boom)
	if _, err := m.Read(ctx); !errors.Is(err, boom) {
		t.Errorf("read failure: got %v", err)
	}
	m.FailWrites(boom)
	if err := m.Write(ctx, "x"); !errors.Is(err, boom) {
		t.Errorf("write failure: got %v", err)
	}
}
