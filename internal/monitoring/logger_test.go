package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = format
	})
	Logf("hello %d", 1)
	if captured != "hello %d" {
		t.Errorf("captured %q, want format string", captured)
	}

	SetLogger(nil)
	Logf("dropped")
	if captured != "hello %d" {
		t.Error("no-op logger still captured output")
	}
}
