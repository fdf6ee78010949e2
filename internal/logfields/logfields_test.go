package logfields

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestHelperKeys guards the field names against drift.
func TestHelperKeys(t *testing.T) {
	cases := []struct {
		name  string
		field zap.Field
		key   string
	}{
		{"File", File("a.md"), KeyFile},
		{"Path", Path("/tmp/x"), KeyPath},
		{"BuildID", BuildID("b1"), KeyBuildID},
		{"Pages", Pages(3), KeyPages},
		{"Skipped", Skipped(1), KeySkipped},
		{"Status", Status(404), KeyStatus},
		{"Method", Method("GET"), KeyMethod},
		{"Addr", Addr(":3000"), KeyAddr},
		{"Kind", Kind("read"), KeyKind},
		{"Duration", Duration(time.Millisecond), KeyDurationMS},
	}
	for _, tc := range cases {
		if tc.field.Key != tc.key {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.key, tc.field.Key)
		}
	}
}

func TestErrorHelper(t *testing.T) {
	f := Error(nil)
	if f.Key != KeyError || f.Type != zapcore.StringType || f.String != "" {
		t.Fatalf("unexpected nil error field: %+v", f)
	}
	f = Error(errors.New("boom"))
	if f.String != "boom" {
		t.Fatalf("expected 'boom', got %q", f.String)
	}
}

func TestDurationMilliseconds(t *testing.T) {
	f := Duration(1500 * time.Microsecond)
	enc := zapcore.NewMapObjectEncoder()
	f.AddTo(enc)
	if got := enc.Fields[KeyDurationMS]; got != 1.5 {
		t.Fatalf("expected 1.5, got %v", got)
	}
}
