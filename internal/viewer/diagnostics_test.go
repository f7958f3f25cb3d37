package viewer

import (
	"testing"
)

func TestParseSinkKind(t *testing.T) {
	tests := []struct {
		in      string
		want    SinkKind
		wantErr bool
	}{
		{"", SinkNone, false},
		{"none", SinkNone, false},
		{"Collector", SinkCollector, false},
		{" collector ", SinkCollector, false},
		{"console", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSinkKind(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSinkKind(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSinkKind(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSinkKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector(3)

	var forwarded []Line
	c.Forward(func(l Line) { forwarded = append(forwarded, l) })

	c.Print("one")
	c.PrintErr("two")
	c.Print("three")
	c.Print("four")

	lines := c.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Text != "two" || lines[0].Stream != StreamErr {
		t.Errorf("oldest line: got %+v, want err:two", lines[0])
	}
	if lines[2].Text != "four" || lines[2].Stream != StreamOut {
		t.Errorf("newest line: got %+v, want out:four", lines[2])
	}
	if len(forwarded) != 4 {
		t.Errorf("forwarded %d lines, want 4", len(forwarded))
	}

	// Lines returns a copy.
	lines[0].Text = "mutated"
	if c.Lines()[0].Text != "two" {
		t.Error("Lines exposed internal storage")
	}
}

func TestNewSink(t *testing.T) {
	if _, ok := NewSink(SinkNone, 0).(NopSink); !ok {
		t.Error("SinkNone should produce NopSink")
	}
	c, ok := NewSink(SinkCollector, 0).(*Collector)
	if !ok {
		t.Fatal("SinkCollector should produce *Collector")
	}
	if c.limit != DefaultCollectorLimit {
		t.Errorf("limit: got %d, want %d", c.limit, DefaultCollectorLimit)
	}
}
