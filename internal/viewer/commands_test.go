package viewer

import (
	"errors"
	"reflect"
	"testing"
)

type commandModule struct {
	fakeModule
	calls []string
	args  [][]any
}

func (m *commandModule) Call(name string, args ...any) (any, error) {
	m.calls = append(m.calls, name)
	m.args = append(m.args, args)
	return true, nil
}

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     string
		args    []any
		ok      bool
		wantErr error
	}{
		{"no args", "projectionOrthographic", nil, true, nil},
		{"string arg", "removeObject", []any{"gear"}, true, nil},
		{"bool arg", "displayGround", []any{true}, true, nil},
		{"unknown", "explode", nil, false, ErrUnknownCommand},
		{"missing arg", "eraseObject", nil, false, nil},
		{"wrong type", "fitAllObjects", []any{"yes"}, false, nil},
		{"extra arg", "showScale", []any{true}, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCommand(tt.cmd, tt.args)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRunCommand(t *testing.T) {
	m := &commandModule{}
	got, err := RunCommand(m, "displayObject", "gear")
	if err != nil {
		t.Fatalf("RunCommand: %v", err)
	}
	if got != true {
		t.Errorf("result: got %v, want true", got)
	}
	if !reflect.DeepEqual(m.calls, []string{"displayObject"}) {
		t.Errorf("calls: got %v", m.calls)
	}

	if _, err := RunCommand(m, "displayObject"); err == nil {
		t.Error("expected argument count error")
	}
	if len(m.calls) != 1 {
		t.Error("invalid command reached the module")
	}
}

func TestRunCommandWithoutCommander(t *testing.T) {
	_, err := RunCommand(&fakeModule{}, "showScale")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestCommandNamesSorted(t *testing.T) {
	names := CommandNames()
	if len(names) != len(viewCommands) {
		t.Fatalf("got %d names, want %d", len(names), len(viewCommands))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted at %d: %q > %q", i, names[i-1], names[i])
		}
	}
}
