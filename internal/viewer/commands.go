package viewer

import (
	"fmt"
	"sort"
)

// ArgKind is the type of a view command argument.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgBool
)

func (k ArgKind) String() string {
	switch k {
	case ArgString:
		return "string"
	case ArgBool:
		return "bool"
	default:
		return fmt.Sprintf("ArgKind(%d)", int(k))
	}
}

// viewCommands lists the module functions callable after startup besides
// the two startup commands, with their argument kinds.
var viewCommands = map[string][]ArgKind{
	"fitAllObjects":          {ArgBool},
	"removeAllObjects":       nil,
	"removeObject":           {ArgString},
	"eraseObject":            {ArgString},
	"displayObject":          {ArgString},
	"displayGround":          {ArgBool},
	"projectionPerspective":  nil,
	"projectionOrthographic": nil,
	"selectVertexMode":       nil,
	"selectEdgeMode":         nil,
	"selectFaceMode":         nil,
	"selectSolidMode":        nil,
	"showScale":              nil,
}

// Commander is implemented by modules that accept view commands.
type Commander interface {
	Call(name string, args ...any) (any, error)
}

// CommandNames returns the known view commands, sorted.
func CommandNames() []string {
	names := make([]string, 0, len(viewCommands))
	for name := range viewCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckCommand validates a view command and its arguments.
func CheckCommand(name string, args []any) error {
	kinds, ok := viewCommands[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if len(args) != len(kinds) {
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, len(kinds), len(args))
	}
	for i, kind := range kinds {
		switch kind {
		case ArgString:
			if _, ok := args[i].(string); !ok {
				return fmt.Errorf("%s: argument %d must be a %s, got %T", name, i+1, kind, args[i])
			}
		case ArgBool:
			if _, ok := args[i].(bool); !ok {
				return fmt.Errorf("%s: argument %d must be a %s, got %T", name, i+1, kind, args[i])
			}
		}
	}
	return nil
}

// RunCommand checks and issues a view command on m.
func RunCommand(m Module, name string, args ...any) (any, error) {
	if err := CheckCommand(name, args); err != nil {
		return nil, err
	}
	c, ok := m.(Commander)
	if !ok {
		return nil, fmt.Errorf("%w: module does not accept view commands", ErrUnknownCommand)
	}
	Logger().Debug("view command", "name", name, "args", args)
	return c.Call(name, args...)
}
