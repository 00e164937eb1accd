package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vsariola/traverso"
)

// Arguments come from key maps, menus and scripts, so they may be strings or
// numbers; these helpers coerce them.

func argString(args []any, i int, def string) string {
	if i >= len(args) || args[i] == nil {
		return def
	}
	switch v := args[i].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func argFloat(args []any, i int, def float64) (float64, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	switch v := args[i].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return def, fmt.Errorf("argument %d: %w", i, err)
		}
		return f, nil
	default:
		return def, fmt.Errorf("argument %d: cannot use %T as a number", i, v)
	}
}

func argBool(args []any, i int, def bool) (bool, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	switch v := args[i].(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return def, fmt.Errorf("argument %d: %w", i, err)
		}
		return b, nil
	default:
		return def, fmt.Errorf("argument %d: cannot use %T as a bool", i, v)
	}
}

// argTime accepts a TimeRef, a time.Duration-like string ("1.5s") or a
// number of seconds.
func argTime(args []any, i int, def traverso.TimeRef) (traverso.TimeRef, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	if t, ok := args[i].(traverso.TimeRef); ok {
		return t, nil
	}
	if s, ok := args[i].(string); ok {
		if t, err := traverso.ParseTimeRef(s); err == nil {
			return t, nil
		}
	}
	sec, err := argFloat(args, i, 0)
	if err != nil {
		return def, err
	}
	return traverso.TimeRef(sec * traverso.UniversalSampleRate), nil
}
