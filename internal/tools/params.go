package tools

import (
	"math"
	"strings"

	"github.com/0x0BSoD/inoreader-mcp/internal/inoreader"
)

// Argument coercion for the loosely typed maps the MCP transport hands us.
// Every mismatch is a ValidationError so bad input never reaches the network.

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &inoreader.ValidationError{Field: key, Reason: "must be a string"}
	}
	return s, nil
}

func requireString(args map[string]any, key string) (string, error) {
	s, err := stringArg(args, key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", &inoreader.ValidationError{Field: key, Reason: "is required"}
	}
	return s, nil
}

func intArg(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, &inoreader.ValidationError{Field: key, Reason: "must be an integer"}
		}
		return int(n), nil
	default:
		return 0, &inoreader.ValidationError{Field: key, Reason: "must be an integer"}
	}
}

func boolArg(args map[string]any, key string, def bool) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, &inoreader.ValidationError{Field: key, Reason: "must be a boolean"}
	}
	return b, nil
}

func stringSliceArg(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}

	switch vv := v.(type) {
	case []string:
		return vv, nil
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, &inoreader.ValidationError{Field: key, Reason: "must be an array of strings"}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &inoreader.ValidationError{Field: key, Reason: "must be an array of strings"}
	}
}
