package effect

import "github.com/example/ledglow/internal/color"

// Args carries effect parameters, typically decoded from JSON or YAML.
// Every getter falls back to the supplied default when the key is absent or
// of the wrong shape; malformed parameters are the caller's concern.
type Args map[string]any

func (a Args) Float(name string, def float64) float64 {
	switch v := a[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func (a Args) Int(name string, def int) int {
	switch v := a[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

func (a Args) Bool(name string, def bool) bool {
	if v, ok := a[name].(bool); ok {
		return v
	}
	return def
}

func (a Args) String(name, def string) string {
	if v, ok := a[name].(string); ok {
		return v
	}
	return def
}

// Color reads a 3-element [r,g,b] array. JSON decodes numbers as float64 and
// YAML as int, so both are accepted.
func (a Args) Color(name string, def color.Color) color.Color {
	raw, ok := a[name].([]any)
	if !ok || len(raw) != 3 {
		return def
	}
	var ch [3]uint8
	for i, e := range raw {
		switch v := e.(type) {
		case float64:
			ch[i] = color.ClampChannel(v)
		case int:
			ch[i] = color.ClampChannel(float64(v))
		default:
			return def
		}
	}
	return color.New(ch[0], ch[1], ch[2])
}
