package ws

import "errors"

var (
	errBadColor       = errors.New("color must be a 3-element [r,g,b] array")
	errBadFrame       = errors.New("colors length must be 3*led_count")
	errUnknownCommand = errors.New("unknown command")
)
