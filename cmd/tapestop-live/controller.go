package main

import (
	"fmt"

	tapestop "github.com/tphakala/go-audio-tapestop"
)

// Key bindings
const (
	keySlowdown = 's'
	keySpeedup  = 'g'
	keyBypass   = 'b'
	keyFilter   = 'f'
	keyQuit     = 'q'
	keyCtrlC    = 0x03
	keyEscape   = 0x1b
)

// paramSink receives parameter snapshots. *stream.Renderer implements it.
type paramSink interface {
	Params() tapestop.Params
	SetParams(p tapestop.Params)
}

// controller maps key presses to parameter changes.
type controller struct {
	sink paramSink
}

// handleKey applies one key press. It reports whether the key asks to quit
// and a short description of what changed, empty for unbound keys.
func (c *controller) handleKey(key byte) (quit bool, status string) {
	p := c.sink.Params()

	switch key {
	case keyQuit, 'Q', keyCtrlC, keyEscape:
		return true, "quit"
	case keySlowdown, 'S':
		p.Mode = tapestop.Slowdown
	case keySpeedup, 'G':
		p.Mode = tapestop.Speedup
	case keyBypass, 'B':
		p.Mode = tapestop.Bypass
	case keyFilter, 'F':
		p.Filter.Enabled = !p.Filter.Enabled
		c.sink.SetParams(p)
		return false, fmt.Sprintf("filter %s", onOff(p.Filter.Enabled))
	default:
		return false, ""
	}

	c.sink.SetParams(p)
	return false, p.Mode.String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
