// Command curve-table prints the velocity curve of a slowdown or speedup:
// playback speed and read-head lag against progress through the ramp.
//
// Usage:
//
//	curve-table -mode slowdown -curve -0.5
//	curve-table -mode speedup -curve 0.3 -start 0.1 -end 0.9 -length 2 -steps 20
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tapestop "github.com/tphakala/go-audio-tapestop"
	"github.com/tphakala/go-audio-tapestop/internal/engine"
)

const (
	defaultSteps = 10
	maxSteps     = 1000

	// Integration substeps per printed row
	substeps = 64
)

var errInvalidArgs = errors.New("invalid arguments")

// row is one line of the table.
type row struct {
	progress float64
	time     float64 // seconds into the ramp
	speed    float64
	lag      float64 // seconds the read head trails real time
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("curve-table", flag.ContinueOnError)
	modeName := fs.String("mode", "slowdown", "Mode: slowdown or speedup")
	curve := fs.Float64("curve", 0, "Curve factor (-1..1, 0 is linear)")
	start := fs.Float64("start", 0, "Curve start position (0..1)")
	end := fs.Float64("end", 1, "Curve end position (0..1)")
	length := fs.Float64("length", 1, "Ramp length in seconds")
	steps := fs.Int("steps", defaultSteps, "Rows to print")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, err := tapestop.ParseMode(*modeName)
	if err != nil {
		return err
	}
	if mode == tapestop.Bypass {
		return fmt.Errorf("%w: bypass has no curve", errInvalidArgs)
	}
	if *steps < 1 || *steps > maxSteps {
		return fmt.Errorf("%w: steps must be in [1, %d]", errInvalidArgs, maxSteps)
	}

	p := tapestop.DefaultParams()
	p.SlowdownCurve, p.SlowdownStart, p.SlowdownEnd, p.SlowdownLength = *curve, *start, *end, *length
	if err := p.Validate(); err != nil {
		return err
	}

	settings := engine.NewCurveSettings(*curve, *start, *end)
	rows := table(settings, mode, *length, *steps)

	_, _ = fmt.Fprintf(w, "=== %s curve (factor %.2f, alpha %.6f, window %.2f..%.2f) ===\n",
		mode, *curve, settings.Alpha, *start, *end)
	_, _ = fmt.Fprintf(w, "%9s %9s %9s %9s\n", "progress", "time", "speed", "lag")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%9.3f %8.3fs %9.4f %8.4fs\n", r.progress, r.time, r.speed, r.lag)
	}
	return nil
}

// table samples the curve at steps+1 evenly spaced progress values. The lag
// integrates 1-speed with the trapezoid rule.
func table(c engine.CurveSettings, mode tapestop.Mode, length float64, steps int) []row {
	rows := make([]row, 0, steps+1)
	rows = append(rows, row{speed: c.Speed(mode, 0)})

	var lag float64
	prev := c.Speed(mode, 0)
	dt := length / float64(steps*substeps)
	for i := 1; i <= steps*substeps; i++ {
		progress := float64(i) / float64(steps*substeps)
		speed := c.Speed(mode, progress)
		lag += (1 - (prev+speed)/2) * dt
		prev = speed

		if i%substeps == 0 {
			rows = append(rows, row{
				progress: progress,
				time:     progress * length,
				speed:    speed,
				lag:      lag,
			})
		}
	}
	return rows
}
