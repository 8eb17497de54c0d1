// Command tapestop-wav renders the tape-stop effect over audio files.
//
// Usage:
//
//	tapestop-wav -mode slowdown -slowdown 2 input.wav output.wav
//	tapestop-wav -automation "1:stop,4:start" -filter lp -cutoff 1200 in.mp3 out.wav
//	tapestop-wav -params preset.yaml -tempo 128 -sync-down 1/2 in.wav out.wav
//	tapestop-wav -outdir rendered -jobs 4 a.wav b.wav c.mp3   # batch mode
//
// Flags given on the command line override the values of a -params file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"

	tapestop "github.com/tphakala/go-audio-tapestop"
	"github.com/tphakala/go-audio-tapestop/internal/paramfile"
)

const (
	// Frames per read chunk
	bufferSize = 65536

	progressInterval = 10 // Log progress every N%
	percentScale     = 100

	// Pitch track settings for -analyze
	analysisWindow     = 4096
	analysisHopSeconds = 0.1

	minRequiredArgs = 2
)

// errUsage reports missing or malformed arguments.
var errUsage = errors.New("insufficient arguments")

// options is the parsed command line.
type options struct {
	jobOpts    jobOptions
	jobs       []job
	limit      int
	cpuprofile string
	logLevel   string
}

// cliFlags holds the raw flag values before they are resolved against
// the parameter file.
type cliFlags struct {
	mode       string
	automation string

	slowdown      float64
	slowdownCurve float64
	slowdownStart float64
	slowdownEnd   float64
	speedup       float64
	speedupCurve  float64
	speedupStart  float64
	speedupEnd    float64
	fade          float64
	crossfade     float64

	filter    string
	cutoff    float64
	resonance float64
	slope     int

	tempo    float64
	syncDown string
	syncUp   string

	params string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("tapestop-wav failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	if err := InitLogger(opts.logLevel); err != nil {
		return err
	}

	// Start CPU profiling if requested (for PGO)
	if opts.cpuprofile != "" {
		f, err := os.Create(opts.cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	p := opts.jobOpts.params
	logger.Info("settings",
		"mode", p.Mode,
		"slowdown", p.SlowdownLength,
		"speedup", p.SpeedupLength,
		"filter", p.Filter.Enabled,
		"automation", opts.jobOpts.automation,
		"fast", opts.jobOpts.fast,
		"jobs", opts.limit)

	stats, err := runJobs(opts.jobs, &opts.jobOpts, opts.limit)
	if err != nil {
		return err
	}
	for _, s := range stats {
		printSummary(stdout, s)
	}
	return nil
}

// parseArgs parses the command line into options. Flag values override the
// parameter file, which overrides the defaults.
func parseArgs(args []string) (*options, error) {
	fs := flag.NewFlagSet("tapestop-wav", flag.ContinueOnError)
	def := tapestop.DefaultParams()

	var c cliFlags
	fs.StringVar(&c.mode, "mode", "bypass", "Mode: bypass, slowdown (stop), speedup (start)")
	fs.StringVar(&c.automation, "automation", "", `Mode schedule, e.g. "1.5:stop,4:start" (seconds:mode)`)

	fs.Float64Var(&c.slowdown, "slowdown", def.SlowdownLength, "Slowdown length in seconds")
	fs.Float64Var(&c.slowdownCurve, "slowdown-curve", def.SlowdownCurve, "Slowdown curve (-1..1, 0 is linear)")
	fs.Float64Var(&c.slowdownStart, "slowdown-start", def.SlowdownStart, "Slowdown curve start (0..1)")
	fs.Float64Var(&c.slowdownEnd, "slowdown-end", def.SlowdownEnd, "Slowdown curve end (0..1)")
	fs.Float64Var(&c.speedup, "speedup", def.SpeedupLength, "Speedup length in seconds")
	fs.Float64Var(&c.speedupCurve, "speedup-curve", def.SpeedupCurve, "Speedup curve (-1..1, 0 is linear)")
	fs.Float64Var(&c.speedupStart, "speedup-start", def.SpeedupStart, "Speedup curve start (0..1)")
	fs.Float64Var(&c.speedupEnd, "speedup-end", def.SpeedupEnd, "Speedup curve end (0..1)")
	fs.Float64Var(&c.fade, "fade", def.FadeLength, "Volume envelope length in seconds")
	fs.Float64Var(&c.crossfade, "crossfade", def.CrossfadeLength, "Mode change crossfade in seconds")

	fs.StringVar(&c.filter, "filter", "", "Enable the slowdown filter: lowpass, bandpass, highpass")
	fs.Float64Var(&c.cutoff, "cutoff", def.Filter.Cutoff, "Filter cutoff in Hz")
	fs.Float64Var(&c.resonance, "resonance", def.Filter.Resonance, "Filter resonance")
	fs.IntVar(&c.slope, "slope", 12, "Filter slope in dB/octave: 12 or 24")

	fs.Float64Var(&c.tempo, "tempo", tapestop.DefaultTempo, "Tempo in BPM for -sync-down and -sync-up")
	fs.StringVar(&c.syncDown, "sync-down", "", "Sync slowdown length to a note value (1/16 ... 2)")
	fs.StringVar(&c.syncUp, "sync-up", "", "Sync speedup length to a note value (1/16 ... 2)")

	fs.StringVar(&c.params, "params", "", "YAML parameter file")

	opts := &options{}
	fs.IntVar(&opts.jobOpts.blockSize, "block", tapestop.DefaultBlockSize, "Processing block size in frames")
	fs.IntVar(&opts.jobOpts.bitDepth, "bits", 0, "Output bit depth: 16, 24 or 32 (default: same as input)")
	fs.BoolVar(&opts.jobOpts.fast, "fast", false, "Use float32 precision")
	fs.BoolVar(&opts.jobOpts.analyze, "analyze", false, "Print level and pitch track of the first channel")
	fs.IntVar(&opts.limit, "jobs", runtime.NumCPU(), "Files processed in parallel (batch mode)")
	outDir := fs.String("outdir", "", "Batch mode: write every input to this directory")
	fs.StringVar(&opts.cpuprofile, "cpuprofile", "", "Write CPU profile to file (for PGO)")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintf(out, "Usage: tapestop-wav [options] input output.wav\n")
		_, _ = fmt.Fprintf(out, "       tapestop-wav [options] -outdir dir input...\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	switch {
	case *outDir != "":
		if len(rest) == 0 {
			fs.Usage()
			return nil, errUsage
		}
		for _, in := range rest {
			opts.jobs = append(opts.jobs, job{input: in, output: outputName(in, *outDir)})
		}
	case len(rest) == minRequiredArgs:
		opts.jobs = []job{{input: rest[0], output: rest[1]}}
	default:
		fs.Usage()
		return nil, errUsage
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	params, automation, err := resolveParams(&c, set)
	if err != nil {
		return nil, err
	}
	opts.jobOpts.params = params
	opts.jobOpts.automation = automation
	return opts, nil
}

// resolveParams layers the defaults, the parameter file and the explicitly
// set flags, then validates the result.
func resolveParams(c *cliFlags, set map[string]bool) (tapestop.Params, string, error) {
	params := tapestop.DefaultParams()
	var automation string
	var syncSettings tapestop.SyncSettings
	bpm := tapestop.DefaultTempo

	if c.params != "" {
		f, err := paramfile.Load(c.params)
		if err != nil {
			return params, "", err
		}
		if err := f.Apply(&params); err != nil {
			return params, "", fmt.Errorf("%s: %w", c.params, err)
		}
		automation = f.Automation
		bpm = f.BPM()
		if syncSettings, err = f.SyncSettings(); err != nil {
			return params, "", err
		}
	}

	if set["mode"] {
		mode, err := tapestop.ParseMode(c.mode)
		if err != nil {
			return params, "", err
		}
		params.Mode = mode
	}
	if set["automation"] {
		automation = c.automation
	}

	floats := []struct {
		name string
		dst  *float64
		src  float64
	}{
		{"slowdown", &params.SlowdownLength, c.slowdown},
		{"slowdown-curve", &params.SlowdownCurve, c.slowdownCurve},
		{"slowdown-start", &params.SlowdownStart, c.slowdownStart},
		{"slowdown-end", &params.SlowdownEnd, c.slowdownEnd},
		{"speedup", &params.SpeedupLength, c.speedup},
		{"speedup-curve", &params.SpeedupCurve, c.speedupCurve},
		{"speedup-start", &params.SpeedupStart, c.speedupStart},
		{"speedup-end", &params.SpeedupEnd, c.speedupEnd},
		{"fade", &params.FadeLength, c.fade},
		{"crossfade", &params.CrossfadeLength, c.crossfade},
		{"cutoff", &params.Filter.Cutoff, c.cutoff},
		{"resonance", &params.Filter.Resonance, c.resonance},
	}
	for _, f := range floats {
		if set[f.name] {
			*f.dst = f.src
		}
	}

	if set["filter"] {
		typ, err := tapestop.ParseFilterType(c.filter)
		if err != nil {
			return params, "", err
		}
		params.Filter.Enabled = true
		params.Filter.Type = typ
	}
	if set["slope"] {
		order, err := tapestop.ParseFilterOrder(c.slope)
		if err != nil {
			return params, "", err
		}
		params.Filter.Order = order
	}

	if set["tempo"] {
		var t tapestop.TempoTracker
		t.Update(c.tempo, true)
		bpm = t.BPM()
	}
	// An explicit length replaces the file's tempo sync.
	if set["slowdown"] {
		syncSettings.SlowdownSync = false
	}
	if set["speedup"] {
		syncSettings.SpeedupSync = false
	}
	if set["sync-down"] {
		note, err := tapestop.ParseNoteValue(c.syncDown)
		if err != nil {
			return params, "", err
		}
		syncSettings.SlowdownSync, syncSettings.SlowdownNote = true, note
	}
	if set["sync-up"] {
		note, err := tapestop.ParseNoteValue(c.syncUp)
		if err != nil {
			return params, "", err
		}
		syncSettings.SpeedupSync, syncSettings.SpeedupNote = true, note
	}
	syncSettings.Apply(&params, bpm)

	if err := params.Validate(); err != nil {
		return params, "", err
	}
	return params, automation, nil
}
