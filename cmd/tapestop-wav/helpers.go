package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	tapestop "github.com/tphakala/go-audio-tapestop"
	"github.com/tphakala/go-audio-tapestop/internal/analysis"
	"github.com/tphakala/go-audio-tapestop/internal/audiofile"
)

// job is one input/output file pair.
type job struct {
	input  string
	output string
}

// jobOptions holds the settings shared by every job of a run.
type jobOptions struct {
	params     tapestop.Params
	automation string // "seconds:mode" list, parsed per file at its sample rate
	blockSize  int
	bitDepth   int // output bit depth, 0 keeps the input depth
	fast       bool
	analyze    bool
}

// processStats summarizes one processed file.
type processStats struct {
	input      string
	output     string
	sampleRate int
	channels   int
	bitDepth   int
	frames     int64
	elapsed    time.Duration
	report     *analysisReport
}

// analysisReport describes the processed signal of the first channel.
type analysisReport struct {
	rms        float64
	peak       float64
	silentFrom int
	pitch      []analysis.PitchPoint
}

// outputName derives the output path of a batch job.
func outputName(input, outDir string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, name+"_tapestop.wav")
}

// buildAutomation parses the automation schedule for a file. Without one
// the whole file is rendered in params.Mode.
func buildAutomation(opts *jobOptions, sampleRate float64) (*tapestop.Automation, error) {
	if opts.automation == "" {
		return nil, nil
	}
	return tapestop.ParseAutomation(opts.automation, sampleRate)
}

// runJobs processes all jobs with at most limit files in flight. The
// returned stats are in job order.
func runJobs(jobs []job, opts *jobOptions, limit int) ([]*processStats, error) {
	results := make([]*processStats, len(jobs))

	var g errgroup.Group
	g.SetLimit(max(limit, 1))
	for i, j := range jobs {
		g.Go(func() error {
			var stats *processStats
			var err error
			if opts.fast {
				stats, err = processFile[float32](j, opts)
			} else {
				stats, err = processFile[float64](j, opts)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", j.input, err)
			}
			results[i] = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// processBuffers holds the preallocated buffers of one file.
type processBuffers[F tapestop.Float] struct {
	ints      []int
	out       []int
	channels  [][]F
	view      [][]F
	invMaxVal float64
	maxVal    float64
}

func newProcessBuffers[F tapestop.Float](channels, inputDepth, outputDepth int) *processBuffers[F] {
	bufs := &processBuffers[F]{
		ints:      make([]int, bufferSize*channels),
		out:       make([]int, bufferSize*channels),
		channels:  make([][]F, channels),
		view:      make([][]F, channels),
		invMaxVal: 1.0 / audiofile.MaxValue(inputDepth),
		maxVal:    audiofile.MaxValue(outputDepth),
	}
	for ch := range channels {
		bufs.channels[ch] = make([]F, bufferSize)
	}
	return bufs
}

// progressTracker handles progress reporting.
type progressTracker struct {
	name         string
	totalSamples int64
	lastProgress int
}

func newProgressTracker(name string, totalSamples int64) *progressTracker {
	return &progressTracker{
		name:         name,
		totalSamples: totalSamples,
	}
}

// reportIfNeeded logs progress whenever another progressInterval percent
// has been processed.
func (p *progressTracker) reportIfNeeded(currentSamples int64) {
	if p.totalSamples == 0 {
		return
	}

	progress := int(float64(currentSamples) / float64(p.totalSamples) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		logger.Info("progress", "file", p.name, "percent", progress)
		p.lastProgress = progress - progress%progressInterval
	}
}

// processRange runs frames [0, n) of bufs through proc, splitting the range
// at automation events so each mode change lands on its exact frame. pos is
// the file position of the first frame.
func processRange[F tapestop.Float](
	proc *tapestop.Processor[F],
	buffer [][]F,
	n int,
	pos int64,
	params *tapestop.Params,
	auto *tapestop.Automation,
) error {
	start := 0
	for start < n {
		end := n
		if auto != nil {
			frame := pos + int64(start)
			params.Mode = auto.ModeAt(frame)
			if next, ok := auto.NextChange(frame); ok && next < pos+int64(n) {
				end = int(next - pos)
			}
		}
		if err := proc.Process(buffer, start, end-start, params); err != nil {
			return err
		}
		start = end
	}
	return nil
}

// processFile streams one file through a fresh processor.
func processFile[F tapestop.Float](j job, opts *jobOptions) (stats *processStats, err error) {
	started := time.Now()

	input, err := audiofile.Open(j.input)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	format := input.Format()
	sampleRate := float64(format.SampleRate)

	auto, err := buildAutomation(opts, sampleRate)
	if err != nil {
		return nil, err
	}

	proc, err := tapestop.New[F](&tapestop.Config{
		SampleRate: sampleRate,
		BlockSize:  opts.blockSize,
		Channels:   format.Channels,
	})
	if err != nil {
		return nil, err
	}

	outDepth := opts.bitDepth
	if outDepth == 0 {
		outDepth = format.BitDepth
	}
	output, err := audiofile.Create(j.output, audiofile.Format{
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		BitDepth:   outDepth,
	})
	if err != nil {
		return nil, err
	}
	// Close errors matter here: the WAV header sizes are written on Close.
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	logger.Debug("processing",
		"input", j.input,
		"output", j.output,
		"rate", format.SampleRate,
		"channels", format.Channels,
		"bits", format.BitDepth,
		"frames", input.Frames())

	bufs := newProcessBuffers[F](format.Channels, format.BitDepth, outDepth)
	progress := newProgressTracker(filepath.Base(j.input), input.Frames())
	params := opts.params

	var analyzed []float64
	var pos int64
	for {
		n, readErr := input.ReadInts(bufs.ints)
		if n > 0 {
			audiofile.DeinterleaveInto(bufs.ints, bufs.channels, format.Channels, n, bufs.invMaxVal)

			if err := processRange(proc, bufs.channels, n, pos, &params, auto); err != nil {
				return nil, err
			}

			for ch := range bufs.view {
				bufs.view[ch] = bufs.channels[ch][:n]
			}
			count := audiofile.InterleaveInto(bufs.view, bufs.out, bufs.maxVal)
			if err := output.WriteSamples(bufs.out[:count]); err != nil {
				return nil, fmt.Errorf("failed to write audio data: %w", err)
			}

			if opts.analyze {
				for _, s := range bufs.view[0] {
					analyzed = append(analyzed, float64(s))
				}
			}

			pos += int64(n)
			progress.reportIfNeeded(pos)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read audio data: %w", readErr)
		}
	}

	stats = &processStats{
		input:      j.input,
		output:     j.output,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
		bitDepth:   outDepth,
		frames:     pos,
		elapsed:    time.Since(started),
	}
	if opts.analyze {
		stats.report = analyze(analyzed, sampleRate)
	}
	return stats, nil
}

// analyze measures level and pitch of a processed channel.
func analyze(signal []float64, sampleRate float64) *analysisReport {
	hop := int(sampleRate * analysisHopSeconds)
	return &analysisReport{
		rms:        analysis.RMS(signal),
		peak:       analysis.Peak(signal),
		silentFrom: analysis.SilentFrom(signal),
		pitch:      analysis.PitchTrack(signal, sampleRate, analysisWindow, hop),
	}
}

// printSummary writes the per-file summary to stdout.
func printSummary(w io.Writer, s *processStats) {
	seconds := float64(s.frames) / float64(s.sampleRate)
	_, _ = fmt.Fprintf(w, "Processed %s -> %s\n", filepath.Base(s.input), filepath.Base(s.output))
	_, _ = fmt.Fprintf(w, "  %d Hz, %d channels, %d-bit, %d frames (%.2fs)\n",
		s.sampleRate, s.channels, s.bitDepth, s.frames, seconds)
	if s.elapsed > 0 {
		_, _ = fmt.Fprintf(w, "  Duration: %.2fs, Speed: %.1fx realtime\n",
			s.elapsed.Seconds(), seconds/s.elapsed.Seconds())
	}

	if s.report == nil {
		return
	}
	r := s.report
	_, _ = fmt.Fprintf(w, "  RMS %.4f, peak %.4f", r.rms, r.peak)
	if r.silentFrom < int(s.frames) {
		_, _ = fmt.Fprintf(w, ", silent from %.3fs", float64(r.silentFrom)/float64(s.sampleRate))
	}
	_, _ = fmt.Fprintln(w)
	for _, p := range r.pitch {
		if p.Frequency == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "  %7.3fs  %8.1f Hz  rms %.4f\n", p.Time, p.Frequency, p.RMS)
	}
}
