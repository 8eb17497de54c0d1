// Package paramfile loads tape-stop parameter presets from YAML.
//
// Every field is optional; missing fields keep the value they had before
// Apply. A minimal preset:
//
//	mode: slowdown
//	slowdown:
//	  length: 2.5
//	  curve: -0.4
//	filter:
//	  enabled: true
//	  type: lowpass
//	  cutoff: 1800
//	  slope: 24
package paramfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	tapestop "github.com/tphakala/go-audio-tapestop"
	"github.com/tphakala/go-audio-tapestop/internal/audiofile"
)

// ErrInvalidFile indicates a parameter file that cannot be decoded.
var ErrInvalidFile = errors.New("invalid parameter file")

// Ramp holds the settings of one ramp direction.
type Ramp struct {
	Length *float64 `yaml:"length"`
	Curve  *float64 `yaml:"curve"`
	Start  *float64 `yaml:"start"`
	End    *float64 `yaml:"end"`

	// Sync is a note value such as "1/4"; when set the length follows
	// the tempo.
	Sync string `yaml:"sync"`
}

// Filter holds the post-filter settings.
type Filter struct {
	Enabled   *bool    `yaml:"enabled"`
	Type      string   `yaml:"type"`
	Cutoff    *float64 `yaml:"cutoff"`
	Resonance *float64 `yaml:"resonance"`
	Slope     *int     `yaml:"slope"`
}

// File is a decoded parameter file.
type File struct {
	Mode       string   `yaml:"mode"`
	Slowdown   Ramp     `yaml:"slowdown"`
	Speedup    Ramp     `yaml:"speedup"`
	Fade       *float64 `yaml:"fade"`
	Crossfade  *float64 `yaml:"crossfade"`
	Tempo      *float64 `yaml:"tempo"`
	Filter     Filter   `yaml:"filter"`
	Automation string   `yaml:"automation"`
}

// Load reads and decodes a parameter file. A leading ~ is expanded.
func Load(path string) (*File, error) {
	path, err := audiofile.ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file: %w", err)
	}
	return Decode(data)
}

// Decode decodes a parameter file from YAML. Unknown keys are rejected.
func Decode(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return &f, nil
}

// Apply overlays the file onto p. Tempo-synced lengths are resolved at the
// file's tempo, or DefaultTempo when it has none. The result is validated.
func (f *File) Apply(p *tapestop.Params) error {
	if f.Mode != "" {
		mode, err := tapestop.ParseMode(f.Mode)
		if err != nil {
			return err
		}
		p.Mode = mode
	}

	applyRamp(&f.Slowdown, &p.SlowdownLength, &p.SlowdownCurve, &p.SlowdownStart, &p.SlowdownEnd)
	applyRamp(&f.Speedup, &p.SpeedupLength, &p.SpeedupCurve, &p.SpeedupStart, &p.SpeedupEnd)
	setFloat(&p.FadeLength, f.Fade)
	setFloat(&p.CrossfadeLength, f.Crossfade)

	if f.Filter.Enabled != nil {
		p.Filter.Enabled = *f.Filter.Enabled
	}
	if f.Filter.Type != "" {
		typ, err := tapestop.ParseFilterType(f.Filter.Type)
		if err != nil {
			return err
		}
		p.Filter.Type = typ
	}
	setFloat(&p.Filter.Cutoff, f.Filter.Cutoff)
	setFloat(&p.Filter.Resonance, f.Filter.Resonance)
	if f.Filter.Slope != nil {
		order, err := tapestop.ParseFilterOrder(*f.Filter.Slope)
		if err != nil {
			return err
		}
		p.Filter.Order = order
	}

	syncSettings, err := f.SyncSettings()
	if err != nil {
		return err
	}
	syncSettings.Apply(p, f.BPM())

	return p.Validate()
}

// SyncSettings returns the tempo sync selection of the file.
func (f *File) SyncSettings() (tapestop.SyncSettings, error) {
	var s tapestop.SyncSettings
	if f.Slowdown.Sync != "" {
		note, err := tapestop.ParseNoteValue(f.Slowdown.Sync)
		if err != nil {
			return s, err
		}
		s.SlowdownSync, s.SlowdownNote = true, note
	}
	if f.Speedup.Sync != "" {
		note, err := tapestop.ParseNoteValue(f.Speedup.Sync)
		if err != nil {
			return s, err
		}
		s.SpeedupSync, s.SpeedupNote = true, note
	}
	return s, nil
}

// BPM returns the file's tempo, falling back to DefaultTempo.
func (f *File) BPM() float64 {
	var t tapestop.TempoTracker
	if f.Tempo != nil {
		t.Update(*f.Tempo, true)
	}
	return t.BPM()
}

// ParseAutomation parses the file's automation schedule. It returns nil
// when the file has none.
func (f *File) ParseAutomation(sampleRate float64) (*tapestop.Automation, error) {
	if f.Automation == "" {
		return nil, nil
	}
	return tapestop.ParseAutomation(f.Automation, sampleRate)
}

func applyRamp(r *Ramp, length, curve, start, end *float64) {
	setFloat(length, r.Length)
	setFloat(curve, r.Curve)
	setFloat(start, r.Start)
	setFloat(end, r.End)
}

func setFloat(dst, src *float64) {
	if src != nil {
		*dst = *src
	}
}
