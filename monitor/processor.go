package monitor

import (
	"fmt"
)

// Config defines the audio-path settings.
type Config struct {
	SampleRate float64
	BlockSize  int
	Crossovers [NumCrossovers]float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the factory audio-path settings.
func DefaultConfig() Config {
	return Config{
		SampleRate: 48000,
		BlockSize:  1024,
		Crossovers: DefaultCrossovers(),
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the maximum block size in frames.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithCrossovers sets the initial split frequencies.
func WithCrossovers(freqs [NumCrossovers]float64) Option {
	return func(cfg *Config) {
		cfg.Crossovers = freqs
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Controls is the per-block selection of the audio path: which bands
// are soloed, whether the stereo image is collapsed to mid or side,
// whether the loudness correction runs, and the output gain. The
// caller assembles it from the live parameter set at block start.
type Controls struct {
	Solos    [NumBands]bool
	MidSolo  bool
	SideSolo bool
	Loud     bool
	Levels   Levels
}

// Processor is the assembled audio path. ProcessBlock runs the
// band-solo routing, the image collapse and the loudness correction;
// the output gain is applied separately so a caller can tap the
// pre-fader signal for metering.
type Processor struct {
	cfg    Config
	topo   *Topology
	router *Router
	eq     *LoudnessEQ
}

// NewProcessor builds the audio path. The initial filter design is the
// only operation that can fail.
func NewProcessor(opts ...Option) (*Processor, error) {
	cfg := ApplyOptions(opts...)

	topo, err := NewTopology(cfg.SampleRate, cfg.Crossovers)
	if err != nil {
		return nil, fmt.Errorf("monitor: initial topology: %w", err)
	}

	router := NewRouter(topo.Current())
	router.Configure(cfg.BlockSize)

	return &Processor{
		cfg:    cfg,
		topo:   topo,
		router: router,
		eq:     NewLoudnessEQ(cfg.SampleRate),
	}, nil
}

// SampleRate returns the configured sample rate.
func (p *Processor) SampleRate() float64 { return p.cfg.SampleRate }

// UpdateCrossovers redesigns the band splitter for new split
// frequencies. Runs on the timer context; the audio context picks up
// the result at its next block boundary.
func (p *Processor) UpdateCrossovers(freqs [NumCrossovers]float64) error {
	return p.topo.Build(freqs)
}

// LoudnessEQ exposes the loud-mode correction for response inspection.
func (p *Processor) LoudnessEQ() *LoudnessEQ { return p.eq }

// ProcessBlock runs one stereo block through routing, image collapse
// and loudness correction, in place. Gain is not applied; see
// ApplyGain. Both buffers must have equal length.
func (p *Processor) ProcessBlock(left, right []float64, ctl Controls) {
	p.router.Apply(p.topo.Current())
	p.router.Process(left, right, ctl.Solos)

	switch {
	case ctl.MidSolo:
		ApplyMid(left, right)
	case ctl.SideSolo:
		ApplySide(left, right)
	}

	if ctl.Loud {
		p.eq.Process(left, right)
	}
}

// Reset clears all filter state in the path.
func (p *Processor) Reset() {
	p.router.Reset()
	p.eq.Reset()
}
