// Package dreamcontrol assembles the monitor-controller core: the
// audio path, the loudness/peak metering, the mode-state rules and the
// control-surface protocol, driven from three execution contexts (the
// audio block callback, a 10 ms timer, and asynchronous hardware
// input).
package dreamcontrol

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cwbudde/algo-dsp/measure/loudness"
	"gitlab.com/gomidi/midi/v2"

	"github.com/daveee/DreamControl/control"
	"github.com/daveee/DreamControl/metering"
	"github.com/daveee/DreamControl/monitor"
	"github.com/daveee/DreamControl/param"
	"github.com/daveee/DreamControl/surface"
)

// TickPeriod is the timer cadence for metering, telemetry and
// coefficient rebuilds.
const TickPeriod = 10 * time.Millisecond

// Config defines the engine settings.
type Config struct {
	SampleRate float64
	BlockSize  int
	Sender     surface.Sender
	Logger     *slog.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultEngineConfig returns the factory engine settings: 48 kHz,
// 1024-frame blocks, no hardware output, discarded logs.
func DefaultEngineConfig() Config {
	return Config{
		SampleRate: 48000,
		BlockSize:  1024,
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

// WithBlockSize sets the maximum audio block size in frames.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithSender connects the outbound hardware channel. Without one the
// engine runs headless: telemetry and LED echoes are dropped.
func WithSender(s surface.Sender) Option {
	return func(cfg *Config) { cfg.Sender = s }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *Config) { cfg.Logger = l }
}

// ApplyEngineOptions applies zero or more options to the default
// config.
func ApplyEngineOptions(opts ...Option) Config {
	cfg := DefaultEngineConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Engine is one monitor-controller instance.
//
// ProcessBlock belongs to the audio context, Tick (or Run) to the
// timer context and HandleMessage to the hardware-input context. The
// contexts share state only through the atomic parameter handles, the
// published coefficient snapshots and the metering adapter.
type Engine struct {
	params  *Params
	proc    *monitor.Processor
	adapter *metering.Adapter
	handler *surface.Handler
	log     *slog.Logger

	// modeMu serializes reducer transitions; a transition is a handful
	// of flag updates, never audio work.
	modeMu sync.Mutex
	modes  control.State
}

// NewEngine builds and wires an engine.
//
// A failed initial filter design does not abort construction: the
// engine comes up with the audio path in passthrough and logs the
// cause, so a session always gets signal.
func NewEngine(opts ...Option) *Engine {
	cfg := ApplyEngineOptions(opts...)
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	params := NewParams()

	meter := loudness.NewMeter(
		loudness.WithSampleRate(cfg.SampleRate),
		loudness.WithChannels(2),
	)
	meter.StartIntegration()

	e := &Engine{
		params:  params,
		adapter: metering.NewAdapter(meter, params.Meters, TickPeriod),
		handler: surface.NewHandler(surface.NewButtonMap(params.buttonBindings()), cfg.Sender),
		log:     log,
	}

	proc, err := monitor.NewProcessor(
		monitor.WithSampleRate(cfg.SampleRate),
		monitor.WithBlockSize(cfg.BlockSize),
		monitor.WithCrossovers(params.crossoverFreqs()),
	)
	if err != nil {
		log.Error("audio path construction failed, running passthrough", "err", err)
	} else {
		e.proc = proc
	}

	if cfg.Sender == nil {
		log.Info("no hardware output connected, telemetry disabled")
	}

	e.wireModeParams()
	return e
}

// Params exposes the parameter set for host integration.
func (e *Engine) Params() *Params { return e.params }

// wireModeParams routes every mode toggle through the reducer. The
// clip and meter outputs stay unwired; the core writes them itself.
func (e *Engine) wireModeParams() {
	modes := []*param.Bool{
		e.params.Mute, e.params.Dim, e.params.Ref, e.params.Loud,
		e.params.MidSolo, e.params.SideSolo,
		e.params.LufsReset, e.params.LufsMode, e.params.RelativeMode,
		e.params.PeakWithMomentary, e.params.PeakScale1dB, e.params.VolMod,
	}
	modes = append(modes, e.params.Solos[:]...)
	for _, p := range modes {
		p.OnChange(e.modeChanged)
	}
}

// ProcessBlock runs one stereo block through the audio path. Both
// buffers are modified in place and must have equal length, at most
// the configured block size.
func (e *Engine) ProcessBlock(left, right []float64) {
	ctl := monitor.Controls{
		Solos:    e.params.soloStates(),
		MidSolo:  e.params.MidSolo.Value(),
		SideSolo: e.params.SideSolo.Value(),
		Loud:     e.params.Loud.Value(),
	}

	if e.proc != nil {
		e.proc.ProcessBlock(left, right, ctl)
	}

	// Meters read the processed signal before the output gain, so the
	// loudness display is independent of the listening level.
	e.adapter.Feed(left, right)

	monitor.ApplyGain(left, right, e.params.levels())
}

// Tick performs one timer cycle: consume a pending reset trigger, read
// the meters, emit telemetry, rebuild the filter topology if split
// frequencies moved.
func (e *Engine) Tick() {
	if e.params.LufsReset.Value() {
		e.adapter.RequestReset()
		// The notifying write echoes the button LED back off.
		e.params.LufsReset.Set(false)
	}

	r := e.adapter.Tick(e.params.PeakHold.Value())

	e.handler.SendMeterData(surface.MeterFrame{
		Short:      r.Short,
		Momentary:  r.Momentary,
		Integrated: r.Integrated,
		RangeMin:   r.RangeMin,
		RangeMax:   r.RangeMax,
		Target:     e.params.LufsTarget.Value(),
		PeakL:      r.Peak[0],
		PeakR:      r.Peak[1],
		HeldL:      r.Held[0],
		HeldR:      r.Held[1],
		ClipL:      r.Clip[0],
		ClipR:      r.Clip[1],
	})

	if e.proc != nil {
		if err := e.proc.UpdateCrossovers(e.params.crossoverFreqs()); err != nil {
			e.log.Warn("crossover rebuild failed, keeping previous topology", "err", err)
		}
	}
}

// Run drives Tick on the timer cadence until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	t := time.NewTicker(TickPeriod)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			e.Tick()
		}
	}
}

// HandleMessage processes one inbound hardware message.
func (e *Engine) HandleMessage(msg midi.Message) {
	e.handler.HandleMessage(msg)
}

// SyncSurface re-emits all button states, for use after a hardware
// reconnect initiated from the host side.
func (e *Engine) SyncSurface() {
	e.handler.SyncAll()
}

// modeChanged is the single entry point for notifying boolean writes.
// It runs the reducer, applies exclusion clears through the silent
// store path (so no transition re-enters here) and mirrors everything
// to the hardware LEDs.
func (e *Engine) modeChanged(name string, value bool) {
	e.modeMu.Lock()
	next, fx := control.Apply(e.modes, control.Change{Name: name, Value: value})
	e.modes = next
	e.modeMu.Unlock()

	for _, w := range fx.Writes {
		if p := e.params.Registry.Bool(w.Name); p != nil {
			p.Store(w.Value)
		}
		e.handler.EchoState(w.Name, w.Value)
	}

	if fx.ResetMeter {
		e.adapter.RequestReset()
	}

	e.handler.EchoState(name, value)
}
