// Command dreamcontrol runs a WAV file through the monitor-controller
// core offline: band solos, mid/side audition, loudness compensation
// and the output gain behave exactly as in a live session, the 10 ms
// metering cadence is simulated at the correct sample offsets, and the
// run ends with a loudness/peak report.
//
// With --midi-out and/or --midi-in the telemetry and button traffic is
// exchanged with a real control surface instead.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/daveee/DreamControl"
	"github.com/daveee/DreamControl/monitor"
	"github.com/daveee/DreamControl/surface"
)

const blockFrames = 512

// CLI defines the command-line interface.
type CLI struct {
	MonitorLevel float64 `help:"Monitor output level in dB." default:"0"`
	Solo         []int   `help:"Band solos to engage (1-4), repeatable."`
	Mid          bool    `help:"Audition the mid (L+R) signal."`
	Side         bool    `help:"Audition the side (R-L) signal."`
	Loud         bool    `help:"Engage the loudness-compensation EQ."`
	Telemetry    bool    `help:"Hex-dump each telemetry packet."`
	MidiOut      string  `help:"MIDI output port for telemetry and LEDs (substring match)."`
	MidiIn       string  `help:"MIDI input port for hardware buttons (substring match)."`
	Verbose      bool    `short:"v" help:"Verbose diagnostics."`
	File         string  `arg:"" type:"existingfile" help:"WAV file to run through the monitor chain."`
}

func main() {
	cli := &CLI{}
	kong.Parse(cli,
		kong.Name("dreamcontrol"),
		kong.Description("Studio monitor controller, offline."),
		kong.UsageOnError(),
	)

	if err := run(cli); err != nil {
		fmt.Fprintln(os.Stderr, "dreamcontrol:", err)
		os.Exit(1)
	}
}

func run(cli *CLI) error {
	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	f, err := os.Open(cli.File)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid WAV file: %s", cli.File)
	}
	format := dec.Format()
	if format.NumChannels < 1 || format.NumChannels > 2 {
		return fmt.Errorf("unsupported channel count %d", format.NumChannels)
	}
	log.Debug("input opened",
		"file", cli.File,
		"rate", format.SampleRate,
		"channels", format.NumChannels,
		"bits", dec.BitDepth)

	sender, cleanup, err := buildSender(cli, log)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := dreamcontrol.NewEngine(
		dreamcontrol.WithSampleRate(float64(format.SampleRate)),
		dreamcontrol.WithBlockSize(blockFrames),
		dreamcontrol.WithSender(sender),
		dreamcontrol.WithLogger(log),
	)
	if err := applyControls(engine, cli); err != nil {
		return err
	}

	if cli.MidiIn != "" {
		stop, err := listenButtons(cli.MidiIn, engine, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	frames, err := stream(dec, format, engine)
	if err != nil {
		return err
	}
	log.Debug("stream complete", "frames", frames)

	printReport(cli.File, format, frames, engine.Params())
	return nil
}

// applyControls translates the flags onto the live parameter set.
func applyControls(e *dreamcontrol.Engine, cli *CLI) error {
	p := e.Params()
	p.MonitorLevel.Set(cli.MonitorLevel)

	for _, band := range cli.Solo {
		if band < 1 || band > monitor.NumBands {
			return fmt.Errorf("--solo %d out of range 1-%d", band, monitor.NumBands)
		}
		p.Solos[band-1].Set(true)
	}

	if cli.Mid && cli.Side {
		return errors.New("--mid and --side are mutually exclusive")
	}
	if cli.Mid {
		p.MidSolo.Set(true)
	}
	if cli.Side {
		p.SideSolo.Set(true)
	}
	if cli.Loud {
		p.Loud.Set(true)
	}
	return nil
}

// stream pushes the file through the engine block by block, firing
// Tick at every 10 ms boundary of the simulated clock.
func stream(dec *wav.Decoder, format *audio.Format, e *dreamcontrol.Engine) (int64, error) {
	buf := &audio.IntBuffer{
		Data:   make([]int, blockFrames*format.NumChannels),
		Format: format,
	}
	left := make([]float64, blockFrames)
	right := make([]float64, blockFrames)
	scale := 1.0 / float64(int64(1)<<(dec.BitDepth-1))

	tickEvery := int64(format.SampleRate / 100)
	untilTick := tickEvery
	var frames int64

	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return frames, fmt.Errorf("read audio data: %w", err)
		}
		if n == 0 {
			break
		}
		nFrames := n / format.NumChannels

		deinterleave(buf.Data[:n], left[:nFrames], right[:nFrames], format.NumChannels, scale)
		e.ProcessBlock(left[:nFrames], right[:nFrames])
		frames += int64(nFrames)

		untilTick -= int64(nFrames)
		for untilTick <= 0 {
			e.Tick()
			untilTick += tickEvery
		}
	}

	// Final tick so the last partial interval reaches the meters.
	e.Tick()
	return frames, nil
}

// deinterleave converts integer PCM frames to stereo float64. Mono
// input feeds both channels.
func deinterleave(data []int, left, right []float64, channels int, scale float64) {
	if channels == 1 {
		for i := range left {
			v := float64(data[i]) * scale
			left[i] = v
			right[i] = v
		}
		return
	}
	for i := range left {
		left[i] = float64(data[i*2]) * scale
		right[i] = float64(data[i*2+1]) * scale
	}
}

// buildSender assembles the outbound channel: hex dump, live port,
// both, or none.
func buildSender(cli *CLI, log *slog.Logger) (sender surface.Sender, cleanup func(), err error) {
	cleanup = func() {}

	var senders multiSender
	if cli.Telemetry {
		senders = append(senders, dumpSender{w: os.Stdout})
	}

	if cli.MidiOut != "" {
		drv, err := rtmididrv.New()
		if err != nil {
			return nil, cleanup, fmt.Errorf("midi driver: %w", err)
		}
		out, err := findPort[drivers.Out](drv.Outs())(cli.MidiOut)
		if err != nil {
			_ = drv.Close()
			return nil, cleanup, err
		}
		if err := out.Open(); err != nil {
			_ = drv.Close()
			return nil, cleanup, fmt.Errorf("open midi out: %w", err)
		}
		send, err := midi.SendTo(out)
		if err != nil {
			_ = drv.Close()
			return nil, cleanup, fmt.Errorf("midi out: %w", err)
		}
		log.Debug("midi out connected", "port", out.String())
		senders = append(senders, portSender{send: send})
		cleanup = func() { _ = out.Close(); _ = drv.Close() }
	}

	if len(senders) == 0 {
		return nil, cleanup, nil
	}
	return senders, cleanup, nil
}

// listenButtons connects the hardware-input context to a live port.
func listenButtons(name string, e *dreamcontrol.Engine, log *slog.Logger) (func(), error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midi driver: %w", err)
	}
	in, err := findPort[drivers.In](drv.Ins())(name)
	if err != nil {
		_ = drv.Close()
		return nil, err
	}
	if err := in.Open(); err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("open midi in: %w", err)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		e.HandleMessage(msg)
	}, midi.UseSysEx(), midi.HandleError(func(listenErr error) {
		log.Warn("midi listener error", "port", in.String(), "err", listenErr)
	}))
	if err != nil {
		_ = in.Close()
		_ = drv.Close()
		return nil, fmt.Errorf("midi listen: %w", err)
	}
	log.Debug("midi in connected", "port", in.String())
	return func() {
		stop()
		_ = in.Close()
		_ = drv.Close()
	}, nil
}

// findPort returns a lookup over the enumerated ports by substring.
func findPort[P fmt.Stringer](ports []P, enumErr error) func(string) (P, error) {
	return func(name string) (P, error) {
		var zero P
		if enumErr != nil {
			return zero, fmt.Errorf("enumerate midi ports: %w", enumErr)
		}
		for _, p := range ports {
			if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
				return p, nil
			}
		}
		return zero, fmt.Errorf("no midi port matching %q", name)
	}
}

// portSender forwards messages to a live port.
type portSender struct {
	send func(midi.Message) error
}

func (s portSender) Send(m midi.Message) error { return s.send(m) }

// dumpSender hex-dumps telemetry packets and ignores LED traffic.
type dumpSender struct {
	w io.Writer
}

func (s dumpSender) Send(m midi.Message) error {
	var data []byte
	if m.GetSysEx(&data) {
		_, err := fmt.Fprintf(s.w, "telemetry % X\n", data)
		return err
	}
	return nil
}

// multiSender fans one message out to every configured sink.
type multiSender []surface.Sender

func (ms multiSender) Send(m midi.Message) error {
	var firstErr error
	for _, s := range ms {
		if err := s.Send(m); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AAAA"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Width(18)
	valueStyle = lipgloss.NewStyle().Bold(true)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CC0000"))
)

// printReport renders the final meter state.
func printReport(file string, format *audio.Format, frames int64, p *dreamcontrol.Params) {
	m := p.Meters
	dur := float64(frames) / float64(format.SampleRate)

	fmt.Println(titleStyle.Render("DreamControl loudness report"))
	fmt.Println(labelStyle.Render("File") + valueStyle.Render(file))
	fmt.Println(labelStyle.Render("Duration") + valueStyle.Render(fmt.Sprintf("%.2f s", dur)))
	fmt.Println(labelStyle.Render("Integrated") + valueStyle.Render(fmt.Sprintf("%.1f LUFS", m.Integrated.Value())))
	fmt.Println(labelStyle.Render("Short-term") + valueStyle.Render(fmt.Sprintf("%.1f LUFS", m.Short.Value())))
	fmt.Println(labelStyle.Render("Range") + valueStyle.Render(
		fmt.Sprintf("%.1f .. %.1f LU", m.RangeMin.Value(), m.RangeMax.Value())))
	fmt.Println(labelStyle.Render("Target") + valueStyle.Render(fmt.Sprintf("%.1f LUFS", p.LufsTarget.Value())))
	fmt.Println(labelStyle.Render("Max true peak") + valueStyle.Render(
		fmt.Sprintf("%.1f / %.1f dBTP", m.HeldPeakL.Value(), m.HeldPeakR.Value())))

	if m.ClipL.Value() || m.ClipR.Value() {
		fmt.Println(warnStyle.Render("CLIP detected"))
	}
}
