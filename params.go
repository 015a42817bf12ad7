package dreamcontrol

import (
	"github.com/daveee/DreamControl/metering"
	"github.com/daveee/DreamControl/monitor"
	"github.com/daveee/DreamControl/param"
	"github.com/daveee/DreamControl/surface"
)

// Params is the full host-visible parameter set of one controller
// instance.
type Params struct {
	Registry *param.Registry

	MonitorLevel *param.Float
	DimLevel     *param.Float
	RefLevel     *param.Float
	PeakHold     *param.Float
	LufsTarget   *param.Float
	Crossovers   [monitor.NumCrossovers]*param.Float

	Mute     *param.Bool
	Dim      *param.Bool
	Ref      *param.Bool
	Loud     *param.Bool
	MidSolo  *param.Bool
	SideSolo *param.Bool
	Solos    [monitor.NumBands]*param.Bool

	LufsReset         *param.Bool
	LufsMode          *param.Bool
	RelativeMode      *param.Bool
	PeakWithMomentary *param.Bool
	PeakScale1dB      *param.Bool
	VolMod            *param.Bool

	Meters metering.Outputs
}

// NewParams builds the parameter set with the hardware's ranges and
// factory defaults.
func NewParams() *Params {
	r := param.NewRegistry()
	p := &Params{Registry: r}

	p.MonitorLevel = r.AddFloat(param.NewFloat("monitorLevel", "Monitor Level", -64, 0, -64))
	p.DimLevel = r.AddFloat(param.NewFloat("dimLevel", "Dim Level", -125, 0, -25))
	p.RefLevel = r.AddFloat(param.NewFloat("refLevel", "Reference Level", -125, 0, -10))
	p.PeakHold = r.AddFloat(param.NewFloat("peakHold", "Peak Hold Seconds", 0, 10, 5))
	p.LufsTarget = r.AddFloat(param.NewFloat("lufsTarget", "LUFS Target", -64, 0, -16))

	defaults := monitor.DefaultCrossovers()
	labels := [monitor.NumCrossovers]string{"Crossover 1", "Crossover 2", "Crossover 3"}
	names := [monitor.NumCrossovers]string{"crossover1", "crossover2", "crossover3"}
	for i := range p.Crossovers {
		p.Crossovers[i] = r.AddFloat(param.NewFloat(names[i], labels[i], 20, 10000, defaults[i]))
	}

	p.Mute = r.AddBool(param.NewBool("muteMode", "Mute", false))
	p.Dim = r.AddBool(param.NewBool("dimMode", "Dim", false))
	p.Ref = r.AddBool(param.NewBool("refMode", "Reference Level", false))
	p.Loud = r.AddBool(param.NewBool("loudMode", "Loudness Compensation", false))
	p.MidSolo = r.AddBool(param.NewBool("midSolo", "Mid Solo", false))
	p.SideSolo = r.AddBool(param.NewBool("sideSolo", "Side Solo", false))

	soloLabels := [monitor.NumBands]string{"Solo Low", "Solo Low Mid", "Solo High Mid", "Solo High"}
	soloNames := [monitor.NumBands]string{"solo1", "solo2", "solo3", "solo4"}
	for i := range p.Solos {
		p.Solos[i] = r.AddBool(param.NewBool(soloNames[i], soloLabels[i], false))
	}

	p.LufsReset = r.AddBool(param.NewBool("lufsReset", "Reset Meter", false))
	p.LufsMode = r.AddBool(param.NewBool("lufsMode", "LUFS Scale", false))
	p.RelativeMode = r.AddBool(param.NewBool("relativeMode", "Relative Scale", false))
	p.PeakWithMomentary = r.AddBool(param.NewBool("peakWithMomentaryMode", "Peak With Momentary", false))
	p.PeakScale1dB = r.AddBool(param.NewBool("is1dbPeakScale", "1 dB Peak Scale", false))
	p.VolMod = r.AddBool(param.NewBool("volModMode", "Volume Modulation", false))

	p.Meters = metering.Outputs{
		Short:      r.AddFloat(param.NewFloat("lufsShort", "LUFS Short", metering.LoudnessFloor, 0, metering.LoudnessFloor)),
		Momentary:  r.AddFloat(param.NewFloat("lufsMomentary", "LUFS Momentary", metering.LoudnessFloor, 0, metering.LoudnessFloor)),
		Integrated: r.AddFloat(param.NewFloat("lufsIntegrated", "LUFS Integrated", metering.LoudnessFloor, 0, metering.LoudnessFloor)),
		RangeMin:   r.AddFloat(param.NewFloat("lufsRangeMin", "LUFS Range Min", metering.LoudnessFloor, 0, metering.LoudnessFloor)),
		RangeMax:   r.AddFloat(param.NewFloat("lufsRangeMax", "LUFS Range Max", metering.LoudnessFloor, 0, metering.LoudnessFloor)),
		PeakL:      r.AddFloat(param.NewFloat("peakMeterL", "True Peak L", metering.TruePeakFloor, metering.TruePeakCeiling, metering.TruePeakFloor)),
		PeakR:      r.AddFloat(param.NewFloat("peakMeterR", "True Peak R", metering.TruePeakFloor, metering.TruePeakCeiling, metering.TruePeakFloor)),
		HeldPeakL:  r.AddFloat(param.NewFloat("peakMeterMaxL", "Max Peak L", metering.TruePeakFloor, metering.TruePeakCeiling, metering.TruePeakFloor)),
		HeldPeakR:  r.AddFloat(param.NewFloat("peakMeterMaxR", "Max Peak R", metering.TruePeakFloor, metering.TruePeakCeiling, metering.TruePeakFloor)),
		ClipL:      r.AddBool(param.NewBool("clipMeterL", "Clip L", false)),
		ClipR:      r.AddBool(param.NewBool("clipMeterR", "Clip R", false)),
	}

	return p
}

// buttonBindings maps the hardware buttons onto their parameters.
func (p *Params) buttonBindings() []surface.Binding {
	return []surface.Binding{
		{ID: surface.ButtonLoud, Param: p.Loud},
		{ID: surface.ButtonMono, Param: p.MidSolo},
		{ID: surface.ButtonSide, Param: p.SideSolo},
		{ID: surface.ButtonLow, Param: p.Solos[0]},
		{ID: surface.ButtonLoMid, Param: p.Solos[1]},
		{ID: surface.ButtonHiMid, Param: p.Solos[2]},
		{ID: surface.ButtonHigh, Param: p.Solos[3]},
		{ID: surface.ButtonMute, Param: p.Mute},
		{ID: surface.ButtonDim, Param: p.Dim},
		{ID: surface.ButtonRef, Param: p.Ref},
		{ID: surface.ButtonResetMeter, Param: p.LufsReset},
		{ID: surface.ButtonPeakLufs, Param: p.LufsMode},
		{ID: surface.ButtonAbsRel, Param: p.RelativeMode},
		{ID: surface.ButtonVolMod, Param: p.VolMod},
		{ID: surface.ButtonThirdMomentary, Param: p.PeakWithMomentary},
		{ID: surface.ButtonPeakScale1dB, Param: p.PeakScale1dB},
	}
}

// crossoverFreqs reads the current split frequencies.
func (p *Params) crossoverFreqs() [monitor.NumCrossovers]float64 {
	var f [monitor.NumCrossovers]float64
	for i := range f {
		f[i] = p.Crossovers[i].Value()
	}
	return f
}

// soloStates reads the current band-solo flags.
func (p *Params) soloStates() [monitor.NumBands]bool {
	var s [monitor.NumBands]bool
	for i := range s {
		s[i] = p.Solos[i].Value()
	}
	return s
}

// levels reads the current gain selection.
func (p *Params) levels() monitor.Levels {
	return monitor.Levels{
		Monitor: p.MonitorLevel.Value(),
		Dim:     p.DimLevel.Value(),
		Ref:     p.RefLevel.Value(),
		Mute:    p.Mute.Value(),
		DimOn:   p.Dim.Value(),
		RefOn:   p.Ref.Value(),
	}
}
