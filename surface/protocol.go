package surface

import (
	"gitlab.com/gomidi/midi/v2"
)

const (
	// controlChannel is the MIDI channel (0-based) carrying button and
	// LED traffic.
	controlChannel = 0

	// pressVelocity marks a deliberate button press; the firmware sends
	// every press at full velocity, anything else is ignored.
	pressVelocity = 127
)

// Sender transmits one outbound message to the hardware. Implementations
// must be safe for calls from the timer and hardware-input goroutines.
type Sender interface {
	Send(msg midi.Message) error
}

// Handler maps inbound hardware events onto parameter toggles and
// mirrors parameter state back to the hardware LEDs. A nil Sender
// disables all outbound traffic; inbound handling keeps working.
type Handler struct {
	buttons *ButtonMap
	out     Sender
}

// NewHandler returns a Handler over the given button table and
// outbound channel. out may be nil when no hardware is connected.
func NewHandler(buttons *ButtonMap, out Sender) *Handler {
	return &Handler{buttons: buttons, out: out}
}

// HandleMessage processes one inbound hardware message.
//
// A full-velocity note-on toggles the bound parameter through its
// notifying write path. A sync-request SysEx re-emits every button
// state so the hardware can relight its LEDs after reconnecting.
// Unknown commands and unmapped buttons are ignored without
// diagnostics; nothing here may disturb the audio path.
func (h *Handler) HandleMessage(msg midi.Message) {
	var data []byte
	if msg.GetSysEx(&data) {
		if isSyncRequest(data) {
			h.SyncAll()
		}
		return
	}

	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) && vel == pressVelocity {
		if p, ok := h.buttons.Param(key); ok {
			p.Toggle()
		}
	}
}

// EchoState sends one button-state message for the named parameter.
// Parameters without a bound button are skipped.
func (h *Handler) EchoState(name string, on bool) {
	if h.out == nil {
		return
	}
	id, ok := h.buttons.ID(name)
	if !ok {
		return
	}
	// Send errors are non-fatal; the next state change supersedes.
	_ = h.out.Send(buttonState(id, on))
}

// SyncAll emits one button-state message per mapped parameter in
// ascending button-id order.
func (h *Handler) SyncAll() {
	if h.out == nil {
		return
	}
	for _, b := range h.buttons.Bindings() {
		_ = h.out.Send(buttonState(b.ID, b.Param.Value()))
	}
}

// SendMeterData emits one telemetry packet. Without an output channel
// the frame is dropped; there is no queueing, the next tick supersedes.
func (h *Handler) SendMeterData(f MeterFrame) {
	if h.out == nil {
		return
	}
	_ = h.out.Send(midi.SysEx(f.Encode()))
}

// buttonState builds the LED note message for a button: full velocity
// for lit, zero for dark.
func buttonState(id uint8, on bool) midi.Message {
	vel := uint8(0)
	if on {
		vel = pressVelocity
	}
	return midi.NoteOn(controlChannel, id, vel)
}

// isSyncRequest reports whether a SysEx body is the sync-buttons
// command: manufacturer id followed by the command code, no payload.
func isSyncRequest(data []byte) bool {
	return len(data) >= 4 &&
		data[0] == manufacturerID[0] &&
		data[1] == manufacturerID[1] &&
		data[2] == manufacturerID[2] &&
		data[3] == CmdSyncButtons
}
