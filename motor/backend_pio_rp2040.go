//go:build rp2040

package motor

// PIO-accelerated step pulse generation for RP2040, using the PIO state
// machine to generate the pulse edge and hold time in hardware instead of
// a busy-wait, eliminating the jitter GPIOBackend's software delay has.
// Program and wiring follow the teacher's targets/pio/stepper_pio.go.

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"camslider/core"
)

// buildStepperProgram assembles a PIO program that pulls a 32-bit command
// word (bits 0-15: count X, bits 16-23: delay cycles, bit 24: direction)
// and emits X+1 step pulses on the SET pin with the requested inter-pulse
// delay (jmp x-- tests X before decrementing it).
func buildStepperProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),
		asm.Out(rp2pio.OutDestX, 16).Encode(),
		asm.Out(rp2pio.OutDestY, 8).Encode(),
		asm.Out(rp2pio.OutDestPins, 1).Encode(),
		// step_loop:
		asm.Set(rp2pio.SetDestPins, 1).Delay(7).Encode(),
		asm.Set(rp2pio.SetDestPins, 0).Encode(),
		// delay_loop:
		asm.Jmp(6, rp2pio.JmpYNZeroDec).Encode(),
		asm.Jmp(4, rp2pio.JmpXNZeroDec).Encode(),
		// .wrap
	}
}

const stepperPIOOrigin = 0

// PIOBackend drives the step pin through an RP2040 PIO state machine and
// the direction/enable pins through plain GPIO.
type PIOBackend struct {
	pio *rp2pio.PIO
	sm  rp2pio.StateMachine

	stepPin   machine.Pin
	dirPin    machine.Pin
	enablePin machine.Pin
	haveEn    bool

	direction    bool
	invertDir    bool
	invertEnable bool
	offset       uint8
}

// NewPIOBackend selects which PIO block (0 or 1) and state machine (0-3)
// to claim.
func NewPIOBackend(pioNum, smNum uint8, invertEnable bool) *PIOBackend {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return &PIOBackend{
		pio:          pioHW,
		sm:           pioHW.StateMachine(smNum),
		invertEnable: invertEnable,
	}
}

func (b *PIOBackend) Init(stepPin, dirPin, enablePin uint32, invertStep, invertDir bool) error {
	// invertStep has no meaning for the PIO program: it always emits an
	// active-high pulse. A driver wired active-low on STEP needs the GPIO
	// backend instead.
	b.stepPin = machine.Pin(stepPin)
	b.dirPin = machine.Pin(dirPin)
	b.invertDir = invertDir

	b.sm.TryClaim()

	program := buildStepperProgram()
	offset, err := b.pio.AddProgram(program, stepperPIOOrigin)
	if err != nil {
		return err
	}
	b.offset = offset

	b.stepPin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})
	b.dirPin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(b.stepPin, 1)
	cfg.SetOutPins(b.dirPin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1000, 0)

	b.sm.Init(offset, cfg)
	b.sm.SetPindirsConsecutive(b.stepPin, 1, true)
	b.sm.SetPindirsConsecutive(b.dirPin, 1, true)
	b.sm.SetPinsConsecutive(b.stepPin, 1, false)
	b.sm.SetPinsConsecutive(b.dirPin, 1, false)
	b.sm.SetEnabled(true)

	if enablePin != 0 {
		b.enablePin = machine.Pin(enablePin)
		b.haveEn = true
		b.enablePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		return b.SetEnabled(false)
	}
	return nil
}

func (b *PIOBackend) Pulse() {
	cmd := uint32(0) | (1 << 16) // X=0: 1 pulse, 1 delay cycle
	if b.direction {
		cmd |= 1 << 24
	}
	for b.sm.IsTxFIFOFull() {
	}
	b.sm.TxPut(cmd)
	core.IncrementPulseCount()
}

func (b *PIOBackend) SetDirection(forward bool) {
	level := forward
	if b.invertDir {
		level = !level
	}
	b.direction = level
}

func (b *PIOBackend) SetEnabled(enabled bool) error {
	if !b.haveEn {
		return nil
	}
	level := enabled
	if b.invertEnable {
		level = !level
	}
	b.enablePin.Set(level)
	return nil
}

func (b *PIOBackend) Name() string { return "pio-rp2040" }

func (b *PIOBackend) Info() Info {
	return Info{
		Name:          b.Name(),
		MaxStepRate:   500000,
		MinPulseNs:    64,
		TypicalJitter: 10,
	}
}
