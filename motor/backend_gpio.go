package motor

import "camslider/core"

// GPIOBackend bit-bangs step pulses over a core.GPIODriver. This is the
// portable default: it runs on any host and is what cmd/sliderbench and
// the package tests exercise, mirroring standalone/stepgen's pulse-timing
// idiom (assert, hold >=2us, deassert) from the teacher repo.
type GPIOBackend struct {
	gpio core.GPIODriver

	stepPin   core.GPIOPin
	dirPin    core.GPIOPin
	enablePin core.GPIOPin

	invertStep   bool
	invertDir    bool
	invertEnable bool
	haveEnable   bool
}

// NewGPIOBackend builds a bit-bang backend over the given GPIO driver.
// invertEnable matters only when Init is later called with a non-zero
// enablePin.
func NewGPIOBackend(gpio core.GPIODriver, invertEnable bool) *GPIOBackend {
	return &GPIOBackend{gpio: gpio, invertEnable: invertEnable}
}

func (b *GPIOBackend) Init(stepPin, dirPin, enablePin uint32, invertStep, invertDir bool) error {
	b.stepPin = core.GPIOPin(stepPin)
	b.dirPin = core.GPIOPin(dirPin)
	b.invertStep = invertStep
	b.invertDir = invertDir

	if err := b.gpio.ConfigureOutput(b.stepPin); err != nil {
		return err
	}
	if err := b.gpio.ConfigureOutput(b.dirPin); err != nil {
		return err
	}

	if enablePin != 0 {
		b.enablePin = core.GPIOPin(enablePin)
		b.haveEnable = true
		if err := b.gpio.ConfigureOutput(b.enablePin); err != nil {
			return err
		}
		return b.SetEnabled(false)
	}
	return nil
}

// pulseWidthUs is the minimum step pulse width most stepper driver ICs
// require (DRV8825/A4988/TMC class parts), matching the original
// firmware's pulse()'s _delay_us(2). The actual wait is implemented per
// build target in backend_gpio_host.go / backend_gpio_tinygo.go.
const pulseWidthUs = 2

func (b *GPIOBackend) Pulse() {
	_ = b.gpio.SetPin(b.stepPin, !b.invertStep)
	holdPulse()
	_ = b.gpio.SetPin(b.stepPin, b.invertStep)
	core.IncrementPulseCount()
}

func (b *GPIOBackend) SetDirection(forward bool) {
	level := forward
	if b.invertDir {
		level = !level
	}
	_ = b.gpio.SetPin(b.dirPin, level)
}

func (b *GPIOBackend) SetEnabled(enabled bool) error {
	if !b.haveEnable {
		return nil
	}
	level := enabled
	if b.invertEnable {
		level = !level
	}
	return b.gpio.SetPin(b.enablePin, level)
}

func (b *GPIOBackend) Name() string { return "gpio" }

// Info describes the bit-bang backend's characteristics. Actual
// jitter depends heavily on the host scheduler; these are conservative.
func (b *GPIOBackend) Info() Info {
	return Info{
		Name:          b.Name(),
		MaxStepRate:   50000,
		MinPulseNs:    pulseWidthUs * 1000,
		TypicalJitter: 20000,
	}
}
