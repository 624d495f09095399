package main

import "camslider/core"

// simGPIO is a no-hardware GPIO driver: it just remembers pin state so
// the bench CLI can drive a slider.Slider without a real board attached.
type simGPIO struct {
	state map[core.GPIOPin]bool
}

func newSimGPIO() *simGPIO {
	return &simGPIO{state: map[core.GPIOPin]bool{}}
}

func (g *simGPIO) ConfigureOutput(pin core.GPIOPin) error        { return nil }
func (g *simGPIO) ConfigureInputPullUp(pin core.GPIOPin) error   { return nil }
func (g *simGPIO) ConfigureInputPullDown(pin core.GPIOPin) error { return nil }
func (g *simGPIO) SetPin(pin core.GPIOPin, value bool) error     { g.state[pin] = value; return nil }
func (g *simGPIO) GetPin(pin core.GPIOPin) (bool, error)         { return g.state[pin], nil }
func (g *simGPIO) ReadPin(pin core.GPIOPin) bool                 { return g.state[pin] }
