// Command sliderbench is a host-side bench/REPL for exercising a
// camslider.Slider without real stepper hardware. Shaped after the
// teacher's host/cmd/gopper-host/main.go: flag-configured startup, a
// bufio.Scanner REPL, shlex-tokenized commands.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/tarm/serial"

	"camslider/command"
	"camslider/core"
	"camslider/motor"
	"camslider/planner"
	"camslider/ramp"
	"camslider/slider"
)

func main() {
	fMotor := flag.Float64("f-motor", 2_000_000, "motor pulse clock, Hz")
	speedMax := flag.Float64("speed-max", 8000, "rated maximum speed, steps/s")
	accelMax := flag.Float64("accel-max", 8000, "rated maximum acceleration, steps/s^2")
	maxCount := flag.Int64("rail-max", 100000, "rail length, steps")
	quadratic := flag.Bool("quadratic", false, "use the quadratic acceleration profile")
	serialPort := flag.String("serial", "", "optional serial port for telemetry output")
	flag.Parse()

	profile := ramp.Linear
	if *quadratic {
		profile = ramp.Quadratic
	}
	cfg := planner.Config{
		FMotor:          *fMotor,
		SpeedMax:        *speedMax,
		AccelMax:        *accelMax,
		MaxCount:        *maxCount,
		Profile:         profile,
		MaxSpeedPercent: 100,
		AccelPercent:    100,
	}

	gpio := newSimGPIO()
	core.SetGPIODriver(gpio)
	backend := motor.NewGPIOBackend(gpio, false)
	if err := backend.Init(1, 2, 3, false, false); err != nil {
		fmt.Fprintln(os.Stderr, "backend init:", err)
		os.Exit(1)
	}

	sl := slider.New(backend, cfg)

	if *serialPort != "" {
		port, err := serial.OpenPort(&serial.Config{Name: *serialPort, Baud: 115200})
		if err != nil {
			fmt.Fprintln(os.Stderr, "serial telemetry disabled:", err)
		} else {
			defer port.Close()
			sl.SetDebugWriter(func(msg string) { fmt.Fprintln(port, msg) })
			sl.SetDebugEnabled(true)
		}
	}

	stopPump := runClockPump(cfg.FMotor)
	defer stopPump()

	fmt.Println("sliderbench ready. Commands: move <pos> [abs|rel] [clamp], speed <pct>, stop [soft|hard], pos, status, quit")
	repl(sl)
}

// runClockPump fast-forwards the core scheduler's simulated clock in
// real time, converting pending step intervals (expressed in fMotor
// ticks) into wall-clock sleeps. Real hardware has no equivalent: the
// step timer interrupt itself drives core.GetTime() forward. A host
// binary with no hardware timer needs this pump instead.
func runClockPump(fMotor float64) (stop func()) {
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			wake, ok := core.NextWakeTime()
			if !ok {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			now := core.GetTime()
			delta := int32(wake - now)
			if delta > 0 {
				us := float64(delta) * 1e6 / fMotor
				time.Sleep(time.Duration(us * float64(time.Microsecond)))
			}
			core.SetTime(wake)
			core.ProcessTimers()
		}
	}()
	return func() { close(done) }
}

func repl(sl *slider.Slider) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		args, err := shlex.Split(line)
		if err != nil || len(args) == 0 {
			fmt.Println("parse error:", err)
			continue
		}
		if err := dispatch(sl, args); err != nil {
			fmt.Println("error:", err)
		}
		if args[0] == "quit" || args[0] == "exit" {
			return
		}
	}
}

func dispatch(sl *slider.Slider, args []string) error {
	switch args[0] {
	case "move":
		if len(args) < 2 {
			return fmt.Errorf("usage: move <pos> [abs|rel] [clamp]")
		}
		pos, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return err
		}
		kind := command.Absolute
		checkLimits := false
		for _, opt := range args[2:] {
			switch opt {
			case "rel":
				kind = command.Relative
			case "abs":
				kind = command.Absolute
			case "clamp":
				checkLimits = true
			}
		}
		return sl.MoveTo(pos, kind, checkLimits)
	case "speed":
		if len(args) < 2 {
			return fmt.Errorf("usage: speed <percent>")
		}
		pct, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		return sl.MoveAtSpeed(pct)
	case "maxspeed":
		if len(args) < 2 {
			return fmt.Errorf("usage: maxspeed <percent>")
		}
		pct, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		return sl.SetMaxSpeedPercent(pct)
	case "accel":
		if len(args) < 2 {
			return fmt.Errorf("usage: accel <percent>")
		}
		pct, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		return sl.SetAccelPercent(pct)
	case "profile":
		if len(args) < 2 {
			return fmt.Errorf("usage: profile <linear|quadratic>")
		}
		switch args[1] {
		case "linear":
			return sl.SetProfile(ramp.Linear)
		case "quadratic":
			return sl.SetProfile(ramp.Quadratic)
		default:
			return fmt.Errorf("unknown profile %q", args[1])
		}
	case "stop":
		kind := command.Soft
		if len(args) > 1 && args[1] == "hard" {
			kind = command.Hard
		}
		sl.Stop(kind)
		return nil
	case "pos":
		fmt.Println(sl.Position())
		return nil
	case "status":
		fmt.Printf("pos=%d moving=%v phase=%v\n", sl.Position(), sl.IsMoving(), sl.Phase())
		return nil
	case "quit", "exit":
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
