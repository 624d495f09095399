package ramp

import "testing"

func TestC0Linear(t *testing.T) {
	// Scenario S1 from the spec: a=8000 steps/s^2, F_MOTOR=2MHz, c0 ~= 21395.
	c0 := C0(Linear, 2_000_000, 8000)
	if c0 < 21000 || c0 > 21800 {
		t.Fatalf("C0(Linear) = %v, want approximately 21395", c0)
	}
}

func TestC0QuadraticClamp(t *testing.T) {
	// A tiny acceleration drives the uncorrected c0 far past CminMax.
	c0 := C0(Quadratic, 2_000_000, 1)
	if c0 != CminMax {
		t.Fatalf("C0(Quadratic) = %v, want clamped to %v", c0, float64(CminMax))
	}
}

func TestCmin(t *testing.T) {
	// Scenario S1: SPEED_MAX=8000, F_MOTOR=2MHz, 100% -> cmin ~= 249.
	cmin := Cmin(2_000_000, 8000, 100)
	if cmin < 248 || cmin > 250 {
		t.Fatalf("Cmin(100%%) = %v, want approximately 249", cmin)
	}
}

func TestCminGrowsAtHalfSpeed(t *testing.T) {
	full := Cmin(2_000_000, 8000, 100)
	half := Cmin(2_000_000, 8000, 50)
	if half <= full {
		t.Fatalf("Cmin(50%%) = %v should exceed Cmin(100%%) = %v (lower speed -> larger interval)", half, full)
	}
}

func TestUpLinearMonotonicDecrease(t *testing.T) {
	c0 := C0(Linear, 2_000_000, 8000)
	cn := c0
	var n uint32
	for i := 0; i < 50; i++ {
		next, nextN := Up(Linear, cn, n, c0)
		if next >= cn {
			t.Fatalf("step %d: Up produced non-decreasing cn: %v -> %v", i, cn, next)
		}
		if nextN != n+1 {
			t.Fatalf("step %d: Up did not increment n: %v -> %v", i, n, nextN)
		}
		cn, n = next, nextN
	}
}

func TestQuadraticN1Correction(t *testing.T) {
	c0 := C0(Quadratic, 2_000_000, 8000)
	cn, n := Up(Quadratic, c0, 0, c0)
	if n != 1 {
		t.Fatalf("n = %d, want 1", n)
	}
	// cn after the n==1 correction and recurrence must differ from a
	// plain application of the recurrence to the uncorrected c0.
	uncorrected := c0 - (6.0*c0)/(9.0*1.0+3.0)
	if cn == uncorrected {
		t.Fatalf("Up(Quadratic) at n=1 did not apply the 0.9*c0 correction")
	}
}

func TestDownConvergesTowardC0(t *testing.T) {
	c0 := C0(Linear, 2_000_000, 8000)
	cmin := Cmin(2_000_000, 8000, 100)
	cn := cmin
	n := uint32(40)
	for n > 1 {
		cn = Down(Linear, cn, n)
		n--
	}
	if cn <= cmin {
		t.Fatalf("Down should increase cn as n shrinks toward 1: got %v, started at cmin=%v", cn, cmin)
	}
	if cn >= c0 {
		t.Fatalf("Down from cmin over 40 steps should approach c0 from below: got %v, c0=%v", cn, c0)
	}
}
