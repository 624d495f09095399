package core

// EnterCritical masks interrupts and returns a function that restores the
// prior state. Callers outside core (the command surface's queue-then-stop
// sequence) use this to build a masked critical section without needing to
// know the platform-specific interrupt state representation.
func EnterCritical() func() {
	state := disableInterrupts()
	return func() { restoreInterrupts(state) }
}
