package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a timing-critical event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	OID       uint8  // Object ID (axis index, always 0 for a single-axis core)
	Clock     uint32 // System clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtStateChange   = 1 // planner phase transition (UP/FLAT/DOWN/HALT)
	EvtQueueAdmit    = 2 // follow-up command admitted to the one-slot queue
	EvtQueueDispatch = 3 // queued command dispatched from the deferred-action timer
	EvtTimerFire     = 4 // step timer fired (pulse generated)
	EvtTimerPast     = 5 // timer in past detected
	EvtLimitTrip     = 6 // limits guard forced an early DOWN transition
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	// Disabled by default: the step timer ISR runs on a budget of a few
	// hundred microseconds and cannot afford to format or write strings.
	debugEnabled bool = false

	// Timing capture ring buffer (non-blocking, for post-mortem)
	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8
	timingEnabled  bool = true // Always capture timing events

	// Async debug output channel
	debugChan chan string

	totalPulses uint64
)

// SetDebugWriter sets the platform-specific debug output function.
// This allows callers to redirect debug output to a serial port, file, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled.
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine.
// Call this after SetDebugWriter if blocking output is undesirable.
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Blocks if debug is enabled (use DebugAsync for non-blocking).
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking).
// Drops the message if the channel is full.
func DebugAsync(msg string) {
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// RecordTiming captures a timing event in the ring buffer.
// Always-on, allocation-free, safe to call from the step timer ISR.
func RecordTiming(eventType, oid uint8, clock, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		OID:       oid,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
}

// IncrementPulseCount records that a step pulse was generated.
// Called by motor.Backend implementations, not by the planner itself.
func IncrementPulseCount() {
	totalPulses++
}

// GetTotalPulseCount returns the number of step pulses generated since boot
// or the last ClearTimingRing.
func GetTotalPulseCount() uint64 {
	return totalPulses
}

// DumpTimingRing outputs the timing ring buffer (call on shutdown/error).
// Should be called from a goroutine or after stopping time-critical code.
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	debugPrintln("[TIMING] Total pulses generated: " + itoa(int(totalPulses)))

	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		idx := (start + i) % TimingRingSize
		evt := &timingRing[idx]
		if evt.EventType == 0 {
			continue
		}

		var name string
		switch evt.EventType {
		case EvtStateChange:
			name = "STATE_CHANGE"
		case EvtQueueAdmit:
			name = "QUEUE_ADMIT"
		case EvtQueueDispatch:
			name = "QUEUE_DISPATCH"
		case EvtTimerFire:
			name = "TIMER_FIRE"
		case EvtTimerPast:
			name = "TIMER_PAST!"
		case EvtLimitTrip:
			name = "LIMIT_TRIP"
		default:
			name = "UNKNOWN"
		}

		debugPrintln("[TIMING] " + name +
			" oid=" + itoa(int(evt.OID)) +
			" clock=" + itoa(int(evt.Clock)) +
			" v1=" + itoa(int(evt.Value1)) +
			" v2=" + itoa(int(evt.Value2)))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// ClearTimingRing clears the timing buffer and pulse counter.
func ClearTimingRing() {
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
	totalPulses = 0
}
