package rwlatch

import "runtime"

// Tunables are the process-memory knobs spec.md 6 requires the core to
// consume: n_spin_wait_rounds and spin_wait_delay. They are read without
// synchronization on the hot path (plain fields) and may be swapped
// between acquires, matching "Configuration: None persisted... may
// change between acquires."
type Tunables struct {
	// SpinRounds is the number of spin iterations attempted before
	// yielding and, if still unsatisfied, parking in the sync array.
	SpinRounds uint
	// SpinDelay is the number of busy-work units executed per spin
	// iteration, standing in for the hardware pause instruction
	// (ut_delay) the source uses. It has no wall-clock meaning; it
	// only exists to keep a spinning goroutine from hammering the
	// lock word with zero spacing.
	SpinDelay uint
}

// DefaultTunables mirrors MariaDB's srv_n_spin_wait_rounds (30) default;
// SpinDelay is a small constant rather than the source's
// innodb_spin_wait_delay, which is tuned per-deployment.
func DefaultTunables() *Tunables {
	return &Tunables{SpinRounds: 30, SpinDelay: 50}
}

// spinPause stands in for ut_delay(srv_spin_wait_delay): a bounded,
// side-effect-free busy wait that can't be optimized away and does not
// call into the scheduler.
func spinPause(units uint) {
	var x uint64
	for i := uint(0); i < units; i++ {
		x += uint64(i) ^ uint64(x>>1)
	}
	runtime.KeepAlive(x)
}
