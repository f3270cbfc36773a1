package bpu

// Priv is a RISC-V privilege level, used only to bucket statistics.
type Priv int

const (
	// PrivU is user mode.
	PrivU Priv = iota
	// PrivS is supervisor mode.
	PrivS
	// PrivH is hypervisor mode.
	PrivH
	// PrivM is machine mode.
	PrivM

	// NumPrivLevels is the number of privilege levels tracked.
	NumPrivLevels = 4
)

// Stats holds BTB statistics for one privilege level. The array of Stats is
// owned by the simulator and handed to the unit at construction; the unit
// only ever increments, never resets.
type Stats struct {
	// Probes is the number of BTB lookups performed.
	Probes uint64
	// Hits is the number of BTB lookups that hit.
	Hits uint64
	// Inserts is the number of BTB entries allocated.
	Inserts uint64
	// Updates is the number of BTB entries refreshed on branch resolution.
	Updates uint64
}

// HitRate returns the BTB hit rate as a percentage.
func (s Stats) HitRate() float64 {
	if s.Probes == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Probes) * 100
}
