package bpu

// 2-bit saturating counter states:
// 0=Strongly Not Taken, 1=Weakly Not Taken, 2=Weakly Taken, 3=Strongly Taken
const (
	counterMax     = 3
	takenThreshold = 2
)

// counterStep moves a 2-bit saturating counter one step toward 3 on a taken
// outcome or toward 0 on a not-taken outcome, clamped at both ends.
func counterStep(c uint8, taken bool) uint8 {
	if taken {
		if c < counterMax {
			return c + 1
		}
		return c
	}
	if c > 0 {
		return c - 1
	}
	return c
}

// counterTaken reports the direction a 2-bit counter predicts.
func counterTaken(c uint8) bool {
	return c >= takenThreshold
}
