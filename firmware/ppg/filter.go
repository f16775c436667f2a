package ppg

// Window sizes.
const (
	DCWindow   = 20 // DC removal for beat detection
	SpO2Window = 50 // AC/DC extraction for SpO2
)

// AC returns s's ch value minus the DCWindow moving average of b.
//
// It returns 0 while the average is not ready or is zero.
func AC(b *Buffer, s Sample, ch Channel) int32 {
	dc, ok := b.MovingAverage(ch, DCWindow)
	if !ok || dc == 0 {
		return 0
	}
	return int32(s.Value(ch)) - int32(dc)
}

// PeakToPeak returns max-min over the newest SpO2Window samples of ch.
func PeakToPeak(b *Buffer, ch Channel) (uint32, bool) {
	lo, hi, ok := b.MinMax(ch, SpO2Window)
	if !ok {
		return 0, false
	}
	return hi - lo, true
}
