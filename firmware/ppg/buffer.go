package ppg

// BufferSize is the number of samples kept by a Buffer.
const BufferSize = 100

// Buffer is a fixed-capacity ring of the most recent samples.
//
// The zero value is an empty buffer ready to use.
type Buffer struct {
	slots [BufferSize]Sample
	head  int // next write position
	count int
}

// Push appends s, overwriting the oldest sample when full.
func (b *Buffer) Push(s Sample) {
	b.slots[b.head] = s
	b.head = (b.head + 1) % BufferSize
	if b.count < BufferSize {
		b.count++
	}
}

// Len returns the number of buffered samples.
func (b *Buffer) Len() int { return b.count }

// Reset discards all samples.
func (b *Buffer) Reset() {
	b.head = 0
	b.count = 0
}

// At returns the i-th most recent sample (0 = newest).
func (b *Buffer) At(i int) (Sample, bool) {
	if i < 0 || i >= b.count {
		return Sample{}, false
	}
	idx := (b.head - 1 - i + 2*BufferSize) % BufferSize
	return b.slots[idx], true
}

// MovingAverage returns the integer mean of the newest window samples of ch.
// ok is false when fewer than window samples are buffered.
func (b *Buffer) MovingAverage(ch Channel, window int) (avg uint32, ok bool) {
	if window <= 0 || window > b.count {
		return 0, false
	}
	var sum uint64
	for i := 0; i < window; i++ {
		s, _ := b.At(i)
		sum += uint64(s.Value(ch))
	}
	return uint32(sum / uint64(window)), true
}

// MinMax returns the extremes of the newest window samples of ch.
func (b *Buffer) MinMax(ch Channel, window int) (lo, hi uint32, ok bool) {
	if window <= 0 || window > b.count {
		return 0, 0, false
	}
	lo = ^uint32(0)
	for i := 0; i < window; i++ {
		s, _ := b.At(i)
		v := s.Value(ch)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}
