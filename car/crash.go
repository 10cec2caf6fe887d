package car

import "math"

// CrashKey identifies a recorded crash: center position and heading at death.
type CrashKey struct {
	X, Y, Angle float64
}

// CrashEntry is a crash key with the number of times it was recorded.
type CrashEntry struct {
	Key   CrashKey
	Count int
}

// CrashMemory is an insertion-ordered multiset of crash points.
// With a zero bucket, keys are exact floating-point triples, so repeats are rare.
type CrashMemory struct {
	bucket float64
	order  []CrashKey
	counts map[CrashKey]int
}

// NewCrashMemory creates an empty crash memory. bucket > 0 snaps keys to a grid.
func NewCrashMemory(bucket float64) *CrashMemory {
	return &CrashMemory{
		bucket: bucket,
		counts: make(map[CrashKey]int),
	}
}

// key builds the lookup key for a crash, applying the bucket grid if set.
func (m *CrashMemory) key(x, y, angle float64) CrashKey {
	if m.bucket <= 0 {
		return CrashKey{X: x, Y: y, Angle: angle}
	}
	snap := func(v float64) float64 { return math.Floor(v/m.bucket) * m.bucket }
	return CrashKey{X: snap(x), Y: snap(y), Angle: snap(angle)}
}

// Record increments the count for a crash and returns its key.
func (m *CrashMemory) Record(x, y, angle float64) CrashKey {
	k := m.key(x, y, angle)
	if _, ok := m.counts[k]; !ok {
		m.order = append(m.order, k)
	}
	m.counts[k]++
	return k
}

// Count returns how many times k was recorded.
func (m *CrashMemory) Count(k CrashKey) int {
	return m.counts[k]
}

// Len returns the number of distinct crash keys.
func (m *CrashMemory) Len() int {
	return len(m.order)
}

// Entries returns all crash keys in insertion order.
func (m *CrashMemory) Entries() []CrashEntry {
	out := make([]CrashEntry, len(m.order))
	for i, k := range m.order {
		out[i] = CrashEntry{Key: k, Count: m.counts[k]}
	}
	return out
}

// Bias returns the heading correction for a car at center heading angle.
// Only the first crash (in insertion order) closer than radius counts:
// it pushes the heading by step*min(count, maxWeight), away from the crash heading.
func (m *CrashMemory) Bias(center Vec2, angle, radius, step float64, maxWeight int) float64 {
	for _, k := range m.order {
		dist := math.Hypot(center.X-k.X, center.Y-k.Y)
		if dist >= radius {
			continue
		}
		factor := float64(min(m.counts[k], maxWeight))
		if k.Angle < angle {
			return step * factor
		}
		return -step * factor
	}
	return 0
}
