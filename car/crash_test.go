package car

import "testing"

func TestCrashMemoryRecord(t *testing.T) {
	m := NewCrashMemory(0)

	a := m.Record(10, 20, 30)
	m.Record(50, 60, 0)
	if again := m.Record(10, 20, 30); again != a {
		t.Errorf("expected the same key, got %+v and %+v", a, again)
	}

	if m.Len() != 2 {
		t.Fatalf("expected 2 distinct crashes, got %d", m.Len())
	}
	if m.Count(a) != 2 {
		t.Errorf("expected count 2, got %d", m.Count(a))
	}

	entries := m.Entries()
	if entries[0].Key != a || entries[1].Key.X != 50 {
		t.Errorf("entries not in insertion order: %+v", entries)
	}
}

func TestCrashMemoryBucket(t *testing.T) {
	m := NewCrashMemory(10)

	k1 := m.Record(12.5, 18.9, 44)
	k2 := m.Record(17, 11, 41)
	if k1 != k2 {
		t.Errorf("expected both crashes in one bucket, got %+v and %+v", k1, k2)
	}
	if k1 != (CrashKey{X: 10, Y: 10, Angle: 40}) {
		t.Errorf("unexpected bucket key %+v", k1)
	}
}

func TestCrashMemoryBias(t *testing.T) {
	tests := []struct {
		name   string
		crash  CrashKey
		times  int
		center Vec2
		angle  float64
		want   float64
	}{
		{"out of range", CrashKey{X: 0, Y: 0, Angle: 0}, 1, Vec2{X: 100, Y: 0}, 10, 0},
		{"at radius", CrashKey{X: 0, Y: 0, Angle: 0}, 1, Vec2{X: 50, Y: 0}, 10, 0},
		{"crash heading below", CrashKey{X: 0, Y: 0, Angle: 0}, 2, Vec2{X: 30, Y: 40 - 1}, 10, 10},
		{"crash heading above", CrashKey{X: 0, Y: 0, Angle: 20}, 1, Vec2{X: 0, Y: 0}, 10, -5},
		{"equal heading steers away", CrashKey{X: 0, Y: 0, Angle: 10}, 1, Vec2{X: 0, Y: 0}, 10, -5},
		{"weight capped", CrashKey{X: 0, Y: 0, Angle: 0}, 25, Vec2{X: 1, Y: 1}, 10, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewCrashMemory(0)
			for range tt.times {
				m.Record(tt.crash.X, tt.crash.Y, tt.crash.Angle)
			}
			if got := m.Bias(tt.center, tt.angle, 50, 5, 10); got != tt.want {
				t.Errorf("Bias = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCrashMemoryBiasFirstMatchWins(t *testing.T) {
	m := NewCrashMemory(0)
	m.Record(0, 0, 90) // first: above the heading, steer negative
	for range 3 {
		m.Record(5, 5, 0) // second: would steer positive
	}

	if got := m.Bias(Vec2{X: 2, Y: 2}, 45, 50, 5, 10); got != -5 {
		t.Errorf("expected only the first crash to count, got %v", got)
	}
}
