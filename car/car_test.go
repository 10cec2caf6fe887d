package car

import (
	"math"
	"testing"
)

// testSurface is a w x h track whose boundary pixels are given by wall.
type testSurface struct {
	w, h int
	wall func(x, y int) bool
}

func (s testSurface) Width() int  { return s.w }
func (s testSurface) Height() int { return s.h }

func (s testSurface) IsBoundary(x, y int) bool {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return true
	}
	return s.wall != nil && s.wall(x, y)
}

func openTrack() testSurface {
	return testSurface{w: 800, h: 600}
}

func TestFirstTickOnOpenTrack(t *testing.T) {
	c := New(DefaultParams(20, 20), 100, 290)
	if c.SpeedSet() || c.Speed != 0 {
		t.Fatalf("speed should be unset before the first update")
	}

	c.Update(openTrack())

	if c.Speed != 20 || !c.SpeedSet() {
		t.Errorf("speed = %v (set=%v), want 20", c.Speed, c.SpeedSet())
	}
	if c.Position.X != 120 {
		t.Errorf("position.x = %v, want 120", c.Position.X)
	}
	if math.Abs(c.Position.Y-290) > 1e-9 {
		t.Errorf("position.y = %v, want 290", c.Position.Y)
	}
	if c.Distance != 20 {
		t.Errorf("distance = %v, want 20", c.Distance)
	}
	if !c.Alive {
		t.Error("car should be alive")
	}
	if c.Center != (Vec2{X: 130, Y: 300}) {
		t.Errorf("center = %+v, want (130,300)", c.Center)
	}

	if len(c.Radars) != 5 {
		t.Fatalf("got %d radars, want 5", len(c.Radars))
	}
	for i, r := range c.Radars {
		if r.Length != 300 {
			t.Errorf("radar %d length = %d, want 300", i, r.Length)
		}
	}
	for i, v := range c.Inputs() {
		if v != 10 {
			t.Errorf("input %d = %v, want 10", i, v)
		}
	}
}

func TestInputsBeforeFirstUpdate(t *testing.T) {
	c := New(DefaultParams(20, 20), 100, 100)
	in := c.Inputs()
	if len(in) != 5 {
		t.Fatalf("len(inputs) = %d, want 5", len(in))
	}
	for i, v := range in {
		if v != 0 {
			t.Errorf("input %d = %v, want 0", i, v)
		}
	}
}

func TestCornerOnBoundaryKills(t *testing.T) {
	// Wall at x in [135, 140): the front corners land at x ~ 138.66
	s := testSurface{w: 800, h: 600, wall: func(x, y int) bool { return x >= 135 && x < 140 }}
	c := New(DefaultParams(20, 20), 100, 290)

	c.Update(s)

	if c.Alive {
		t.Fatal("car should be dead after touching the wall")
	}
	mem := c.CrashMemory()
	if mem.Len() != 1 {
		t.Fatalf("crash memory has %d entries, want 1", mem.Len())
	}
	entry := mem.Entries()[0]
	if entry.Count != 1 {
		t.Errorf("crash count = %d, want 1", entry.Count)
	}
	if entry.Key != (CrashKey{X: 130, Y: 300, Angle: 0}) {
		t.Errorf("crash key = %+v, want (130,300,0)", entry.Key)
	}

	wantReward := 20.0/10.0 - 1000
	if c.Reward() != wantReward {
		t.Errorf("reward = %v, want %v", c.Reward(), wantReward)
	}

	// Frozen after death
	pos, dist := c.Position, c.Distance
	c.Update(s)
	if c.Position != pos || c.Distance != dist {
		t.Error("dead car must not move")
	}
	if c.Alive {
		t.Error("dead car must stay dead")
	}
}

func TestClampAtTrackEdge(t *testing.T) {
	c := New(DefaultParams(20, 20), 775, 290)
	c.Update(openTrack())

	if c.Position.X != 780 {
		t.Errorf("position.x = %v, want clamp to 780", c.Position.X)
	}
	// Distance accrues the full speed even though the clamp ate some of it
	if c.Distance != 20 {
		t.Errorf("distance = %v, want 20", c.Distance)
	}
}

func TestDistanceAccumulatesSpeed(t *testing.T) {
	c := New(DefaultParams(20, 20), 0, 290)
	track := testSurface{w: 4000, h: 600}

	var want float64
	prev := 0.0
	for i := 0; i < 5; i++ {
		if i == 2 {
			c.Accelerate()
		}
		c.Update(track)
		want += c.Speed
		if c.Distance < prev {
			t.Fatalf("distance decreased at tick %d", i)
		}
		prev = c.Distance
	}
	if !c.Alive {
		t.Fatal("car should survive on the long open track")
	}
	if c.Distance != want {
		t.Errorf("distance = %v, want %v", c.Distance, want)
	}
	if c.Ticks != 5 {
		t.Errorf("ticks = %d, want 5", c.Ticks)
	}
	// 20+20+22+22+22 over half-width 10
	if c.Reward() != want/10 {
		t.Errorf("reward = %v, want %v", c.Reward(), want/10)
	}
}

func TestBrakeFloor(t *testing.T) {
	c := New(DefaultParams(20, 20), 100, 290)
	c.Brake()
	if c.Speed != 0 {
		t.Errorf("braking from unset speed should do nothing, got %v", c.Speed)
	}

	c.Update(openTrack())
	want := []float64{18, 16, 14, 12, 12}
	for i, w := range want {
		c.Brake()
		if c.Speed != w {
			t.Errorf("brake %d: speed = %v, want %v", i, c.Speed, w)
		}
	}
	c.Accelerate()
	if c.Speed != 14 {
		t.Errorf("accelerate: speed = %v, want 14", c.Speed)
	}
}

func TestRadarStopsAtWall(t *testing.T) {
	// Wall at x >= 200: the forward ray from center x=130 stops after 70 px
	s := testSurface{w: 800, h: 600, wall: func(x, y int) bool { return x >= 200 }}
	c := New(DefaultParams(20, 20), 100, 290)
	c.Update(s)

	if !c.Alive {
		t.Fatal("car should be alive")
	}
	forward := c.Radars[2]
	if forward.Length != 70 {
		t.Errorf("forward length = %d, want 70", forward.Length)
	}
	if forward.Point.X != 200 {
		t.Errorf("forward impact x = %d, want 200", forward.Point.X)
	}
	if got := c.Inputs()[2]; got != 2 {
		t.Errorf("forward input = %v, want 2", got)
	}
	for i, r := range c.Radars {
		if r.Length < 0 || r.Length > 300 {
			t.Errorf("radar %d length %d outside [0,300]", i, r.Length)
		}
	}
}

func TestHeadingConvention(t *testing.T) {
	// Heading 90 moves up the screen (y decreases)
	c := New(DefaultParams(20, 20), 400, 300)
	c.Angle = 90
	c.Update(openTrack())
	if !(c.Position.Y < 300) {
		t.Errorf("heading 90 should move up, y = %v", c.Position.Y)
	}
}

func TestRotatedExtents(t *testing.T) {
	tests := []struct {
		w, h   int
		angle  float64
		ww, wh int
	}{
		{20, 10, 0, 20, 10},
		{20, 10, 90, 10, 20},
		{20, 10, -90, 10, 20},
		{20, 10, 180, 20, 10},
		{20, 10, 270, 10, 20},
		{20, 10, 360, 20, 10},
		{20, 10, 45, 21, 21},
		{60, 60, 30, 81, 81},
	}

	for _, tt := range tests {
		w, h := rotatedExtents(tt.w, tt.h, tt.angle)
		if w != tt.ww || h != tt.wh {
			t.Errorf("rotatedExtents(%d,%d,%v) = (%d,%d), want (%d,%d)", tt.w, tt.h, tt.angle, w, h, tt.ww, tt.wh)
		}
	}
}

func TestRecenter(t *testing.T) {
	pos, w, h := recenter(Vec2{X: 100.7, Y: 100.2}, 20, 10, 0)
	if pos != (Vec2{X: 100, Y: 100}) || w != 20 || h != 10 {
		t.Errorf("angle 0: got %+v %dx%d", pos, w, h)
	}

	pos, w, h = recenter(Vec2{X: 100, Y: 100}, 20, 10, 90)
	if pos != (Vec2{X: 105, Y: 95}) || w != 10 || h != 20 {
		t.Errorf("angle 90: got %+v %dx%d, want (105,95) 10x20", pos, w, h)
	}
}

func TestFootprintMatchesPose(t *testing.T) {
	c := New(DefaultParams(20, 10), 100, 100)
	c.Angle = 90
	r := c.Footprint()
	if r.Dx() != 10 || r.Dy() != 20 {
		t.Errorf("footprint size = %dx%d, want 10x20", r.Dx(), r.Dy())
	}
	if r.Min.X != 105 || r.Min.Y != 95 {
		t.Errorf("footprint origin = %v, want (105,95)", r.Min)
	}
}
