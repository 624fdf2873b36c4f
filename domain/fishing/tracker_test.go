package fishing

import (
	"math"
	"testing"
	"time"

	"github.com/soocke/reel-bot-go/domain/geometry"
)

func testTrackerConfig() TrackerConfig {
	return TrackerConfig{
		CheckInterval:      50 * time.Millisecond,
		CenterThresholdMax: 0.10,
		MaxNoDetection:     3,
		HoldRate:           2.8,
		FishSpeedRate:      1.7,
		MaxPulseFactor:     10,
		MinPulse:           10 * time.Millisecond,
	}
}

func TestClassifyPositionExample(t *testing.T) {
	g := geometry.WindowGeometry{Left: 500, Top: 100, Width: 800, Height: 600}
	pos := ClassifyPosition(560, g, 0, 0.05)
	if pos.Direction != DirectionLeft {
		t.Fatalf("direction=%v want left", pos.Direction)
	}
	if math.Abs(pos.OffsetRatio-0.425) > 1e-9 {
		t.Fatalf("ratio=%v want 0.425", pos.OffsetRatio)
	}
	d := newTracker(testTrackerConfig()).Step(pos, true)
	if !d.Left || d.Right {
		t.Fatalf("expected left fully held, got left=%v right=%v", d.Left, d.Right)
	}
	if d.Reason != "saturated" {
		t.Fatalf("reason=%q", d.Reason)
	}
}

func TestClassifyPositionCenterAndBias(t *testing.T) {
	g := geometry.WindowGeometry{Left: 0, Width: 1000, Height: 500}
	if pos := ClassifyPosition(520, g, 0, 0.05); pos.Direction != DirectionCenter {
		t.Fatalf("20px off a 1000px window should be center, got %v", pos.Direction)
	}
	if pos := ClassifyPosition(520, g, -100, 0.05); pos.Direction != DirectionRight {
		t.Fatalf("bias should move the centre left, got %v", pos.Direction)
	}
	if pos := ClassifyPosition(10, geometry.WindowGeometry{}, 0, 0.05); pos.Direction != DirectionCenter {
		t.Fatalf("empty geometry should be center")
	}
}

func TestTrackerSaturationMonotonic(t *testing.T) {
	tr := newTracker(testTrackerConfig())
	for _, ratio := range []float64{0.11, 0.15, 0.2, 0.3, 0.45} {
		d := tr.Step(TargetPosition{Direction: DirectionRight, OffsetRatio: ratio}, true)
		if !d.Right || d.Left {
			t.Fatalf("ratio %v: left=%v right=%v, want right only", ratio, d.Left, d.Right)
		}
		if d.Sleep != 50*time.Millisecond {
			t.Fatalf("ratio %v: sleep=%v", ratio, d.Sleep)
		}
	}
}

func TestTrackerMissesReuseThenCenter(t *testing.T) {
	tr := newTracker(testTrackerConfig())
	seen := TargetPosition{Direction: DirectionLeft, OffsetRatio: 0.3}
	tr.Step(seen, true)
	for i := 1; i <= 3; i++ {
		d := tr.Step(TargetPosition{}, false)
		if d.Position != seen {
			t.Fatalf("miss %d: position=%+v want last known %+v", i, d.Position, seen)
		}
		if !d.Left {
			t.Fatalf("miss %d: left released too early", i)
		}
	}
	d := tr.Step(TargetPosition{}, false)
	if d.Position.Direction != DirectionCenter || d.Left || d.Right {
		t.Fatalf("miss 4: expected center with both released, got %+v", d)
	}
	d = tr.Step(TargetPosition{}, false)
	if d.Position.Direction != DirectionCenter {
		t.Fatalf("miss 5: expected center to stick")
	}
	d = tr.Step(TargetPosition{Direction: DirectionLeft, OffsetRatio: 0.2}, true)
	if !d.Left {
		t.Fatalf("detection after reset should track again")
	}
}

func TestTrackerProportionalBand(t *testing.T) {
	tr := newTracker(testTrackerConfig())
	near := func(got, want time.Duration) bool {
		return math.Abs(float64(got-want)) < float64(time.Microsecond)
	}

	d := tr.Step(TargetPosition{Direction: DirectionRight, OffsetRatio: 0.06}, true)
	if !d.Right || d.Reason != "switch" || !near(d.Sleep, 140*time.Millisecond) {
		t.Fatalf("switch: %+v", d)
	}
	d = tr.Step(TargetPosition{Direction: DirectionRight, OffsetRatio: 0.08}, true)
	if !d.Right || !near(d.Sleep, time.Duration(0.02*1.7*2.8*float64(time.Second))) {
		t.Fatalf("moving away: %+v", d)
	}
	d = tr.Step(TargetPosition{Direction: DirectionRight, OffsetRatio: 0.07}, true)
	if d.Right || !near(d.Sleep, time.Duration(0.01*1.7*float64(time.Second))) {
		t.Fatalf("closing in: %+v", d)
	}
	d = tr.Step(TargetPosition{Direction: DirectionRight, OffsetRatio: 0.07}, true)
	if !d.Right || d.Sleep != 10*time.Millisecond {
		t.Fatalf("unchanged should toggle with min pulse: %+v", d)
	}
}

func TestTrackerDirectionSwitchReleasesOpposite(t *testing.T) {
	tr := newTracker(testTrackerConfig())
	tr.Step(TargetPosition{Direction: DirectionLeft, OffsetRatio: 0.07}, true)
	d := tr.Step(TargetPosition{Direction: DirectionRight, OffsetRatio: 0.07}, true)
	if d.Left || !d.Right || d.Reason != "switch" {
		t.Fatalf("switch: %+v", d)
	}
	d = tr.Step(TargetPosition{Direction: DirectionCenter, OffsetRatio: 0.01}, true)
	if d.Left || d.Right {
		t.Fatalf("center must release both: %+v", d)
	}
}
