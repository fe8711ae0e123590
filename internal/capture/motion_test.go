package capture

import (
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{name: "default threshold", threshold: 1.0, want: 1.0},
		{name: "high threshold", threshold: 5.0, want: 5.0},
		{name: "zero uses default", threshold: 0, want: DefaultMotionThreshold},
		{name: "negative uses default", threshold: -2, want: DefaultMotionThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			if md.threshold != tt.want {
				t.Errorf("threshold = %f, want %f", md.threshold, tt.want)
			}
			if md.initialized {
				t.Error("motion detector should not be initialized initially")
			}
		})
	}
}

func blackAndWhite(t *testing.T) (black, white gocv.Mat) {
	t.Helper()
	black = gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	white = gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))
	t.Cleanup(func() {
		black.Close()
		white.Close()
	})
	return black, white
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black, _ := blackAndWhite(t)

	detected, changePercent := md.Detect(&black)
	if detected || changePercent != 0 {
		t.Errorf("first frame: detected=%v changePercent=%f, want false, 0", detected, changePercent)
	}

	detected, changePercent = md.Detect(&black)
	if detected {
		t.Errorf("identical frames should not detect motion, changePercent = %f", changePercent)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black, white := blackAndWhite(t)

	md.Detect(&black)
	detected, changePercent := md.Detect(&white)
	if !detected {
		t.Errorf("black to white should detect motion, changePercent = %f", changePercent)
	}
	if changePercent < 50.0 {
		t.Errorf("changePercent = %f, expected > 50%% for black to white transition", changePercent)
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black, white := blackAndWhite(t)
	md.Detect(&black)
	md.Reset()

	if md.initialized {
		t.Error("detector should not be initialized after Reset")
	}

	// The next frame becomes a fresh baseline.
	if detected, _ := md.Detect(&white); detected {
		t.Error("first frame after Reset should not detect motion")
	}
}

func TestMotionDetector_NilFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if detected, pct := md.Detect(nil); detected || pct != 0 {
		t.Errorf("Detect(nil) = %v, %f; want false, 0", detected, pct)
	}
}

func TestMotionDetector_Close_Multiple(t *testing.T) {
	md := NewMotionDetector(1.0)
	md.Close()
	md.Close()
}

func TestActivityMonitor(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()
	am := NewActivityMonitor(md, time.Second)

	black, white := blackAndWhite(t)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if am.Observe(&black, start) {
		t.Error("baseline frame should be idle")
	}
	if !am.Observe(&white, start.Add(100*time.Millisecond)) {
		t.Error("motion should make the monitor active")
	}
	if !am.Observe(&white, start.Add(600*time.Millisecond)) {
		t.Error("monitor should stay active within the hold period")
	}
	if am.Observe(&white, start.Add(1200*time.Millisecond)) {
		t.Error("monitor should go idle after the hold period")
	}
}

func TestActivityMonitor_DefaultHold(t *testing.T) {
	am := NewActivityMonitor(NewMotionDetector(1.0), 0)
	if am.hold != DefaultActiveHold {
		t.Errorf("hold = %v, want %v", am.hold, DefaultActiveHold)
	}
	if am.Active(time.Now()) {
		t.Error("monitor without motion should be idle")
	}
}
