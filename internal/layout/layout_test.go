package layout

import (
	"image"
	"testing"
)

func TestNewClipsAndKeepsOrder(t *testing.T) {
	displays := []Display{
		{Index: 0, Name: "DP-1", Bounds: image.Rect(0, 0, 100, 100)},
		{Index: 1, Name: "off", Bounds: image.Rect(5000, 5000, 6000, 6000)},
		{Index: 2, Name: "HDMI-1", Bounds: image.Rect(100, 0, 350, 150)},
	}

	l := New(image.Pt(300, 150), image.Point{}, displays)

	mons := l.Monitors()
	if len(mons) != 2 {
		t.Fatalf("got %d monitors, want 2", len(mons))
	}
	if mons[0].Index != 0 || mons[0].Name != "DP-1" {
		t.Fatalf("first monitor = %+v", mons[0])
	}
	if mons[1].Index != 2 {
		t.Fatalf("second monitor index = %d, want 2 (enumeration order)", mons[1].Index)
	}
	if want := image.Rect(100, 0, 300, 150); mons[1].Rect != want {
		t.Fatalf("second monitor rect = %v, want %v", mons[1].Rect, want)
	}
}

func TestNewTranslatesByOrigin(t *testing.T) {
	displays := []Display{
		{Index: 0, Name: "left", Bounds: image.Rect(-1920, 0, 0, 1080)},
		{Index: 1, Name: "right", Bounds: image.Rect(0, 0, 1920, 1080)},
	}

	l := New(image.Pt(3840, 1080), image.Pt(-1920, 0), displays)

	mons := l.Monitors()
	if mons[0].Rect != image.Rect(0, 0, 1920, 1080) {
		t.Fatalf("left = %v", mons[0].Rect)
	}
	if mons[1].Rect != image.Rect(1920, 0, 3840, 1080) {
		t.Fatalf("right = %v", mons[1].Rect)
	}
}

func TestIndicesSkipDisabledOutputs(t *testing.T) {
	// CRTCs 0 and 2 are disabled and were never reported
	l := New(image.Pt(300, 100), image.Point{}, []Display{
		{Index: 1, Name: "DP-1", Bounds: image.Rect(0, 0, 100, 100)},
		{Index: 3, Name: "DP-2", Bounds: image.Rect(100, 0, 200, 100)},
		{Index: 4, Name: "HDMI-1", Bounds: image.Rect(200, 0, 300, 100)},
	})

	mons := l.Monitors()
	if len(mons) != 3 || mons[0].Index != 1 || mons[1].Index != 3 || mons[2].Index != 4 {
		t.Fatalf("monitors = %+v", mons)
	}

	targets := l.Targets(map[int]bool{1: true, 4: true})
	if len(targets) != 1 || targets[0].Name != "DP-2" {
		t.Fatalf("targets = %+v", targets)
	}
	if len(l.Targets(map[int]bool{0: true, 2: true})) != 3 {
		t.Fatal("indices of disabled outputs must not match active monitors")
	}
}

func TestNewWithoutDisplaysCoversBuffer(t *testing.T) {
	l := New(image.Pt(64, 48), image.Point{}, nil)
	if l.Len() != 1 {
		t.Fatalf("got %d monitors, want 1", l.Len())
	}
	if got := l.Monitors()[0].Rect; got != image.Rect(0, 0, 64, 48) {
		t.Fatalf("rect = %v", got)
	}
}

func TestTargetsSkipsIgnored(t *testing.T) {
	l := New(image.Pt(300, 100), image.Point{}, []Display{
		{Index: 0, Bounds: image.Rect(0, 0, 100, 100)},
		{Index: 1, Bounds: image.Rect(100, 0, 200, 100)},
		{Index: 2, Bounds: image.Rect(200, 0, 300, 100)},
	})

	targets := l.Targets(map[int]bool{1: true})
	if len(targets) != 2 || targets[0].Index != 0 || targets[1].Index != 2 {
		t.Fatalf("targets = %+v", targets)
	}
	if len(l.Targets(nil)) != 3 {
		t.Fatal("nil ignore set should keep every monitor")
	}
}

func TestFilterRegionsDisjoint(t *testing.T) {
	l := New(image.Pt(400, 200), image.Point{}, []Display{
		{Index: 0, Name: "a", Bounds: image.Rect(0, 0, 200, 200)},
		{Index: 1, Name: "mirror", Bounds: image.Rect(0, 0, 200, 200)},
		{Index: 2, Name: "b", Bounds: image.Rect(200, 0, 300, 100)},
		{Index: 3, Name: "c", Bounds: image.Rect(250, 50, 400, 200)},
	})

	regions := l.FilterRegions()
	if len(regions) != 2 {
		t.Fatalf("got %d regions: %v", len(regions), regions)
	}
	if regions[0] != image.Rect(0, 0, 200, 200) {
		t.Fatalf("region 0 = %v", regions[0])
	}
	if regions[1] != image.Rect(200, 0, 400, 200) {
		t.Fatalf("region 1 = %v", regions[1])
	}
	for i := range regions {
		for j := i + 1; j < len(regions); j++ {
			if regions[i].Overlaps(regions[j]) {
				t.Fatalf("regions %v and %v overlap", regions[i], regions[j])
			}
		}
	}
}
