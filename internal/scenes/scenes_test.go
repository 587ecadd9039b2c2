package scenes

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseCutTimes(t *testing.T) {
	output := "frame:0    pts:38400   pts_time:2.5\n" +
		"lavfi.scene_score=0.412\n" +
		"frame:1    pts:153600  pts_time:12.843\n" +
		"lavfi.scene_score=0.207\n" +
		"frame:2    pts:153600  pts_time:12.843\n" +
		"noise line without timestamps\n"
	cuts := parseCutTimes(output)
	want := []float64{2.5, 12.843}
	if len(cuts) != len(want) {
		t.Fatalf("cuts = %v, want %v", cuts, want)
	}
	for i := range want {
		if cuts[i] != want[i] {
			t.Fatalf("cuts[%d] = %v, want %v", i, cuts[i], want[i])
		}
	}
}

func TestParseCutTimesEmptyOutput(t *testing.T) {
	if cuts := parseCutTimes(""); len(cuts) != 0 {
		t.Fatalf("expected no cuts, got %v", cuts)
	}
}

func TestBuildIntervals(t *testing.T) {
	tests := []struct {
		name       string
		cuts       []float64
		durationMS int64
		want       []Interval
	}{
		{
			name:       "cuts tile the duration",
			cuts:       []float64{2.5, 12.8434},
			durationMS: 20000,
			want: []Interval{
				{StartMS: 0, EndMS: 2500},
				{StartMS: 2500, EndMS: 12843},
				{StartMS: 12843, EndMS: 20000},
			},
		},
		{
			name:       "no cuts yields single full scene",
			cuts:       nil,
			durationMS: 5000,
			want:       []Interval{{StartMS: 0, EndMS: 5000}},
		},
		{
			name:       "zero duration yields no scenes",
			cuts:       []float64{1.0},
			durationMS: 0,
			want:       nil,
		},
		{
			name:       "cuts outside duration dropped",
			cuts:       []float64{0, 3.0, 11.0},
			durationMS: 10000,
			want: []Interval{
				{StartMS: 0, EndMS: 3000},
				{StartMS: 3000, EndMS: 10000},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildIntervals(tc.cuts, tc.durationMS)
			if len(got) != len(tc.want) {
				t.Fatalf("intervals = %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("interval %d = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestBuildIntervalsAreContiguous(t *testing.T) {
	intervals := BuildIntervals([]float64{1.2, 3.4, 7.77}, 9000)
	if intervals[0].StartMS != 0 {
		t.Fatalf("first interval starts at %d", intervals[0].StartMS)
	}
	for i := 1; i < len(intervals); i++ {
		if intervals[i].StartMS != intervals[i-1].EndMS {
			t.Fatalf("gap between interval %d and %d: %v %v", i-1, i, intervals[i-1], intervals[i])
		}
	}
	if intervals[len(intervals)-1].EndMS != 9000 {
		t.Fatalf("last interval ends at %d", intervals[len(intervals)-1].EndMS)
	}
}

func TestFrameNameRoundTrip(t *testing.T) {
	iv := Interval{StartMS: 2500, EndMS: 12843}
	name := FrameName("mixdagZ-fwI_core", iv, "jpg")
	if name != "mixdagZ-fwI_core_scene_2500_12843.jpg" {
		t.Fatalf("name = %q", name)
	}
	got, ok := ParseFrameName(name, "mixdagZ-fwI_core")
	if !ok {
		t.Fatal("ParseFrameName failed")
	}
	if got != iv {
		t.Fatalf("parsed = %+v, want %+v", got, iv)
	}
}

func TestParseFrameNameRejectsForeignFiles(t *testing.T) {
	for _, name := range []string{
		"other_scene_0_100.jpg",
		"demo_clip_0_100.wav",
		"demo_scene_bad_100.jpg",
		"demo_scene_0_bad.jpg",
	} {
		if _, ok := ParseFrameName(name, "demo"); ok {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestListAndMatchFrames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"demo_scene_0_1000.jpg",
		"demo_scene_1000_3000.jpg",
		"demo_scene_3000_8000.jpg",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	frames, err := ListFrames(dir, "demo")
	if err != nil {
		t.Fatalf("ListFrames: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(frames))
	}

	matched := MatchFrames(frames, 500, 2000)
	if len(matched) != 2 {
		t.Fatalf("matched = %d frames, want 2", len(matched))
	}
	if matched[0].StartMS != 0 || matched[1].StartMS != 1000 {
		t.Fatalf("matched starts = %d, %d", matched[0].StartMS, matched[1].StartMS)
	}

	if got := MatchFrames(frames, 9000, 9500); len(got) != 0 {
		t.Fatalf("expected no matches past the last scene, got %d", len(got))
	}
}

func TestMatchFramesKeepsTrailingOverlap(t *testing.T) {
	frames := []Frame{{Path: "demo_scene_1200_3000.jpg", StartMS: 1200, EndMS: 3000}}

	matched := MatchFrames(frames, 2500, 4000)
	if len(matched) != 1 {
		t.Fatalf("matched = %d frames, want 1", len(matched))
	}

	matched = MatchFrames([]Frame{{StartMS: 0, EndMS: 1000}}, 500, 2000)
	if len(matched) != 1 {
		t.Fatalf("matched = %d frames, want 1", len(matched))
	}
}

func TestListFramesMissingDir(t *testing.T) {
	frames, err := ListFrames(filepath.Join(t.TempDir(), "absent"), "demo")
	if err != nil {
		t.Fatalf("ListFrames: %v", err)
	}
	if frames != nil {
		t.Fatalf("expected nil frames, got %v", frames)
	}
}

func TestMidpointSeconds(t *testing.T) {
	iv := Interval{StartMS: 1000, EndMS: 4000}
	if got := iv.MidpointSeconds(); got != 2.5 {
		t.Fatalf("midpoint = %v, want 2.5", got)
	}
}
