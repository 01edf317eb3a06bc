package mesh

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/philipparndt/golitho/internal/config"
	"github.com/philipparndt/golitho/internal/geometry"
	"github.com/philipparndt/golitho/internal/imageprep"
)

func uniformGrid(t *testing.T, w, h int, value uint8) *imageprep.Grid {
	t.Helper()
	pix := make([]uint8, w*h)
	for i := range pix {
		pix[i] = value
	}
	grid, err := imageprep.NewGrid(w, h, pix)
	if err != nil {
		t.Fatal(err)
	}
	return grid
}

func gradientGrid(t *testing.T, w, h int) *imageprep.Grid {
	t.Helper()
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = uint8((x*37 + y*91) % 256)
		}
	}
	grid, err := imageprep.NewGrid(w, h, pix)
	if err != nil {
		t.Fatal(err)
	}
	return grid
}

// assertClosed checks that every directed edge is matched by its reverse
func assertClosed(t *testing.T, s *Stream) {
	t.Helper()
	type edge struct{ a, b r3.Vec }
	edges := map[edge]int{}
	v := s.Vertices()
	for i := 0; i < len(v); i += 3 {
		for k := 0; k < 3; k++ {
			edges[edge{v[i+k], v[i+(k+1)%3]}]++
		}
	}
	for e, n := range edges {
		if back := edges[edge{e.b, e.a}]; back != n {
			t.Fatalf("edge %v -> %v used %d times, reverse %d times", e.a, e.b, n, back)
		}
	}
}

func TestBuildHeightfieldTriangleCount(t *testing.T) {
	params := config.Default()
	sizes := []struct{ w, h int }{{2, 2}, {3, 2}, {2, 5}, {10, 10}, {17, 4}}

	for _, size := range sizes {
		grid := gradientGrid(t, size.w, size.h)
		s, err := BuildHeightfield(context.Background(), grid, NewFactors(params, size.w), nil)
		if err != nil {
			t.Fatalf("%dx%d: %v", size.w, size.h, err)
		}
		want := (size.w-1)*(size.h-1)*2 + (size.h-1)*4 + (size.w-1)*4 + 2
		if s.Triangles() != want {
			t.Errorf("%dx%d: %d triangles, want %d", size.w, size.h, s.Triangles(), want)
		}
		if s.Len()%3 != 0 {
			t.Errorf("%dx%d: stream length %d is not a multiple of 3", size.w, size.h, s.Len())
		}
		if BodyTriangles(size.w, size.h) != want {
			t.Errorf("BodyTriangles(%d, %d) = %d, want %d", size.w, size.h, BodyTriangles(size.w, size.h), want)
		}
	}
}

func TestBuildHeightfieldSmallestGrid(t *testing.T) {
	s, err := BuildHeightfield(context.Background(), uniformGrid(t, 2, 2, 128), NewFactors(config.Default(), 2), nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Triangles() != 12 {
		t.Errorf("2x2 grid gave %d triangles, want 12", s.Triangles())
	}
}

// TestBuildHeightfieldFullIntensity uses a grid whose prepared intensity is 255
// everywhere, which is what a black source image produces
func TestBuildHeightfieldFullIntensity(t *testing.T) {
	params := config.Default()
	params.MinThickness = 0.8
	params.TotalThickness = 4.0
	params.FrameBorder = 3.0
	params.PanelWidth = 150.0

	f := NewFactors(params, 10)
	s, err := BuildHeightfield(context.Background(), uniformGrid(t, 10, 10, 255), f, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range s.Vertices() {
		if math.Abs(v.Z-3.2) > 1e-9 && math.Abs(v.Z+0.8) > 1e-9 {
			t.Fatalf("vertex %v has z outside {3.2, -0.8}", v)
		}
	}

	// surface triangles come first and lie at the top
	for _, v := range s.Vertices()[:6] {
		if math.Abs(v.Z-3.2) > 1e-9 {
			t.Errorf("surface vertex z = %v, want 3.2", v.Z)
		}
	}
	// the backplate is the last pair
	for _, v := range s.Vertices()[s.Len()-6:] {
		if v.Z != -0.8 {
			t.Errorf("backplate vertex z = %v, want -0.8", v.Z)
		}
	}
}

func TestBuildHeightfieldVolume(t *testing.T) {
	params := config.Default()
	f := NewFactors(params, 8)
	s, err := BuildHeightfield(context.Background(), uniformGrid(t, 8, 6, 255), f, nil)
	if err != nil {
		t.Fatal(err)
	}

	side := f.Width
	want := 7 * side * 5 * side * (params.TotalThickness - params.MinThickness + params.MinThickness)
	if got := geometry.SignedVolume(s.Vertices()); math.Abs(got-want) > 1e-6*want {
		t.Errorf("body volume = %v, want %v", got, want)
	}
}

func TestBuildHeightfieldBounds(t *testing.T) {
	params := config.Default()
	f := NewFactors(params, 10)
	s, err := BuildHeightfield(context.Background(), gradientGrid(t, 10, 7), f, nil)
	if err != nil {
		t.Fatal(err)
	}

	bbox, err := geometry.CalculateBoundingBox(s.Vertices())
	if err != nil {
		t.Fatal(err)
	}
	panel := f.Panel(10, 7)
	if math.Abs(bbox.Min.X-params.FrameBorder) > 1e-9 || math.Abs(bbox.Max.X-(panel.Width-params.FrameBorder)) > 1e-9 {
		t.Errorf("x range = [%v, %v], want [%v, %v]", bbox.Min.X, bbox.Max.X, params.FrameBorder, panel.Width-params.FrameBorder)
	}
	if math.Abs(bbox.Max.Y-(panel.Height-params.FrameBorder)) > 1e-9 {
		t.Errorf("max y = %v, want %v", bbox.Max.Y, panel.Height-params.FrameBorder)
	}
	if bbox.Min.Z != -params.MinThickness {
		t.Errorf("min z = %v, want %v", bbox.Min.Z, -params.MinThickness)
	}
}

func TestBuildHeightfieldProgress(t *testing.T) {
	var calls []int
	_, err := BuildHeightfield(context.Background(), gradientGrid(t, 4, 6), NewFactors(config.Default(), 4), func(done, total int) {
		if total != 5 {
			t.Errorf("total = %d, want 5", total)
		}
		calls = append(calls, done)
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(calls) != 5 {
		t.Fatalf("progress called %d times, want 5", len(calls))
	}
	for i, done := range calls {
		if done != i+1 {
			t.Errorf("call %d reported %d, want %d", i, done, i+1)
		}
	}
}

func TestBuildHeightfieldCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	grid := gradientGrid(t, 5, 20)

	s, err := BuildHeightfield(ctx, grid, NewFactors(config.Default(), 5), func(done, total int) {
		if done == 3 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if s != nil {
		t.Error("cancelled build returned a stream")
	}
}

func TestPanel(t *testing.T) {
	params := config.Default()
	params.PanelWidth = 100
	params.FrameBorder = 5
	f := NewFactors(params, 9)

	if math.Abs(f.Width-10) > 1e-12 {
		t.Fatalf("width factor = %v, want 10", f.Width)
	}
	panel := f.Panel(9, 4)
	if math.Abs(panel.Width-90) > 1e-9 {
		t.Errorf("panel width = %v, want 90", panel.Width)
	}
	if math.Abs(panel.Height-40) > 1e-9 {
		t.Errorf("panel height = %v, want 40", panel.Height)
	}
}

func testPanel() Panel {
	return Panel{Width: 100, Height: 80, Border: 3, MinThickness: 0.8, TotalThickness: 4}
}

func TestAccessories(t *testing.T) {
	panel := testPanel()

	tests := []struct {
		name      string
		stream    *Stream
		triangles int
	}{
		{"frame", Frame(panel, 1.0), 40},
		{"steep frame", Frame(panel, 0), 40},
		{"full bevel frame", Frame(panel, 2), 32},
		{"clamped bevel frame", Frame(panel, 5), 32},
		{"stabilizers", Stabilizers(panel, StabilizerOptions{Threshold: 60, HeightRatio: 0.1}), 80},
		{"permanent stabilizers", Stabilizers(panel, StabilizerOptions{Threshold: 60, HeightRatio: 0.2, Permanent: true}), 80},
		{"one hanger", Hangers(panel, 1), 40},
		{"three hangers", Hangers(panel, 3), 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.stream.Triangles() != tt.triangles {
				t.Errorf("got %d triangles, want %d", tt.stream.Triangles(), tt.triangles)
			}
			assertClosed(t, tt.stream)
			if vol := geometry.SignedVolume(tt.stream.Vertices()); vol <= 0 {
				t.Errorf("signed volume = %v, want positive", vol)
			}
		})
	}
}

func TestFrameEnclosesPanel(t *testing.T) {
	panel := testPanel()
	bbox, err := geometry.CalculateBoundingBox(Frame(panel, 1.0).Vertices())
	if err != nil {
		t.Fatal(err)
	}

	if bbox.Min != (r3.Vec{X: 0, Y: 0, Z: -0.8}) {
		t.Errorf("frame min = %v", bbox.Min)
	}
	if bbox.Max != (r3.Vec{X: panel.Width, Y: panel.Height, Z: 4}) {
		t.Errorf("frame max = %v", bbox.Max)
	}
}

// TestFrameBevelRun checks that the slope counts in half border widths
func TestFrameBevelRun(t *testing.T) {
	panel := testPanel()

	tests := []struct {
		slope float64
		inset float64
	}{
		{0, 3},
		{1, 1.5},
		{0.5, 2.25},
	}

	for _, tt := range tests {
		want := r3.Vec{X: tt.inset, Y: tt.inset, Z: panel.TotalThickness}
		found := false
		for _, v := range Frame(panel, tt.slope).Vertices() {
			if r3.Norm(r3.Sub(v, want)) < 1e-9 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("slope %g: no front edge vertex at %v", tt.slope, want)
		}
	}
}

func TestFrameHasNoCollapsedTriangles(t *testing.T) {
	for _, slope := range []float64{0, 1, 1.99, 2, 3} {
		v := Frame(testPanel(), slope).Vertices()
		for i := 0; i < len(v); i += 3 {
			if v[i] == v[i+1] || v[i+1] == v[i+2] || v[i] == v[i+2] {
				t.Fatalf("slope %g: triangle %d repeats a vertex: %v", slope, i/3, v[i:i+3])
			}
		}
	}
}

func TestFrameWithoutBorder(t *testing.T) {
	panel := testPanel()
	panel.Border = 0
	if n := Frame(panel, 1.0).Triangles(); n != 0 {
		t.Errorf("borderless frame has %d triangles, want 0", n)
	}
}

func TestStabilizerGating(t *testing.T) {
	panel := testPanel()

	tests := []struct {
		name      string
		border    float64
		threshold float64
		want      int
	}{
		{"tall panel", 3, 60, 80},
		{"short panel", 3, 80, 0},
		{"no border", 0, 60, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := panel
			p.Border = tt.border
			s := Stabilizers(p, StabilizerOptions{Threshold: tt.threshold, HeightRatio: 0.1})
			if s.Triangles() != tt.want {
				t.Errorf("got %d triangles, want %d", s.Triangles(), tt.want)
			}
		})
	}
}

func TestStabilizerFinWidthIsCapped(t *testing.T) {
	panel := testPanel()
	panel.Border = 10
	s := Stabilizers(panel, StabilizerOptions{Threshold: 0, HeightRatio: 0.1})

	bbox, err := geometry.CalculateBoundingBox(s.Vertices()[:s.Len()/2])
	if err != nil {
		t.Fatal(err)
	}
	if bbox.Width() != maxStabilizerFinWidth {
		t.Errorf("fin width = %v, want %v", bbox.Width(), maxStabilizerFinWidth)
	}
}

func TestStabilizerClearance(t *testing.T) {
	panel := testPanel()

	for _, permanent := range []bool{false, true} {
		s := Stabilizers(panel, StabilizerOptions{Threshold: 0, HeightRatio: 0.1, Permanent: permanent})
		// the first triangle is the front fin's top cap
		wantZ := panel.TotalThickness + stabilizerClearance
		if permanent {
			wantZ = panel.TotalThickness
		}
		minZ := math.Inf(1)
		for _, v := range s.Vertices()[:24] {
			minZ = math.Min(minZ, v.Z)
		}
		if math.Abs(minZ-wantZ) > 1e-12 {
			t.Errorf("permanent=%v: front fin starts at z=%v, want %v", permanent, minZ, wantZ)
		}
	}
}

func TestHangerPlacement(t *testing.T) {
	panel := testPanel()
	s := Hangers(panel, 2)

	v := s.Vertices()
	for i, wantMin := range []float64{25 - hangerWidth/2, 75 - hangerWidth/2} {
		bbox, err := geometry.CalculateBoundingBox(v[i*120 : (i+1)*120])
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(bbox.Min.X-wantMin) > 1e-9 || math.Abs(bbox.Width()-hangerWidth) > 1e-9 {
			t.Errorf("hanger %d spans x [%v, %v], want start %v width %v", i, bbox.Min.X, bbox.Max.X, wantMin, hangerWidth)
		}
		if bbox.Min.Y != panel.Height {
			t.Errorf("hanger %d starts at y=%v, want %v", i, bbox.Min.Y, panel.Height)
		}
		if bbox.Min.Z != -panel.MinThickness || math.Abs(bbox.Depth()-hangerDepth) > 1e-12 {
			t.Errorf("hanger %d z range [%v, %v]", i, bbox.Min.Z, bbox.Max.Z)
		}
	}
}

func TestStreamQuad(t *testing.T) {
	s := NewStream(0)
	a, b, c, d := r3.Vec{X: 0}, r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1}, r3.Vec{Y: 1}
	s.Quad(a, b, c, d)

	want := []r3.Vec{a, b, c, a, c, d}
	if s.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(want))
	}
	for i, v := range s.Vertices() {
		if v != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, v, want[i])
		}
	}

	other := NewStream(1)
	other.Triangle(a, b, c)
	s.Append(other)
	s.Append(nil)
	if s.Triangles() != 3 {
		t.Errorf("Triangles() = %d after append, want 3", s.Triangles())
	}
}
