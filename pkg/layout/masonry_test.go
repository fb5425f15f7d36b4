package layout

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/flowgrid/pkg/errors"
)

func TestMasonryRoundRobinSquares(t *testing.T) {
	p := DefaultParams()
	p.Gutter = 10
	p.Columns = 3
	got, err := Compute(Masonry, ratios(1, 1, 1, 1, 1, 1), 620, p)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	wantCol := []int{0, 1, 2, 0, 1, 2}
	wantRow := []int{0, 0, 0, 1, 1, 1}
	for i, pl := range got {
		if pl.Column != wantCol[i] || pl.Row != wantRow[i] {
			t.Errorf("[%d] column/row = %d/%d, want %d/%d", i, pl.Column, pl.Row, wantCol[i], wantRow[i])
		}
		if pl.Width != 200 || pl.Height != 200 {
			t.Errorf("[%d] size = %vx%v, want 200x200", i, pl.Width, pl.Height)
		}
	}
	if got[3].Y != 210 || got[4].X != 210 {
		t.Errorf("second row item = (%v,%v), want y=210 and x=210", got[4].X, got[3].Y)
	}
}

func TestMasonryShortestColumn(t *testing.T) {
	p := DefaultParams()
	p.Gutter = 10
	p.Columns = 2
	got, err := Compute(Masonry, ratios(1, 0.5, 1, 1), 410, p)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	wantCol := []int{0, 1, 0, 1}
	wantY := []float64{0, 0, 210, 410}
	for i, pl := range got {
		if pl.Column != wantCol[i] || pl.Y != wantY[i] {
			t.Errorf("[%d] column/y = %d/%v, want %d/%v", i, pl.Column, pl.Y, wantCol[i], wantY[i])
		}
	}
}

func TestMasonryColumns(t *testing.T) {
	tests := []struct {
		name    string
		width   float64
		columns int
		minCol  float64
		gutter  float64
		want    int
	}{
		{"fixed", 1000, 5, 240, 10, 5},
		{"derived", 1000, 0, 240, 10, 4},
		{"narrow", 100, 0, 240, 10, 1},
		{"exact fit", 500, 0, 240, 10, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			p.Columns = tt.columns
			p.MinColumnWidth = tt.minCol
			p.Gutter = tt.gutter
			if got := MasonryColumns(tt.width, p); got != tt.want {
				t.Errorf("MasonryColumns() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMasonryCaptions(t *testing.T) {
	p := DefaultParams()
	p.Columns = 2
	items := ratios(1, 1, 1)
	items[0].CaptionHeight = 30
	got, err := Compute(Masonry, items, 400, p)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if got[0].Height != 230 || got[0].CaptionOffset != 200 {
		t.Errorf("captioned = %+v, want height 230 and caption offset 200", got[0])
	}
	// Column 1 is shorter after the caption, so the third item goes there.
	if got[2].Column != 1 || got[2].Y != 200 {
		t.Errorf("third item column/y = %d/%v, want 1/200", got[2].Column, got[2].Y)
	}
}

func TestMasonryGutterTooWide(t *testing.T) {
	p := DefaultParams()
	p.Columns = 10
	p.Gutter = 200
	_, err := Compute(Masonry, ratios(1), 1000, p)
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("Compute() error = %v, want CONFIGURATION", err)
	}
}

func TestMasonryBalance(t *testing.T) {
	tests := []struct {
		name    string
		seed    uint64
		columns int
		gutter  float64
		caption bool
	}{
		{"one column", 1, 1, 0, false},
		{"two columns", 2, 2, 8, false},
		{"three columns captions", 3, 3, 12, true},
		{"four columns no gutter", 4, 4, 0, true},
		{"six columns", 5, 6, 16, false},
		{"six columns captions", 6, 6, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(tt.seed, 0))
			for trial := 0; trial < 200; trial++ {
				n := 1 + rng.IntN(40)
				rs := make([]float64, n)
				for i := range rs {
					rs[i] = 0.25 + rng.Float64()*3.75
				}
				items := ratios(rs...)
				if tt.caption {
					for i := range items {
						if rng.IntN(3) == 0 {
							items[i].CaptionHeight = float64(10 + rng.IntN(40))
						}
					}
				}

				p := DefaultParams()
				p.Columns = tt.columns
				p.Gutter = tt.gutter
				got, err := Compute(Masonry, items, 1200, p)
				if err != nil {
					t.Fatalf("Compute() error: %v", err)
				}
				checkMasonryBalance(t, fmt.Sprintf("trial %d", trial), got, tt.columns, tt.gutter)
			}
		})
	}
}

// checkMasonryBalance asserts every column index is in range and that no
// column ends further below the shortest one than its own last item.
func checkMasonryBalance(t *testing.T, name string, ps []Placement, cols int, gutter float64) {
	t.Helper()
	heights := make([]float64, cols)
	last := make([]float64, cols)
	for _, pl := range ps {
		if pl.Column < 0 || pl.Column >= cols {
			t.Fatalf("%s: column = %d, want in [0, %d)", name, pl.Column, cols)
		}
		heights[pl.Column] += pl.Height + gutter
		last[pl.Column] = pl.Height + gutter
	}
	low := heights[0]
	for _, h := range heights[1:] {
		low = min(low, h)
	}
	for c, h := range heights {
		if h-low > last[c]+1e-9 {
			t.Errorf("%s: column %d height %v exceeds shortest %v by more than its last item %v", name, c, h, low, last[c])
		}
	}
}
