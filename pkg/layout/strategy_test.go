package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"justified", Justified, false},
		{"Masonry", Masonry, false},
		{" square ", Square, false},
		{"overflow_height", OverflowHeight, false},
		{"FIT-SCREEN", FitScreen, false},
		{"grid", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("error code = %v, want CONFIGURATION", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStrategiesNext(t *testing.T) {
	all := Strategies()
	if len(all) != 5 {
		t.Fatalf("len(Strategies()) = %d, want 5", len(all))
	}
	s := all[0]
	for i := 1; i <= len(all); i++ {
		s = s.Next()
		if want := all[i%len(all)]; s != want {
			t.Errorf("Next() step %d = %q, want %q", i, s, want)
		}
	}
	if Strategy("bogus").Next() != all[0] {
		t.Error("unknown strategy should advance to the first")
	}
}

func TestComputeRejects(t *testing.T) {
	items := ratios(1)
	tests := []struct {
		name  string
		s     Strategy
		width float64
		p     Params
	}{
		{"unknown strategy", "bogus", 100, DefaultParams()},
		{"zero width", Justified, 0, DefaultParams()},
		{"negative width", Justified, -5, DefaultParams()},
		{"nan width", Justified, math.NaN(), DefaultParams()},
		{"bad params", Justified, 100, Params{TargetRowHeight: -1, LastRow: LastRowLeft, MinColumnWidth: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.s, items, tt.width, tt.p)
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("Compute() error = %v, want CONFIGURATION", err)
			}
		})
	}
}

func TestComputeSkipsUnresolved(t *testing.T) {
	items := []item.Item{
		{ID: "a", AspectRatio: 1},
		{ID: "pending", Src: "slow.jpg"},
		{ID: "b", AspectRatio: 1},
	}
	for _, s := range Strategies() {
		t.Run(s.String(), func(t *testing.T) {
			p := DefaultParams()
			p.ViewportHeight = 800
			got, err := Compute(s, items, 600, p)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("len = %d, want 2", len(got))
			}
			if got[0].ItemID != "a" || got[1].ItemID != "b" {
				t.Errorf("ids = [%s %s], want [a b]", got[0].ItemID, got[1].ItemID)
			}
		})
	}
}

func TestComputeEmpty(t *testing.T) {
	got, err := Compute(Masonry, nil, 600, DefaultParams())
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Compute() = %#v, want empty non-nil slice", got)
	}
}

func TestComputeMaxWidth(t *testing.T) {
	p := DefaultParams()
	p.Gutter = 10
	p.MaxWidth = 620
	got, err := Compute(Square, ratios(1, 1, 1), 2000, p)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if got[2].Right() != 620 {
		t.Errorf("right edge = %v, want 620", got[2].Right())
	}
}

func TestComputeDeterministic(t *testing.T) {
	items := ratios(1.2, 0.7, 1.9, 1, 0.5, 1.6, 1.1)
	p := DefaultParams()
	p.Gutter = 6
	p.ViewportHeight = 700
	for _, s := range Strategies() {
		a, err := Compute(s, items, 1100, p)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		b, _ := Compute(s, items, 1100, p)
		if len(a) != len(b) {
			t.Fatalf("%s: lengths differ", s)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("%s: placement %d differs: %+v vs %+v", s, i, a[i], b[i])
			}
		}
	}
}

func TestComputeNoOverlap(t *testing.T) {
	items := ratios(1.2, 0.7, 1.9, 1, 0.5, 1.6, 1.1, 0.8, 1.4, 2.2)
	p := DefaultParams()
	p.Gutter = 4
	p.ViewportHeight = 600
	p.LastRow = LastRowJustify
	for _, s := range Strategies() {
		got, err := Compute(s, items, 1000, p)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		for i := range got {
			for j := i + 1; j < len(got); j++ {
				a, b := got[i], got[j]
				overlapX := a.X < b.Right()-1e-6 && b.X < a.Right()-1e-6
				overlapY := a.Y < b.Bottom()-1e-6 && b.Y < a.Bottom()-1e-6
				if overlapX && overlapY {
					t.Errorf("%s: %s overlaps %s", s, a.ItemID, b.ItemID)
				}
			}
		}
	}
}
