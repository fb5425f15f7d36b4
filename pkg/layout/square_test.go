package layout

import (
	"testing"

	"github.com/matzehuels/flowgrid/pkg/errors"
)

func TestSquareGrid(t *testing.T) {
	p := DefaultParams()
	p.Gutter = 10
	items := ratios(1, 2, 0.5, 1)
	items[3].CaptionHeight = 30
	got, err := Compute(Square, items, 620, p)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	for i, pl := range got {
		if pl.Width != 200 || pl.Height != 200 {
			t.Errorf("[%d] size = %vx%v, want 200x200", i, pl.Width, pl.Height)
		}
	}
	if got[0].Crop {
		t.Error("square item should not be cropped")
	}
	if !got[1].Crop || got[1].CropOffsetX != -100 || got[1].CropOffsetY != 0 {
		t.Errorf("landscape crop = %+v, want offset x=-100", got[1])
	}
	if !got[2].Crop || got[2].CropOffsetY != -100 || got[2].CropOffsetX != 0 {
		t.Errorf("portrait crop = %+v, want offset y=-100", got[2])
	}
	if got[3].Row != 1 || got[3].Column != 0 || got[3].Y != 210 {
		t.Errorf("fourth cell = row %d col %d y %v, want row 1 col 0 y 210", got[3].Row, got[3].Column, got[3].Y)
	}
	if got[3].CaptionOffset != 170 {
		t.Errorf("CaptionOffset = %v, want 170", got[3].CaptionOffset)
	}
}

func TestSquareDefaultColumns(t *testing.T) {
	got, err := Compute(Square, ratios(1, 1, 1, 1), 300, DefaultParams())
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if got[0].Width != 100 {
		t.Errorf("side = %v, want 100", got[0].Width)
	}
	if got[3].Row != 1 {
		t.Errorf("fourth item row = %d, want 1", got[3].Row)
	}
}

func TestSquareGutterTooWide(t *testing.T) {
	p := DefaultParams()
	p.Gutter = 500
	_, err := Compute(Square, ratios(1), 900, p)
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("Compute() error = %v, want CONFIGURATION", err)
	}
}
