package layout

import "testing"

func TestPlacementEdges(t *testing.T) {
	p := Placement{X: 10, Y: 20, Width: 100, Height: 50}
	if p.Right() != 110 || p.Bottom() != 70 {
		t.Errorf("Right/Bottom = %v/%v, want 110/70", p.Right(), p.Bottom())
	}
	if p.CenterX() != 60 || p.CenterY() != 45 {
		t.Errorf("CenterX/CenterY = %v/%v, want 60/45", p.CenterX(), p.CenterY())
	}
}

func TestExtent(t *testing.T) {
	ps := []Placement{
		{Y: 0, Height: 100},
		{Y: 50, Height: 200},
		{Y: 110, Height: 30},
	}
	if got := Extent(ps); got != 250 {
		t.Errorf("Extent() = %v, want 250", got)
	}
	if got := Extent(nil); got != 0 {
		t.Errorf("Extent(nil) = %v, want 0", got)
	}
}

func TestClone(t *testing.T) {
	ps := []Placement{{ItemID: "a"}}
	c := Clone(ps)
	c[0].ItemID = "b"
	if ps[0].ItemID != "a" {
		t.Error("Clone shares memory with the original")
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}
