package domain

import "testing"

func TestImage_Layout(t *testing.T) {
	im := NewImage(3, 2)

	im.Set(1, 1, 2, 0.5)
	if got := im.At(1, 1, 2); got != 0.5 {
		t.Errorf("At(1,1,2) = %v, want 0.5", got)
	}
	// Plane 1, row 1, col 2 in the flat backing.
	if got := im.Pix[1*6+1*3+2]; got != 0.5 {
		t.Errorf("Pix offset = %v, want 0.5", got)
	}
	if got := im.Plane(1)[1*3+2]; got != 0.5 {
		t.Errorf("Plane(1) offset = %v, want 0.5", got)
	}
}

func TestImage_Clone(t *testing.T) {
	im := NewImage(2, 2)
	im.Set(0, 0, 0, 1)

	c := im.Clone()
	c.Set(0, 0, 0, 2)

	if im.At(0, 0, 0) != 1 {
		t.Error("Clone() shares backing with original")
	}
}

func TestLabelMap_Fill(t *testing.T) {
	m := NewLabelMap(2, 2, IgnoreLabel)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if m.At(y, x) != IgnoreLabel {
				t.Fatalf("At(%d,%d) = %d, want %d", y, x, m.At(y, x), IgnoreLabel)
			}
		}
	}

	m.Set(1, 0, 7)
	if m.At(1, 0) != 7 {
		t.Errorf("At(1,0) = %d, want 7", m.At(1, 0))
	}
}

func TestLabelMap_Clone(t *testing.T) {
	m := NewLabelMap(2, 2, 0)
	m.Set(0, 1, 3)

	c := m.Clone()
	c.Set(0, 1, 5)

	if m.At(0, 1) != 3 {
		t.Error("Clone() shares backing with original")
	}
}
