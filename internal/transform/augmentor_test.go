package transform

import (
	"errors"
	"testing"

	"github.com/seglab/segfeed/internal/domain"
)

type recordingAugmentor struct {
	name string
	log  *[]string
	err  error
}

func (a *recordingAugmentor) Augment(s *domain.Sample) error {
	*a.log = append(*a.log, a.name)
	return a.err
}

func gradientSample(w, h int) *domain.Sample {
	s := &domain.Sample{
		Image:  domain.NewImage(w, h),
		Target: domain.NewLabelMap(w, h, 0),
	}
	for i := range s.Image.Pix {
		s.Image.Pix[i] = float32(i%7) / 7
	}
	for i := range s.Target.Classes {
		s.Target.Classes[i] = uint8(i % 3)
	}
	return s
}

func TestCombined_Order(t *testing.T) {
	var log []string
	c := NewCombined(
		&recordingAugmentor{name: "first", log: &log},
		&recordingAugmentor{name: "second", log: &log},
	)
	c.Add(&recordingAugmentor{name: "third", log: &log})

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if err := c.Augment(gradientSample(4, 4)); err != nil {
		t.Fatalf("Augment() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(log) != len(want) {
		t.Fatalf("ran %d augmentors, want %d", len(log), len(want))
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("step %d = %s, want %s", i, log[i], want[i])
		}
	}
}

func TestCombined_AbortsOnError(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	c := NewCombined(
		&recordingAugmentor{name: "first", log: &log},
		&recordingAugmentor{name: "failing", log: &log, err: boom},
		&recordingAugmentor{name: "never", log: &log},
	)

	if err := c.Augment(gradientSample(4, 4)); !errors.Is(err, boom) {
		t.Fatalf("Augment() error = %v, want boom", err)
	}
	if len(log) != 2 {
		t.Errorf("ran %d augmentors before abort, want 2", len(log))
	}
}

func TestCombined_Empty(t *testing.T) {
	if err := NewCombined().Augment(gradientSample(2, 2)); err != nil {
		t.Errorf("Augment() on empty chain, error = %v", err)
	}
}
