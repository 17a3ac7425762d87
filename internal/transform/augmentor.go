package transform

import "github.com/seglab/segfeed/internal/domain"

// Augmentor mutates a sample in place.
type Augmentor interface {
	Augment(s *domain.Sample) error
}

// Combined chains several augmentors into one, applied in order.
type Combined struct {
	augmentors []Augmentor
}

// NewCombined creates a chain from the given augmentors.
func NewCombined(augmentors ...Augmentor) *Combined {
	return &Combined{augmentors: augmentors}
}

// Add appends an augmentor to the chain.
func (c *Combined) Add(a Augmentor) {
	c.augmentors = append(c.augmentors, a)
}

// Len returns the number of augmentors in the chain.
func (c *Combined) Len() int { return len(c.augmentors) }

// Augment runs the chain. The first failing augmentor aborts the sample.
func (c *Combined) Augment(s *domain.Sample) error {
	for _, a := range c.augmentors {
		if err := a.Augment(s); err != nil {
			return err
		}
	}
	return nil
}
