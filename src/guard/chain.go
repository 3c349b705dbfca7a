package guard

import "context"

// Checker is the common contract of every publish guard.
type Checker interface {
	Check(ctx context.Context) error
}

// Chain runs guards in order and stops at the first failure.
type Chain []Checker

// Check implements the pipeline's publish guard contract.
func (c Chain) Check(ctx context.Context) error {
	for _, g := range c {
		if err := g.Check(ctx); err != nil {
			return err
		}
	}
	return nil
}
