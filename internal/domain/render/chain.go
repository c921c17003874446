package render

import "context"

// Strategy is one way of producing a value. Earlier strategies in a Chain
// are preferred.
type Strategy[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Failure records a strategy that did not produce a value.
type Failure struct {
	Strategy string
	Err      error
}

// Outcome reports which strategy produced the value, if any.
type Outcome[T any] struct {
	Value    T
	Strategy string
	OK       bool
	Failures []Failure
}

// Chain is an ordered list of fallbacks evaluated top-down.
type Chain[T any] []Strategy[T]

// Run tries each strategy in order and stops at the first success. When
// every strategy fails, or ctx is done, Outcome.OK is false.
func (c Chain[T]) Run(ctx context.Context) Outcome[T] {
	var out Outcome[T]
	for _, s := range c {
		if err := ctx.Err(); err != nil {
			out.Failures = append(out.Failures, Failure{Strategy: s.Name, Err: err})
			return out
		}
		v, err := s.Run(ctx)
		if err != nil {
			out.Failures = append(out.Failures, Failure{Strategy: s.Name, Err: err})
			continue
		}
		out.Value = v
		out.Strategy = s.Name
		out.OK = true
		return out
	}
	return out
}
