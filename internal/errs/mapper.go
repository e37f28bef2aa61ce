package errs

import (
	"errors"
)

// Exposable is an error representation that is safe to hand to a caller.
type Exposable[T any] interface {
	WithContext(m map[string]any) T
	DefaultError() T
}

// Mapping binds a chain of internal errors to the error exposed for it.
type Mapping[T Exposable[T]] struct {
	Chain   []error                    // every error must be found in the internal chain
	Exposed T                          // returned when the chain matches
	Context func(error) map[string]any // optional details taken from the internal error
}

type Mapper[T Exposable[T]] struct {
	mappings []Mapping[T]
	priority []Mapping[T]
}

func NewMapper[T Exposable[T]](mappings []Mapping[T], priority []Mapping[T]) *Mapper[T] {
	return &Mapper[T]{
		mappings: mappings,
		priority: priority,
	}
}

// Transform resolves err using these rules:
// 1. any match in the priority group wins
// 2. otherwise the mapping whose whole chain matches with the most errors wins
// 3. with no match the default error is returned
func (m *Mapper[T]) Transform(err error) T {
	for _, p := range m.priority {
		if CountMatching(err, p.Chain) > 0 {
			return p.Exposed
		}
	}

	best, found := m.bestMatch(err)
	if !found {
		var zero T
		return zero.DefaultError()
	}

	if best.Context != nil {
		return best.Exposed.WithContext(best.Context(err))
	}

	return best.Exposed
}

func (m *Mapper[T]) bestMatch(err error) (Mapping[T], bool) {
	var (
		best  Mapping[T]
		score int
	)

	for _, candidate := range m.mappings {
		count := CountMatching(err, candidate.Chain)
		if count == 0 || count < len(candidate.Chain) {
			continue
		}

		// first mapping wins on equal score
		if count > score {
			best = candidate
			score = count
		}
	}

	return best, score > 0
}

// CountMatching counts how many candidates are found in the chain of err.
func CountMatching(err error, candidates []error) int {
	matched := 0

	for _, candidate := range candidates {
		if errors.Is(err, candidate) {
			matched++
		}
	}

	return matched
}
