package state

// Reducer computes the next state for one action kind. Implementations must be
// pure: no I/O, and the state argument is never modified in place.
type Reducer[S any] interface {
	Reduce(state S, a Action) (S, error)
}

// ReducerFunc adapts an ordinary function to the Reducer interface
type ReducerFunc[S any] func(S, Action) (S, error)

// Reduce satisfies the Reducer interface
func (f ReducerFunc[S]) Reduce(state S, a Action) (S, error) {
	return f(state, a)
}

// CombineReducers returns a reducer applying each reducer in order, feeding the
// result of one into the next
func CombineReducers[S any](reducers ...Reducer[S]) Reducer[S] {
	return ReducerFunc[S](func(s S, a Action) (S, error) {
		next := s
		for _, r := range reducers {
			var err error
			next, err = r.Reduce(next, a)
			if err != nil {
				return s, err
			}
		}
		return next, nil
	})
}
