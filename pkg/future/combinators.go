package future

import "sync"

// Outcome records the final state of one input to AllSettled.
type Outcome[T any] struct {
	Status Status
	Value  T     // set only when Status == Fulfilled
	Err    error // set only when Status == Rejected
}

// All derives a Future that fulfills with every input's value, in input
// order, once all inputs fulfill. It rejects with the first rejection
// observed; outcomes of the remaining inputs are discarded. An empty input
// fulfills immediately with an empty slice.
func All[T any](fs []*Future[T]) *Future[[]T] {
	if len(fs) == 0 {
		return Resolved([]T{})
	}

	out := New[[]T]()
	values := make([]T, len(fs))

	var mu sync.Mutex
	remaining := len(fs)

	for i, f := range fs {
		f.subscribe(
			func(v T) {
				mu.Lock()
				values[i] = v
				remaining--
				done := remaining == 0
				mu.Unlock()
				if done {
					out.Resolve(values)
				}
			},
			func(err error) { out.Reject(err) },
		)
	}

	return out
}

// AllSettled derives a Future that fulfills with one Outcome per input, in
// input order, once every input settles. It never rejects.
func AllSettled[T any](fs []*Future[T]) *Future[[]Outcome[T]] {
	if len(fs) == 0 {
		return Resolved([]Outcome[T]{})
	}

	out := New[[]Outcome[T]]()
	outcomes := make([]Outcome[T], len(fs))

	var mu sync.Mutex
	remaining := len(fs)

	record := func(i int, o Outcome[T]) {
		mu.Lock()
		outcomes[i] = o
		remaining--
		done := remaining == 0
		mu.Unlock()
		if done {
			out.Resolve(outcomes)
		}
	}

	for i, f := range fs {
		f.subscribe(
			func(v T) { record(i, Outcome[T]{Status: Fulfilled, Value: v}) },
			func(err error) { record(i, Outcome[T]{Status: Rejected, Err: err}) },
		)
	}

	return out
}

// Race derives a Future that settles with whichever input settles first,
// value or error. Later settlements are ignored, not cancelled. An empty
// input never settles.
func Race[T any](fs []*Future[T]) *Future[T] {
	out := New[T]()
	for _, f := range fs {
		f.subscribe(out.Resolve, out.Reject)
	}
	return out
}

// Any derives a Future that fulfills with the first input to fulfill. If
// every input rejects, it rejects with an *AggregateError holding all
// reasons in input order. An empty input rejects immediately.
func Any[T any](fs []*Future[T]) *Future[T] {
	if len(fs) == 0 {
		return NewRejected[T](&AggregateError{})
	}

	out := New[T]()
	reasons := make([]error, len(fs))

	var mu sync.Mutex
	remaining := len(fs)

	for i, f := range fs {
		f.subscribe(
			func(v T) { out.Resolve(v) },
			func(err error) {
				mu.Lock()
				reasons[i] = err
				remaining--
				done := remaining == 0
				mu.Unlock()
				if done {
					out.Reject(&AggregateError{Errors: reasons})
				}
			},
		)
	}

	return out
}
