// Package future implements an eventual-value container with chaining and
// combinators, designed for cooperative single-threaded scheduling.
//
// The package is centred around the generic type Future that represents the
// eventual success or failure of an asynchronous operation. A Future starts
// out Pending and settles exactly once, either to Fulfilled with a value or
// to Rejected with an error. Once settled, the outcome is immutable; any
// further Resolve or Reject call is a no-op.
//
// Callbacks registered before settlement run in registration order when the
// Future settles. Callbacks registered after settlement run immediately with
// the already-known outcome, so registration order relative to settlement
// never causes a missed notification.
//
// # Chaining
//
// Go methods cannot introduce new type parameters, so type-changing chaining
// is exposed as package-level functions:
//
//	f := future.New[int]()
//	g := future.Then(f, func(v int) (string, error) {
//	    return strconv.Itoa(v), nil
//	})
//
// ThenFuture is the adoption entry point: when a handler needs to produce
// another Future, the derived Future subscribes to the inner one and takes on
// its eventual outcome instead of nesting it. Adoption is structural: there
// is no dynamic inspection of handler return values.
//
// # Combinators
//
// All, AllSettled, Race and Any compose a fixed slice of Futures into one.
// Inputs that are already settled participate like any other; to feed a plain
// value into a combinator, wrap it with Resolved or NewRejected.
//
// # Error Handling
//
// Rejection always carries the original error value, never a stringified
// copy. A panic inside a chained handler is recovered and rejects the derived
// Future with an error wrapping ErrPanic. Any reports total failure with an
// *AggregateError holding every reason in input order.
//
// # Concurrency
//
// A Future is safe for concurrent use. The internal mutex is never held while
// user callbacks run, so callbacks may freely settle or subscribe to other
// Futures, including the one that invoked them.
package future
