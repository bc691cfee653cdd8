package procedure

import "iter"

// Stream is the result of a procedure member: a sequence of output records,
// each paired with the error that stopped production, if any. A non-nil
// error ends the stream.
type Stream[R any] = iter.Seq2[R, error]

// Of returns a stream producing records in order.
func Of[R any](records ...R) Stream[R] {
	return func(yield func(R, error) bool) {
		for _, r := range records {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Empty returns a stream producing no records.
func Empty[R any]() Stream[R] {
	return func(func(R, error) bool) {}
}

// Fail returns a stream whose first pull fails with err.
func Fail[R any](err error) Stream[R] {
	return func(yield func(R, error) bool) {
		var zero R
		yield(zero, err)
	}
}

// FromSeq adapts an infallible sequence.
func FromSeq[R any](seq iter.Seq[R]) Stream[R] {
	return func(yield func(R, error) bool) {
		for r := range seq {
			if !yield(r, nil) {
				return
			}
		}
	}
}
