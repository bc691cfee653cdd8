package procedure

import (
	"errors"
	"iter"

	"github.com/roach88/procrt/internal/ir"
)

// RowsSummary describes how a Rows sequence ended.
type RowsSummary struct {
	Procedure string
	Rows      int   // rows handed to the consumer
	Err       error // terminal error, nil if exhausted or closed early
	Exhausted bool  // true when the procedure ran to completion
}

// Rows is a pull-based, single-pass sequence of result rows.
//
// The underlying procedure runs only as far as the consumer pulls: at most
// one row is buffered ahead of it, for HasMore. A failure is reported at
// the pull that requested the failing row and is sticky from then on.
//
// Rows is not safe for concurrent use.
type Rows struct {
	procedure string
	next      func() (ir.Row, error, bool)
	stop      func()

	row      ir.Row
	buffered bool

	done      bool // no more rows will be pulled from the source
	exhausted bool
	err       error
	count     int

	onClose  []func(RowsSummary)
	notified bool
}

func newRows(procedure string, seq iter.Seq2[ir.Row, error]) *Rows {
	next, stop := iter.Pull2(seq)
	return &Rows{procedure: procedure, next: next, stop: stop}
}

// HasMore reports whether a further row is available, pulling it from the
// procedure if needed. It returns the sticky error once production failed.
func (r *Rows) HasMore() (bool, error) {
	r.fill()
	if r.buffered {
		return true, nil
	}
	return false, r.err
}

// Next returns the next row. It returns ErrExhausted after the last row and
// the sticky *InvocationError after a failure.
func (r *Rows) Next() (ir.Row, error) {
	r.fill()
	if r.buffered {
		row := r.row
		r.row, r.buffered = nil, false
		r.count++
		return row, nil
	}
	if r.err != nil {
		return nil, r.err
	}
	return nil, ErrExhausted
}

// Close stops production and releases the procedure. It is idempotent and
// safe to call after exhaustion.
func (r *Rows) Close() error {
	r.row, r.buffered = nil, false
	if !r.done {
		r.done = true
		r.stop()
	}
	r.notify()
	return nil
}

// OnClose registers fn to run once when the sequence ends, whether it was
// exhausted, failed or closed. If it already ended fn runs immediately.
func (r *Rows) OnClose(fn func(RowsSummary)) {
	if r.notified {
		fn(r.summary())
		return
	}
	r.onClose = append(r.onClose, fn)
}

// All ranges over the remaining rows. The sequence stops after yielding an
// error. Rows is closed when the loop ends, including on break.
func (r *Rows) All() iter.Seq2[ir.Row, error] {
	return func(yield func(ir.Row, error) bool) {
		defer r.Close()
		for {
			row, err := r.Next()
			if errors.Is(err, ErrExhausted) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// Collect drains the remaining rows and closes the sequence.
func (r *Rows) Collect() ([]ir.Row, error) {
	var out []ir.Row
	for row, err := range r.All() {
		if err != nil {
			return out, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *Rows) fill() {
	if r.buffered || r.done {
		return
	}

	row, err, ok, panicked := r.pull()
	switch {
	case panicked != nil:
		// A panicking iterator is already finished; stop must not be called.
		r.done = true
		r.err = &InvocationError{Procedure: r.procedure, Row: r.count, Cause: panicked}
	case !ok:
		r.done = true
		r.exhausted = true
	case err != nil:
		r.done = true
		r.stop()
		r.err = &InvocationError{Procedure: r.procedure, Row: r.count, Cause: err}
	default:
		r.row, r.buffered = row, true
		return
	}
	r.notify()
}

func (r *Rows) pull() (row ir.Row, err error, ok bool, panicked *PanicError) {
	defer func() {
		if v := recover(); v != nil {
			panicked = &PanicError{Value: v}
		}
	}()
	row, err, ok = r.next()
	return row, err, ok, nil
}

func (r *Rows) summary() RowsSummary {
	return RowsSummary{
		Procedure: r.procedure,
		Rows:      r.count,
		Err:       r.err,
		Exhausted: r.exhausted,
	}
}

func (r *Rows) notify() {
	if r.notified || !r.done {
		return
	}
	r.notified = true
	s := r.summary()
	for _, fn := range r.onClose {
		fn(s)
	}
	r.onClose = nil
}
