package iter

import (
	"context"

	"golang.org/x/exp/constraints"
)

type Iterator[A any] interface {
	// Next advances the iterator and returns true if another value was found.
	Next() bool

	// At returns the value at the current iterator position.
	At() A

	// Err returns the last error of the iterator.
	Err() error

	Close() error
}

type sliceIterator[A any] struct {
	list []A
	cur  A
}

func NewSliceIterator[A any](s []A) Iterator[A] {
	return &sliceIterator[A]{
		list: s,
	}
}

func (i *sliceIterator[A]) Err() error {
	return nil
}

func (i *sliceIterator[A]) Next() bool {
	if len(i.list) > 0 {
		i.cur = i.list[0]
		i.list = i.list[1:]
		return true
	}
	var a A
	i.cur = a
	return false
}

func (i *sliceIterator[A]) At() A {
	return i.cur
}

func (i *sliceIterator[A]) Close() error {
	return nil
}

// Slice drains the iterator into a slice and closes it.
func Slice[T any](it Iterator[T]) ([]T, error) {
	var result []T
	defer it.Close()
	for it.Next() {
		result = append(result, it.At())
	}
	return result, it.Err()
}

// Max returns the largest value of the iterator, or the zero value if it is
// empty.
func Max[T constraints.Ordered](it Iterator[T]) (T, error) {
	return extreme(it, func(v, m T) bool { return v > m })
}

// Min returns the smallest value of the iterator, or the zero value if it
// is empty.
func Min[T constraints.Ordered](it Iterator[T]) (T, error) {
	return extreme(it, func(v, m T) bool { return v < m })
}

func extreme[T constraints.Ordered](it Iterator[T], better func(v, m T) bool) (T, error) {
	var (
		m     T
		found bool
	)
	defer it.Close()
	for it.Next() {
		if v := it.At(); !found || better(v, m) {
			m, found = v, true
		}
	}
	return m, it.Err()
}

// ReadBatch reads the iterator in batches of up to batchSize elements and
// calls fn for each batch. The batch slice is reused between calls. The
// context is checked between batches, so long scans can be cancelled.
func ReadBatch[T any](ctx context.Context, it Iterator[T], batchSize int, fn func(context.Context, []T) error) error {
	defer it.Close()
	batch := make([]T, 0, batchSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch = batch[:0]
		for len(batch) < batchSize && it.Next() {
			batch = append(batch, it.At())
		}
		if err := it.Err(); err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(ctx, batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
	}
}
