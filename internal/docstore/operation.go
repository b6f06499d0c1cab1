package docstore

import (
	"context"
	"github.com/pkg/errors"
)

// Operation is a handle on a long running export or import.
type Operation interface {
	Name() string
	Done() <-chan struct{}
	// Wait blocks until the operation completes or ctx expires, whichever
	// comes first. An expired ctx does not stop the operation by itself.
	Wait(ctx context.Context) error
}

type operation struct {
	name string
	done chan struct{}
	err  error
}

func startOperation(ctx context.Context, name string, fn func(ctx context.Context) error) Operation {
	op := &operation{name: name, done: make(chan struct{})}
	go func() {
		defer close(op.done)
		op.err = fn(ctx)
	}()
	return op
}

func (o *operation) Name() string {
	return o.name
}

func (o *operation) Done() <-chan struct{} {
	return o.done
}

func (o *operation) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "operation %s did not complete", o.name)
	}
}
