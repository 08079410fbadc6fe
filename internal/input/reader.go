package input

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"keysonscreen/internal/logging"
)

// ErrNoDevicesLeft is returned by Reader.Run once every device has gone away.
var ErrNoDevicesLeft = errors.New("all input devices were lost")

// Reader reads every source concurrently and forwards events on a single
// channel. Events from one source keep their order, and a source that fails
// ends its stream with a KindDeviceLost event.
type Reader struct {
	logger logging.Logger
	onLost func(path string)
}

type ReaderOption func(*Reader)

func WithLogger(logger logging.Logger) ReaderOption {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDeviceLost registers a callback invoked, from the reading goroutine,
// after a device has been dropped and its KindDeviceLost event forwarded.
func WithDeviceLost(fn func(path string)) ReaderOption {
	return func(r *Reader) {
		r.onLost = fn
	}
}

func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{logger: logging.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run blocks until ctx is cancelled or no source is left. A source that
// fails to read is closed and dropped; the others keep running. All sources
// are closed when Run returns.
func (r *Reader) Run(ctx context.Context, sources []Source, out chan<- RawEvent) error {
	if len(sources) == 0 {
		return ErrNoDevices
	}
	group, gctx := errgroup.WithContext(ctx)
	closers := make([]*onceCloser, len(sources))
	for i, src := range sources {
		closers[i] = &onceCloser{Source: src}
	}
	var remaining atomic.Int32
	remaining.Store(int32(len(sources)))

	for _, src := range closers {
		group.Go(func() error {
			return r.read(gctx, src, &remaining, out)
		})
	}
	group.Go(func() error {
		<-gctx.Done()
		for _, src := range closers {
			src.close()
		}
		return nil
	})

	err := group.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (r *Reader) read(ctx context.Context, src *onceCloser, remaining *atomic.Int32, out chan<- RawEvent) error {
	path := src.Path()
	for {
		ev, err := src.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			src.close()
			r.logger.Warn("input_device_lost", logging.F("path", path), logging.F("error", err))
			select {
			case out <- DeviceLostEvent(path):
			case <-ctx.Done():
				return nil
			}
			if r.onLost != nil {
				r.onLost(path)
			}
			if remaining.Add(-1) == 0 {
				return ErrNoDevicesLeft
			}
			return nil
		}
		if ev == nil {
			continue
		}
		select {
		case out <- FromEvdev(ev, path):
		case <-ctx.Done():
			return nil
		}
	}
}

type onceCloser struct {
	Source
	once sync.Once
}

func (c *onceCloser) close() {
	c.once.Do(func() {
		_ = c.Source.Close()
	})
}
