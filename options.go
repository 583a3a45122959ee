package eventmap

import (
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/differ"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/reconciler"
)

// Option is a function that configures a Client.
type Option func(*options) error

type options struct {
	reconcilerOpts []reconciler.Option
	differOpts     []differ.Option
	initialEvents  []*catalogs.Event
}

func defaults() *options {
	return &options{}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithReconcilerOptions passes options through to the underlying
// reconciler (rules, aliases, thresholds, clock).
func WithReconcilerOptions(opts ...reconciler.Option) Option {
	return func(o *options) error {
		o.reconcilerOpts = append(o.reconcilerOpts, opts...)
		return nil
	}
}

// WithDifferOptions configures how consecutive builds are compared.
func WithDifferOptions(opts ...differ.Option) Option {
	return func(o *options) error {
		o.differOpts = append(o.differOpts, opts...)
		return nil
	}
}

// WithInitialEvents seeds the previous build, typically from a published
// index, so the first Build already fires change hooks.
func WithInitialEvents(events []*catalogs.Event) Option {
	return func(o *options) error {
		if events == nil {
			return &errors.ValidationError{Field: "initial_events", Message: "cannot be nil"}
		}
		o.initialEvents = events
		return nil
	}
}
