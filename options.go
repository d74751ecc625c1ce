package inject

import (
	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
)

// DefaultMaxDepth bounds the dependency hierarchy unless WithMaxDepth says otherwise.
const DefaultMaxDepth = 100

// Option configures a container.
type Option interface {
	apply(*options)
}

// options holds container configuration.
type options struct {
	scopes     *ScopeRegistry
	ownsScopes bool
	logger     logrus.FieldLogger
	metrics    metrics.Registry
	maxDepth   int
}

// optionFunc adapts a function to Option.
type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

// WithScopes builds the container against registry. Containers sharing a registry
// share application-scoped instances. Without it each container gets a registry of
// the canonical scopes.
func WithScopes(registry *ScopeRegistry) Option {
	return optionFunc(func(opts *options) {
		opts.scopes = registry
	})
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return optionFunc(func(opts *options) {
		opts.logger = logger
	})
}

// WithMetrics records resolution metrics into registry.
func WithMetrics(registry metrics.Registry) Option {
	return optionFunc(func(opts *options) {
		opts.metrics = registry
	})
}

// WithMaxDepth limits how deep a dependency hierarchy may grow. Non-positive
// values disable the limit.
func WithMaxDepth(depth int) Option {
	return optionFunc(func(opts *options) {
		opts.maxDepth = depth
	})
}

func buildOptions(opts []Option) (*options, error) {
	o := &options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}

	if o.scopes == nil {
		r, err := NewScopeRegistry()
		if err != nil {
			return nil, err
		}
		o.scopes = r
		o.ownsScopes = true
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewRegistry()
	}
	return o, nil
}
