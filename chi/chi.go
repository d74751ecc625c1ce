// Package chi provides inject integration for the Chi router.
//
// StrandMiddleware gives every request its own strand, so strand-scoped bindings
// produce one instance per request and are released when the request completes.
// Handle resolves a controller for the request and calls one of its methods.
//
// Example usage:
//
//	container, _ := inject.New(bindings)
//
//	r := chi.NewRouter()
//	injectchi.Mount(r, container, injectchi.WithEager(session))
//
//	r.Post("/login", injectchi.Handle(authController, AuthController.Login))
//	r.Get("/users/{id}", injectchi.Handle(userController, UserController.GetByID))
package chi

import (
	"context"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/junioryono/inject"
)

// ErrNoInjector is returned when a request context carries no injector.
var ErrNoInjector = errors.New("no injector in request context")

// ErrorHandler writes the response for a request that failed before reaching its
// handler.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// PanicHandler writes the response for a recovered panic.
type PanicHandler func(w http.ResponseWriter, r *http.Request, v any)

type options struct {
	onError   ErrorHandler
	onRelease func(error)
	onPanic   PanicHandler
	eager     []inject.Instance
	logger    logrus.FieldLogger
}

// Option configures StrandMiddleware, Mount and Handle.
type Option func(*options)

// WithErrorHandler replaces the default error response, which logs err and
// writes the status given by StatusOf.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) { o.onError = h }
}

// WithReleaseErrorHandler receives failures to release a request's strand.
// By default they are logged.
func WithReleaseErrorHandler(h func(error)) Option {
	return func(o *options) { o.onRelease = h }
}

// WithEager resolves insts when a request starts, before the next handler runs.
// A failure is reported to the error handler and ends the request.
func WithEager(insts ...inject.Instance) Option {
	return func(o *options) { o.eager = append(o.eager, insts...) }
}

// WithRecovery makes Handle recover panics of the controller method. A nil h
// logs the panic and responds 500.
func WithRecovery(h PanicHandler) Option {
	return func(o *options) {
		if h == nil {
			h = func(w http.ResponseWriter, r *http.Request, v any) {
				o.logger.WithField("panic", v).Error("panic in handler")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
		o.onPanic = h
	}
}

// WithLogger sets the logger of the default handlers.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) *options {
	o := &options{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(o)
	}
	if o.onError == nil {
		o.onError = func(w http.ResponseWriter, r *http.Request, err error) {
			code := StatusOf(err)
			o.logger.WithError(err).WithField("status", code).Warn("request failed")
			http.Error(w, http.StatusText(code), code)
		}
	}
	if o.onRelease == nil {
		o.onRelease = func(err error) {
			o.logger.WithError(err).Error("failed to release request strand")
		}
	}
	return o
}

// StatusOf maps a request failure to an HTTP status: 503 without an injector,
// 404 when nothing is bound for the request, 500 otherwise.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrNoInjector):
		return http.StatusServiceUnavailable
	case inject.IsNoResource(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type injectorKey struct{}

// FromContext returns the injector attached by StrandMiddleware.
func FromContext(r *http.Request) (inject.Injector, error) {
	inj, ok := r.Context().Value(injectorKey{}).(inject.Injector)
	if !ok || inj == nil {
		return nil, ErrNoInjector
	}
	return inj, nil
}

// StrandMiddleware attaches inj and a fresh strand to each request context.
// Strand-scoped instances are disposed when the request completes.
//
//	r := chi.NewRouter()
//	r.Use(injectchi.StrandMiddleware(container))
func StrandMiddleware(inj inject.Injector, opts ...Option) func(http.Handler) http.Handler {
	o := newOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, release := inject.WithStrand(r.Context())
			defer func() {
				if err := release(); err != nil {
					o.onRelease(err)
				}
			}()

			if inj != nil {
				ctx = context.WithValue(ctx, injectorKey{}, inj)
			}
			r = r.WithContext(ctx)

			for _, inst := range o.eager {
				if _, err := resolve(r, inst); err != nil {
					o.onError(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Mount installs StrandMiddleware for inj on r.
func Mount(r gochi.Router, inj inject.Injector, opts ...Option) {
	r.Use(StrandMiddleware(inj, opts...))
}

func resolve(r *http.Request, inst inject.Instance) (any, error) {
	inj, err := FromContext(r)
	if err != nil {
		return nil, err
	}
	return inj.Resolve(r.Context(), inject.DependencyOn(inst))
}

// Resolve resolves inst from the request's injector within the request's strand.
func Resolve[T any](r *http.Request, inst inject.Instance) (T, error) {
	inj, err := FromContext(r)
	if err != nil {
		var zero T
		return zero, err
	}
	return inject.ResolveNamed[T](r.Context(), inj, inst.Name, inst.Type)
}

// Handle resolves the controller inst for each request and calls method on it.
// Failures go to the error handler; panics are recovered only WithRecovery.
//
//	r.Get("/users/{id}", injectchi.Handle(userController, UserController.GetByID))
func Handle[T any](inst inject.Instance, method func(T, http.ResponseWriter, *http.Request), opts ...Option) http.HandlerFunc {
	o := newOptions(opts)

	return func(w http.ResponseWriter, r *http.Request) {
		if o.onPanic != nil {
			defer func() {
				if v := recover(); v != nil {
					o.onPanic(w, r, v)
				}
			}()
		}

		controller, err := Resolve[T](r, inst)
		if err != nil {
			o.onError(w, r, err)
			return
		}
		method(controller, w, r)
	}
}
