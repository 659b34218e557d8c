package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kursadbilgin/reminder-relay/internal/domain"
	"github.com/kursadbilgin/reminder-relay/internal/observability"
	"github.com/kursadbilgin/reminder-relay/internal/provider"
	"go.uber.org/zap"
)

const defaultDispatchTimeout = 10 * time.Second

// Dispatcher routes each intent to the provider registered for its kind and
// normalizes the outcome. It holds no per-request state and is safe for
// concurrent use.
type Dispatcher struct {
	providers map[domain.Kind]provider.Provider
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewDispatcher(providers []provider.Provider, timeout time.Duration, logger *zap.Logger) (*Dispatcher, error) {
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := make(map[domain.Kind]provider.Provider, len(providers))
	for _, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("provider is required")
		}

		kind := p.Kind()
		if !kind.IsValid() {
			return nil, fmt.Errorf("provider has invalid kind %q", kind)
		}
		if _, exists := registry[kind]; exists {
			return nil, fmt.Errorf("duplicate provider for kind %s", kind)
		}
		registry[kind] = p
	}

	return &Dispatcher{
		providers: registry,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// Dispatch validates the intent and provider configuration before making at
// most one provider call. The call runs on a context detached from the
// caller's cancellation and bounded by the dispatcher timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, intent domain.Intent) provider.Result {
	if ctx == nil {
		ctx = context.Background()
	}

	kind := intent.Kind()
	logger := observability.WithContextLogger(d.logger, ctx).With(zap.String("kind", kind.String()))

	if err := intent.Validate(); err != nil {
		return d.finish(logger, kind, provider.Failure(err, nil))
	}

	p, ok := d.providers[kind]
	if !ok {
		err := fmt.Errorf("%w: no provider registered for %s", domain.ErrNotConfigured, kind)
		return d.finish(logger, kind, provider.Failure(err, nil))
	}
	if err := p.Ready(); err != nil {
		return d.finish(logger, kind, provider.Failure(err, nil))
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	kindLabel := kind.String()
	d.metrics.IncDispatchInFlight(kindLabel)
	defer d.metrics.DecDispatchInFlight(kindLabel)

	start := d.now()
	result := send(callCtx, p, intent)
	d.metrics.ObserveDispatchDuration(kindLabel, d.now().Sub(start))

	return d.finish(logger, kind, result)
}

func send(ctx context.Context, p provider.Provider, intent domain.Intent) (result provider.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = provider.Failure(&provider.ProviderError{
				Kind:    domain.ErrProvider,
				Message: "provider call failed",
				Cause:   fmt.Errorf("panic: %v", r),
			}, nil)
		}
	}()

	result = p.Send(ctx, intent)
	if !result.OK && result.Err == nil {
		result.Err = domain.ErrProvider
	}
	return result
}

func (d *Dispatcher) finish(logger *zap.Logger, kind domain.Kind, result provider.Result) provider.Result {
	outcome := Outcome(result)
	d.metrics.IncDispatch(kind.String(), outcome)

	switch {
	case result.OK:
		logger.Info("intent dispatched")
	case errors.Is(result.Err, domain.ErrValidation):
		logger.Warn("intent rejected", zap.Error(result.Err))
	default:
		fields := []zap.Field{zap.String("outcome", outcome), zap.Error(result.Err)}
		if len(result.Data) > 0 {
			fields = append(fields, zap.ByteString("providerResponse", result.Data))
		}
		logger.Error("intent dispatch failed", fields...)
	}

	return result
}

// Outcome names the result class used for metrics and logs.
func Outcome(result provider.Result) string {
	switch {
	case result.OK:
		return "ok"
	case errors.Is(result.Err, domain.ErrValidation):
		return "invalid_input"
	case errors.Is(result.Err, domain.ErrNotConfigured):
		return "not_configured"
	case errors.Is(result.Err, domain.ErrRejected):
		return "rejected"
	case errors.Is(result.Err, domain.ErrTransport):
		return "transport_error"
	default:
		return "provider_error"
	}
}
