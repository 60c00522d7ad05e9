package server

import (
	"log/slog"

	"lite-web-server/application/http"
	"lite-web-server/application/http/status"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "lite-web-server/application/http/actor/server"

var ErrNotFound = errors.New("no handler registered for path")

// Outcomes recorded on the request counter.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

type DispatcherOptions struct {
	// Nil means the global providers.
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Dispatcher routes a parsed request to the handler registered for its path.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger

	tracer   trace.Tracer
	requests metric.Int64Counter
}

func NewDispatcher(registry *Registry, logger *slog.Logger, opts DispatcherOptions) (*Dispatcher, error) {
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	requests, err := mp.Meter(instrumentationName).Int64Counter("lws.http.requests",
		metric.WithDescription("The number of dispatched requests by path and outcome"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, errors.Wrap(err, "creating request counter")
	}

	return &Dispatcher{
		registry: registry,
		logger:   logger,
		tracer:   tp.Tracer(instrumentationName),
		requests: requests,
	}, nil
}

// Dispatch invokes the handler for the request's path once.
// Without one it replies 404 and returns [ErrNotFound].
//
// A handler failing before it replies gets a 500 on its behalf.
// Handler errors are recorded and returned but the request
// is never dispatched again.
func (d *Dispatcher) Dispatch(c *HandleContext, request *http.Message) error {
	path := request.Bytes(request.URI)

	ctx, span := d.tracer.Start(c.ctx, "dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", string(request.Bytes(request.Method))),
			attribute.String("url.path", string(path)),
		),
	)
	defer span.End()
	c.ctx = ctx

	outcome := OutcomeOK
	defer func() {
		d.requests.Add(ctx, 1, metric.WithAttributes(
			attribute.String("path", string(path)),
			attribute.String("outcome", outcome),
		))
	}()

	h, ok := d.registry.Lookup(path)
	if !ok {
		outcome = OutcomeNotFound
		span.SetStatus(codes.Error, ErrNotFound.Error())

		if err := c.RespondHeader(status.NotFound.Code); err != nil {
			return errors.Wrap(err, "replying not found")
		}
		return errors.Wrapf(ErrNotFound, "%q", path)
	}

	err := c.doHandle(h, EventHTTPRequest, request)
	if err == nil {
		return nil
	}

	outcome = OutcomeError
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if !c.replied {
		c.Close()
		if rerr := c.RespondHeader(status.InternalServerError.Code); rerr != nil {
			return errors.Wrap(rerr, "replying internal server error")
		}
	}

	return errors.Wrap(err, "handling request")
}
