package i2c

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	internali2c "github.com/Transmission-Dynamics/i2c-transfer/internal/i2c"
)

const instrumentationName = "github.com/Transmission-Dynamics/i2c-transfer/pkg/i2c"

// DefaultOpenRetries is how many times an open interrupted by a signal is retried.
const DefaultOpenRetries = 3

// Config holds Devfs parameters.
type Config struct {
	Meter  metric.Meter
	Tracer trace.Tracer

	// OpenRetries bounds retries of open(2) calls failing with EINTR.
	// Zero selects DefaultOpenRetries; a negative value disables retrying.
	OpenRetries int
}

// Devfs opens bus nodes through the kernel's i2c-dev interface.
type Devfs struct {
	tracer    trace.Tracer
	transfers metric.Int64Counter
	failures  metric.Int64Counter
	bytes     metric.Int64Counter
	retries   uint64
}

// NewDevfs creates a Devfs opener.
func NewDevfs(cfg Config) (*Devfs, error) {
	meter := cfg.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	d := &Devfs{tracer: tracer}
	switch {
	case cfg.OpenRetries == 0:
		d.retries = DefaultOpenRetries
	case cfg.OpenRetries > 0:
		d.retries = uint64(cfg.OpenRetries)
	}

	var err error
	if d.transfers, err = meter.Int64Counter("i2c.transfers",
		metric.WithDescription("Combined I2C transactions issued."),
		metric.WithUnit("{transaction}")); err != nil {
		return nil, fmt.Errorf("create transfers counter: %w", err)
	}
	if d.failures, err = meter.Int64Counter("i2c.transfer.failures",
		metric.WithDescription("Combined I2C transactions rejected by the adapter."),
		metric.WithUnit("{transaction}")); err != nil {
		return nil, fmt.Errorf("create failures counter: %w", err)
	}
	if d.bytes, err = meter.Int64Counter("i2c.transfer.bytes",
		metric.WithDescription("Payload bytes moved by successful transactions."),
		metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("create bytes counter: %w", err)
	}
	return d, nil
}

// Open opens path read-write.
func (d *Devfs) Open(ctx context.Context, path string) (Conn, error) {
	_, span := d.tracer.Start(ctx, "i2c.open", trace.WithAttributes(attribute.String("i2c.bus", path)))
	defer span.End()

	fd := -1
	op := func() error {
		var err error
		fd, err = internali2c.Open(path)
		if err != nil && !internali2c.Interrupted(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), d.retries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return nil, err
	}
	return &devConn{fd: fd, path: path, dev: d}, nil
}

type devConn struct {
	fd   int
	path string
	dev  *Devfs
}

func (c *devConn) Transfer(ctx context.Context, msgs []Message) error {
	bus := attribute.String("i2c.bus", c.path)
	ctx, span := c.dev.tracer.Start(ctx, "i2c.transfer", trace.WithAttributes(bus, attribute.Int("i2c.messages", len(msgs))))
	defer span.End()

	c.dev.transfers.Add(ctx, 1, metric.WithAttributes(bus))
	if err := internali2c.Transfer(c.fd, msgs); err != nil {
		c.dev.failures.Add(ctx, 1, metric.WithAttributes(bus))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transfer failed")
		return err
	}
	var n int
	for _, m := range msgs {
		n += len(m.Buf)
	}
	c.dev.bytes.Add(ctx, int64(n), metric.WithAttributes(bus))
	return nil
}

func (c *devConn) Close() error {
	if c.fd < 0 {
		return nil
	}
	err := internali2c.Close(c.fd)
	c.fd = -1
	return err
}
