package kv

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type tracedStore struct {
	next    Store
	backend string
	tracer  trace.Tracer
}

// WithTracing wraps s so each call opens a kv.<op> span.
func WithTracing(s Store, backend string) Store {
	return &tracedStore{
		next:    s,
		backend: backend,
		tracer:  otel.Tracer("bookfinder/kv"),
	}
}

func (t *tracedStore) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "kv."+op,
		trace.WithAttributes(
			attribute.String("kv.backend", t.backend),
			attribute.String("kv.key", key),
		),
	)
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *tracedStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := t.start(ctx, "get", key)
	v, ok, err := t.next.Get(ctx, key)
	span.SetAttributes(attribute.Bool("kv.found", ok))
	finish(span, err)
	return v, ok, err
}

func (t *tracedStore) Set(ctx context.Context, key, value string) error {
	ctx, span := t.start(ctx, "set", key)
	span.SetAttributes(attribute.Int("kv.value_bytes", len(value)))
	err := t.next.Set(ctx, key, value)
	finish(span, err)
	return err
}

func (t *tracedStore) Remove(ctx context.Context, key string) error {
	ctx, span := t.start(ctx, "remove", key)
	err := t.next.Remove(ctx, key)
	finish(span, err)
	return err
}

func (t *tracedStore) Close() error {
	return t.next.Close()
}
