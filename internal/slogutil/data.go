package slogutil

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

type data map[string]slog.Attr

type dataKey struct{}

func cloneData(ctx context.Context) data {
	d, ok := ctx.Value(dataKey{}).(data)
	if !ok {
		return data{}
	}

	return maps.Clone(d)
}

// With returns a new context carrying the given key-value pairs. Loggers built
// by this package add them to every record logged with that context.
func With(ctx context.Context, kvargs ...any) context.Context {
	if len(kvargs) == 0 {
		return ctx
	}

	d := cloneData(ctx)

	var r slog.Record
	r.Add(kvargs...)
	r.Attrs(func(a slog.Attr) bool {
		d[a.Key] = a
		return true
	})

	return context.WithValue(ctx, dataKey{}, d)
}

// Attrs returns the attributes in the context sorted by key.
func Attrs(ctx context.Context) []slog.Attr {
	d, ok := ctx.Value(dataKey{}).(data)
	if !ok {
		return nil
	}

	attrs := slices.Collect(maps.Values(d))
	slices.SortFunc(attrs, func(a, b slog.Attr) int { return strings.Compare(a.Key, b.Key) })
	return attrs
}

type dataHook struct{}

func (dataHook) Run(ctx context.Context, r *slog.Record) {
	r.AddAttrs(Attrs(ctx)...)
}
