package es

import (
	"log/slog"
)

type (
	valueOption[T any] struct{ v T }
	LogOption          valueOption[*slog.Logger]
	ESMetricsOption    valueOption[ESMetrics]
)

func WithLog(l *slog.Logger) LogOption        { return LogOption{v: l} }
func WithMetrics(m ESMetrics) ESMetricsOption { return ESMetricsOption{v: m} }
