package compiler

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("groovyls.compiler")
	meter  = otel.Meter("groovyls.compiler")
)

var (
	compileDuration metric.Float64Histogram
	compileFiles    metric.Int64Counter
	frontendFaults  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		compileDuration, err = meter.Float64Histogram(
			"groovyls_compile_duration_seconds",
			metric.WithDescription("Duration of compile cycles"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		compileFiles, err = meter.Int64Counter(
			"groovyls_compile_files_total",
			metric.WithDescription("Source files parsed by compile cycles"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		frontendFaults, err = meter.Int64Counter(
			"groovyls_frontend_faults_total",
			metric.WithDescription("Front-end panics recovered by the compile boundary"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startCompileSpan(ctx context.Context, mode Mode, dirty int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Compiler.Update",
		trace.WithAttributes(
			attribute.String("compile.mode", mode.String()),
			attribute.Int("compile.dirty", dirty),
		),
	)
}

func setCompileSpanResult(span trace.Span, files int, success bool) {
	span.SetAttributes(
		attribute.Int("compile.files", files),
		attribute.Bool("compile.success", success),
	)
}

func recordCompileMetrics(ctx context.Context, mode Mode, duration time.Duration, files int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("mode", mode.String()),
		attribute.Bool("success", success),
	)
	compileDuration.Record(ctx, duration.Seconds(), attrs)
	compileFiles.Add(ctx, int64(files), metric.WithAttributes(attribute.String("mode", mode.String())))
}

func recordFrontendFault(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	frontendFaults.Add(ctx, 1)
}
