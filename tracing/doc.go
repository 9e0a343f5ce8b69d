// Package tracing wraps OpenTelemetry so task actions can open one span per
// call without importing the SDK directly. Spans are no-ops until Init or
// InitWithExporter installs a provider.
package tracing
