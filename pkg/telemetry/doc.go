// Package telemetry publishes invocation-accounting events: one per
// dispatched request, carrying the service, the selected response, the
// request's start time, and the extracted invocation id.
//
// Sink is the abstract contract; LogSink and ChannelSink are the two
// concrete implementations the engine ships with: an interface plus a
// slog-backed default (see pkg/logging) and a channel-backed one for
// tests.
package telemetry
