// Package event is the observability sink shared by every pipeline stage.
//
// Stages never log directly. They publish typed events on a [Sink]; the
// command layer owns a [Bus], forwards every event to the run's logger with
// [ForwardToLogger], and may attach further subscribers such as the metrics
// recorder. Dispatch is synchronous, so events reach every subscriber in the
// order the stages emitted them.
//
// # Basic Usage
//
//	bus := event.NewBus()
//	event.ForwardToLogger(bus, logger)
//
//	ingestor := sample.NewIngestor(loader, persister, bus)
//
// Tests can inject a [Recorder] instead of a Bus and assert on what was
// published.
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - stage.started, stage.completed, stage.failed
//   - dataset.loaded
//   - artifact.written, artifact.read, artifact.uploaded
//   - species.added, species.collision
//   - maps.normalized, maps.validated, maps.file_found, maps.empty,
//     maps.unreadable
//   - alignment.built
package event
