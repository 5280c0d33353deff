package event

import (
	"strings"

	"github.com/samap-tools/samprep/internal/logging"
)

// ForwardToLogger subscribes a handler on bus that turns every event into one
// log line on logger. It returns the subscription ID.
func ForwardToLogger(bus *Bus, logger *logging.Logger) string {
	return bus.SubscribeAll(func(e Event) {
		level, msg, args := Describe(e)
		scoped(logger, e).Log(level, msg, args...)
	})
}

// scoped tags logger with the stage or species an event belongs to. The
// pipeline name is not added here; the run's logger already carries it.
func scoped(logger *logging.Logger, e Event) *logging.Logger {
	switch ev := e.(type) {
	case StageStartedEvent:
		return logger.WithStage(ev.Stage)
	case StageCompletedEvent:
		return logger.WithStage(ev.Stage)
	case StageFailedEvent:
		return logger.WithStage(ev.Stage)
	case SpeciesAddedEvent:
		return logger.WithSpecies(ev.Code)
	case SpeciesCollisionEvent:
		return logger.WithSpecies(ev.Code)
	default:
		return logger
	}
}

// Describe returns the log level, message, and attributes for an event.
func Describe(e Event) (level, msg string, args []any) {
	switch ev := e.(type) {
	case StageStartedEvent:
		msg = ev.Description
		if msg == "" {
			msg = "Starting " + ev.Stage
		}
		return logging.LevelInfo, msg, nil
	case StageCompletedEvent:
		return logging.LevelDebug, "Stage completed", []any{"duration_ms", ev.Duration.Milliseconds()}
	case StageFailedEvent:
		return logging.LevelError, "Stage failed", []any{
			"duration_ms", ev.Duration.Milliseconds(), "error", errString(ev.Err),
		}
	case DatasetLoadedEvent:
		return logging.LevelInfo, "Data loaded successfully", []any{
			"path", ev.Path, "species", ev.Species, "loader", ev.Loader, "bytes", ev.Bytes,
		}
	case ArtifactWrittenEvent:
		return logging.LevelInfo, "Wrote " + ev.Kind + " artifact", []any{"path", ev.Path, "bytes", ev.Bytes}
	case ArtifactReadEvent:
		return logging.LevelDebug, "Read " + ev.Kind + " artifact", []any{"path", ev.Path, "bytes", ev.Bytes}
	case ArtifactUploadedEvent:
		return logging.LevelInfo, "Uploaded artifact", []any{"path", ev.Path, "uri", ev.URI}
	case SpeciesAddedEvent:
		return logging.LevelInfo, "Added species to dictionary", []any{"path", ev.Path}
	case SpeciesCollisionEvent:
		return logging.LevelWarn, "Species code already present, later sample replaces earlier one", []any{
			"replaced", ev.Replaced, "kept", ev.Kept,
		}
	case MapsNormalizedEvent:
		return logging.LevelWarn, "Provided maps directory does not end with '/', changing it", []any{
			"original", ev.Original, "normalized", ev.Normalized,
		}
	case MapsValidatedEvent:
		return logging.LevelInfo, "Maps directory found", []any{"path", ev.Path}
	case MapFileFoundEvent:
		return logging.LevelDebug, "Found map file", []any{"path", ev.Path}
	case MapsEmptyEvent:
		return logging.LevelWarn, "No map files found", []any{"path", ev.Path, "extension", ev.Extension}
	case MapsUnreadableEvent:
		return logging.LevelWarn, "Could not read part of maps directory, skipping it", []any{
			"path", ev.Path, "error", errString(ev.Err),
		}
	case AlignmentBuiltEvent:
		return logging.LevelInfo, "Successfully created alignment object", []any{
			"engine", ev.Engine, "species", strings.Join(ev.Species, ","), "count", len(ev.Species),
		}
	default:
		return logging.LevelDebug, e.EventType(), nil
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
