// Package logging provides structured logging for samprep runs.
//
// This package wraps Go's log/slog. Each pipeline run gets one [Logger]
// carrying a run_id attribute; child loggers add the stage and species
// being processed so that every line of a run can be filtered after the fact.
//
// # Basic Usage
//
//	logger := logging.New(os.Stderr, logging.LevelInfo, logging.FormatText)
//	runLogger := logger.WithRun(runID).WithStage("species_dictionary")
//	runLogger.Info("loaded sample", "species", "hs", "path", path)
//
// Pipeline components do not hold a Logger. They publish events on an
// event bus, and the command layer forwards those events to the run's
// Logger (see package event).
//
// # Log Files
//
// [Open] writes to a file instead of the terminal when Options.File is set.
// The file is appended to across runs and rotated by size:
//
//	logger, err := logging.Open(logging.Options{
//	    Level:    "debug",
//	    Format:   logging.FormatJSON,
//	    File:     "samprep.log",
//	    Rotation: logging.RotationConfig{MaxSizeMB: 10, MaxBackups: 3},
//	}, os.Stderr)
//
// # Testing
//
// Use [NopLogger] to discard output, or [New] with a bytes.Buffer to assert
// on emitted lines.
package logging
