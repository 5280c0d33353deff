package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/samap-tools/samprep/internal/logging"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe(TypeMapsValidated, func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_PublishOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "wildcard") })
	bus.Subscribe(TypeMapsValidated, func(e Event) { order = append(order, "specific-1") })
	bus.Subscribe(TypeMapsValidated, func(e Event) { order = append(order, "specific-2") })
	bus.Subscribe(TypeMapsEmpty, func(e Event) { order = append(order, "other") })

	bus.Publish(NewMapsValidatedEvent("maps/"))

	want := []string{"specific-1", "specific-2", "wildcard"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("dispatch order = %v, want %v", order, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	id := bus.Subscribe(TypeSpeciesAdded, func(e Event) { count++ })
	keep := bus.Subscribe(TypeSpeciesAdded, func(e Event) { count += 10 })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe should return true for a known ID")
	}
	if bus.Unsubscribe(id) {
		t.Error("Unsubscribe should return false the second time")
	}

	bus.Publish(NewSpeciesAddedEvent("hs", "hs_sam.pkl"))
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
	if keep == id {
		t.Error("subscription IDs should be unique")
	}
}

func TestBus_PanickingHandler(t *testing.T) {
	bus := NewBus()

	reached := false
	bus.Subscribe(TypeMapsEmpty, func(e Event) { panic("boom") })
	bus.Subscribe(TypeMapsEmpty, func(e Event) { reached = true })

	bus.Publish(NewMapsEmptyEvent("maps/", ".txt"))

	if !reached {
		t.Error("a panicking handler must not block later handlers")
	}
}

func TestRecorder(t *testing.T) {
	var rec Recorder
	rec.Publish(NewStageStartedEvent("aggregate", "maps_directory", ""))
	rec.Publish(NewMapFileFoundEvent("maps/a.txt"))
	rec.Publish(NewMapFileFoundEvent("maps/b.txt"))

	if got := strings.Join(rec.Types(), ","); got != "stage.started,maps.file_found,maps.file_found" {
		t.Errorf("Types() = %s", got)
	}
	if n := len(rec.OfType(TypeMapFileFound)); n != 2 {
		t.Errorf("OfType() returned %d events, want 2", n)
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) != Discard {
		t.Error("OrDiscard(nil) should return Discard")
	}
	rec := &Recorder{}
	if OrDiscard(rec) != Sink(rec) {
		t.Error("OrDiscard should return a non-nil sink unchanged")
	}
	Discard.Publish(NewMapsValidatedEvent("x/"))
}

func TestDescribe_Levels(t *testing.T) {
	tests := []struct {
		event Event
		level string
	}{
		{NewStageStartedEvent("ingest", "load", "Loading data"), logging.LevelInfo},
		{NewStageCompletedEvent("ingest", "load", time.Second), logging.LevelDebug},
		{NewStageFailedEvent("ingest", "load", time.Second, errors.New("x")), logging.LevelError},
		{NewDatasetLoadedEvent("a.h5ad", "hs", "exec", 10), logging.LevelInfo},
		{NewArtifactWrittenEvent("hs_sam.pkl", "sample", 10), logging.LevelInfo},
		{NewArtifactReadEvent("hs_sam.pkl", "sample", 10), logging.LevelDebug},
		{NewArtifactUploadedEvent("samap.pkl", "s3://b/k"), logging.LevelInfo},
		{NewSpeciesAddedEvent("hs", "hs_sam.pkl"), logging.LevelInfo},
		{NewSpeciesCollisionEvent("mm", "mm_a.pkl", "mm_b.pkl"), logging.LevelWarn},
		{NewMapsNormalizedEvent("maps", "maps/"), logging.LevelWarn},
		{NewMapsValidatedEvent("maps/"), logging.LevelInfo},
		{NewMapFileFoundEvent("maps/a.txt"), logging.LevelDebug},
		{NewMapsEmptyEvent("maps/", ".txt"), logging.LevelWarn},
		{NewMapsUnreadableEvent("maps/sub", errors.New("permission denied")), logging.LevelWarn},
		{NewAlignmentBuiltEvent("exec", []string{"hs", "mm"}), logging.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.event.EventType(), func(t *testing.T) {
			level, msg, _ := Describe(tt.event)
			if level != tt.level {
				t.Errorf("level = %s, want %s", level, tt.level)
			}
			if msg == "" {
				t.Error("message should not be empty")
			}
		})
	}
}

func TestForwardToLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.LevelDebug, logging.FormatJSON).WithRun("run-1")

	bus := NewBus()
	ForwardToLogger(bus, logger)

	bus.Publish(NewStageStartedEvent("aggregate", "maps_directory", "Ensuring validity of maps directory"))
	bus.Publish(NewMapsNormalizedEvent("maps", "maps/"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(lines), buf.String())
	}

	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}

	if first["msg"] != "Ensuring validity of maps directory" || first["level"] != "INFO" {
		t.Errorf("first line = %v", first)
	}
	if first["run_id"] != "run-1" {
		t.Errorf("run_id not propagated: %v", first)
	}
	if second["level"] != "WARN" || second["normalized"] != "maps/" {
		t.Errorf("second line = %v", second)
	}
}

func TestForwardToLogger_AttributesAppearOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.LevelDebug, logging.FormatJSON).WithRun("run-1").WithPipeline("aggregate")

	bus := NewBus()
	ForwardToLogger(bus, logger)

	bus.Publish(NewStageStartedEvent("aggregate", "species_dictionary", "Building species dictionary from samples"))
	bus.Publish(NewSpeciesAddedEvent("hs", "hs_sam.pkl"))
	bus.Publish(NewStageFailedEvent("aggregate", "species_dictionary", time.Second, errors.New("boom")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %q", len(lines), buf.String())
	}

	tests := []struct {
		line string
		key  string
		want string
	}{
		{lines[0], "stage", "species_dictionary"},
		{lines[1], "species", "hs"},
		{lines[2], "stage", "species_dictionary"},
	}
	for _, tt := range tests {
		for _, key := range []string{"pipeline", "run_id", tt.key} {
			if n := strings.Count(tt.line, `"`+key+`":`); n != 1 {
				t.Errorf("key %q appears %d times in %s", key, n, tt.line)
			}
		}

		var fields map[string]any
		if err := json.Unmarshal([]byte(tt.line), &fields); err != nil {
			t.Fatal(err)
		}
		if fields[tt.key] != tt.want || fields["pipeline"] != "aggregate" {
			t.Errorf("line = %v, want %s=%s and pipeline=aggregate", fields, tt.key, tt.want)
		}
	}
}
