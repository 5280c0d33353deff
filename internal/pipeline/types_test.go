package pipeline

import "testing"

func TestStage_String(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageLoadDataset, "load_dataset"},
		{StagePersistSample, "persist_sample"},
		{StageParseSams, "parse_sams"},
		{StageSpeciesDictionary, "species_dictionary"},
		{StageMapsDirectory, "maps_directory"},
		{StageAlignment, "alignment"},
		{StagePersistAlignment, "persist_alignment"},
		{StageUpload, "upload"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.stage.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

var allStages = []Stage{
	StageLoadDataset,
	StagePersistSample,
	StageParseSams,
	StageSpeciesDictionary,
	StageMapsDirectory,
	StageAlignment,
	StagePersistAlignment,
	StageUpload,
}

func TestStage_Description(t *testing.T) {
	seen := make(map[string]Stage)
	for _, s := range allStages {
		d := s.Description()
		if d == "" || d == s.String() {
			t.Errorf("%s has no description", s)
		}
		if prev, ok := seen[d]; ok && prev != s {
			t.Errorf("%s and %s share description %q", prev, s, d)
		}
		seen[d] = s
	}

	if got := Stage("custom").Description(); got != "custom" {
		t.Errorf("Description() of unknown stage = %q, want %q", got, "custom")
	}
}
