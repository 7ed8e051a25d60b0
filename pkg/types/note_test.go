package types

import (
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"
)

func TestTimeFromCoreData(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    time.Time
	}{
		{"epoch", 0, time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"one day", 86400, time.Date(2001, time.January, 2, 0, 0, 0, 0, time.UTC)},
		{"fractional seconds", 0.5, time.Date(2001, time.January, 1, 0, 0, 0, 500_000_000, time.UTC)},
		{"before the epoch", -86400, time.Date(2000, time.December, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeFromCoreData(tt.seconds)
			if !got.Equal(tt.want) {
				t.Errorf("TimeFromCoreData(%v) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

// The manifest writer serializes ProcessedNote; note rows must flatten into
// the entry instead of nesting, and the note body must never reach the
// manifest.
func TestProcessedNoteManifestShape(t *testing.T) {
	mod := 123.5
	p := ProcessedNote{
		NoteRecord: NoteRecord{
			ID:               7,
			Title:            "Hello",
			Text:             "the note body",
			Tag:              "work",
			ModificationDate: &mod,
		},
		Filename:             "Hello.md",
		DestinationDirectory: "out/work",
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	s := string(data)

	for _, want := range []string{"id: 7", "title: Hello", "tag: work", "filename: Hello.md"} {
		if !strings.Contains(s, want) {
			t.Errorf("manifest entry missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "noterecord") {
		t.Errorf("note fields are nested instead of inlined:\n%s", s)
	}
	if strings.Contains(s, "the note body") {
		t.Errorf("note body leaked into the manifest:\n%s", s)
	}

	var back ProcessedNote
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if back.ID != 7 || back.Filename != "Hello.md" || back.Tag != "work" {
		t.Errorf("round-trip lost fields: %+v", back)
	}
	if back.Text != "" {
		t.Errorf("Text should not round-trip, got %q", back.Text)
	}
}
