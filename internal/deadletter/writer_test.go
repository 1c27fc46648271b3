package deadletter

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"rewardledger/internal/model"
)

func TestWriterAppendsJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dead", "events.jsonl")
	w := NewWriter(path)

	notes := []model.DecodeNote{
		{Signature: "sig1", Ordinal: 0, Line: "Program data: bad", Error: "decode base64"},
		{Signature: "sig2", Ordinal: 3, Line: "Program data: worse", Error: "unmarshal envelope"},
	}
	for _, note := range notes {
		if err := w.Record(note); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var got []model.DecodeNote
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var note model.DecodeNote
		if err := json.Unmarshal(scanner.Bytes(), &note); err != nil {
			t.Fatalf("unmarshal line %q: %v", scanner.Text(), err)
		}
		got = append(got, note)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	if got[0].Signature != "sig1" || got[1].Ordinal != 3 || got[1].Error != "unmarshal envelope" {
		t.Fatalf("notes mismatch: %+v", got)
	}
}
