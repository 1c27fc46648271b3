package deadletter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"rewardledger/internal/model"
)

// Writer appends undecodable events to a JSONL file, one note per line,
// so a delivery can be replayed once the decoder understands the event.
type Writer struct {
	path string
	mu   sync.Mutex
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Record appends one decode note.
func (w *Writer) Record(note model.DecodeNote) error {
	dir := filepath.Dir(w.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dead letter dir: %w", err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open dead letter file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	line, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal dead letter note: %w", err)
	}
	if _, err := writer.Write(line); err != nil {
		return fmt.Errorf("write dead letter note: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write dead letter newline: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush dead letter file: %w", err)
	}
	return nil
}
