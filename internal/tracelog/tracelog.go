// Package tracelog records the argument vectors seen by the wrapper as JSON lines.
// It is a debugging aid and has no effect on what gets launched.
package tracelog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Stage names the point in the wrapper at which a vector was captured.
type Stage string

const (
	StageIncoming  Stage = "incoming"
	StageRewritten Stage = "rewritten"
)

// Entry is one captured argument vector.
type Entry struct {
	Timestamp string   `json:"timestamp"`
	PID       int      `json:"pid"`
	Stage     Stage    `json:"stage"`
	Args      []string `json:"args"`
}

// Logger appends entries to a trace file.
type Logger struct {
	writer io.WriteCloser
	mu     sync.Mutex
}

// New opens the trace file at path for appending. An empty path disables tracing.
func New(path string) (*Logger, error) {
	if path == "" {
		return &Logger{writer: nopWriteCloser{}}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create trace log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace log: %w", err)
	}

	return &Logger{writer: file}, nil
}

// Record writes args under stage, stamped with the current pid.
func (l *Logger) Record(stage Stage, args []string) error {
	return l.Log(Entry{PID: os.Getpid(), Stage: stage, Args: args})
}

// Log writes an entry to the trace file.
func (l *Logger) Log(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal trace entry: %w", err)
	}

	data = append(data, '\n')
	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("write trace entry: %w", err)
	}
	return nil
}

// Close closes the trace file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer.Close()
}

// Read returns all entries in the trace file at path. Malformed lines are skipped.
func Read(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open trace log: %w", err)
	}
	defer file.Close()

	var entries []Entry
	decoder := json.NewDecoder(file)
	for {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			if err == io.EOF {
				break
			}
			return entries, fmt.Errorf("decode trace log: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

type nopWriteCloser struct{}

func (nopWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (nopWriteCloser) Close() error                { return nil }
