package eventlog

// Append-only JSONL persistence for event streams. Events accumulate in a
// bounded buffer and are written out once the buffer fills or on explicit
// Flush, trading per-event write calls for batched ones.

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/courierlab/gridcourier/pkg/types"
)

const defaultBatchSize = 64

// FileSink persists events as one JSON object per line.
type FileSink struct {
	mu        sync.Mutex
	file      *os.File
	writer    *bufio.Writer
	buffer    []types.Event
	batchSize int
}

// NewFileSink opens (or creates, truncating) the sink file.
func NewFileSink(path string, batchSize int) (*FileSink, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event sink: %w", err)
	}
	return &FileSink{
		file:      file,
		writer:    bufio.NewWriter(file),
		buffer:    make([]types.Event, 0, batchSize),
		batchSize: batchSize,
	}, nil
}

// Append buffers one event, flushing when the batch is full.
func (s *FileSink) Append(event types.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = append(s.buffer, event)
	if len(s.buffer) >= s.batchSize {
		return s.flushLocked()
	}
	return nil
}

// Flush writes out everything buffered.
func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *FileSink) flushLocked() error {
	enc := json.NewEncoder(s.writer)
	for _, event := range s.buffer {
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
		}
	}
	s.buffer = s.buffer[:0]
	return s.writer.Flush()
}

// Close flushes the remaining buffer and closes the file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	flushErr := s.flushLocked()
	closeErr := s.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// ReadAll loads a JSONL event file back into memory. Used by reporting and
// tests; the core loop never reads it.
func ReadAll(path string) ([]types.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file: %w", err)
	}
	defer file.Close()

	var events []types.Event
	dec := json.NewDecoder(bufio.NewReader(file))
	for dec.More() {
		var event types.Event
		if err := dec.Decode(&event); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}
