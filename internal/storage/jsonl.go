package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"swaplens/internal/model"
)

// JsonlStorage appends resolved swaps to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutSwapBatch appends a batch of swap records as JSON lines.
func (s *JsonlStorage) PutSwapBatch(swaps []model.SwapRecord) error {
	if len(swaps) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(swaps))
	for _, record := range swaps {
		values = append(values, record)
	}
	return appendLines(&s.mu, s.path, values)
}

// JsonlFailureStorage appends batch decode failures to a JSONL file.
type JsonlFailureStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlFailureStorage(path string) *JsonlFailureStorage {
	return &JsonlFailureStorage{path: path}
}

func (s *JsonlFailureStorage) PutFailure(failure model.DecodeFailure) error {
	return appendLines(&s.mu, s.path, []interface{}{failure})
}

func appendLines(mu *sync.Mutex, path string, values []interface{}) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, value := range values {
		line, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
