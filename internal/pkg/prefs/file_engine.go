package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
)

// FileEngine keeps every key in one JSON document on disk. Writes go through a temp file
// and rename.
type FileEngine struct {
	path string
	mu   sync.Mutex
}

func NewFileEngine(path string) *FileEngine {
	return &FileEngine{path: path}
}

func (e *FileEngine) Load(_ context.Context, key string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := e.read()
	if err != nil {
		return nil, err
	}

	raw, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

func (e *FileEngine) Save(_ context.Context, key string, raw []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := e.read()
	if err != nil {
		return err
	}
	doc[key] = raw
	return e.write(doc)
}

func (e *FileEngine) Remove(_ context.Context, key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := e.read()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return e.write(doc)
}

func (e *FileEngine) read() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(e.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prefs file: %w", err)
	}

	doc := make(map[string]json.RawMessage)
	if len(b) == 0 {
		return doc, nil
	}
	if err := sonic.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode prefs file: %w", err)
	}
	return doc, nil
}

func (e *FileEngine) write(doc map[string]json.RawMessage) error {
	b, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prefs file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(e.path), 0o700); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(e.path), ".prefs-*")
	if err != nil {
		return fmt.Errorf("create temp prefs file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write prefs file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close prefs file: %w", err)
	}

	return os.Rename(tmp.Name(), e.path)
}

// MemoryEngine is an in-process Engine, used by tests and as a fallback when no file is
// configured.
type MemoryEngine struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{data: make(map[string][]byte)}
}

func (e *MemoryEngine) Load(_ context.Context, key string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	raw, ok := e.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (e *MemoryEngine) Save(_ context.Context, key string, raw []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.data[key] = append([]byte(nil), raw...)
	return nil
}

func (e *MemoryEngine) Remove(_ context.Context, key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.data, key)
	return nil
}
