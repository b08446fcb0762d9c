package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
)

// DocumentStore 整体读写持久化文档
//   - Read: 未初始化时返回空种子文档，缺失不是错误
//   - Write: 整体替换，返回写入后的文档
type DocumentStore interface {
	Read(ctx context.Context) (domain.Document, error)
	Write(ctx context.Context, doc domain.Document) (domain.Document, error)
}

// FileStore keeps the document as pretty-printed JSON at path.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document file.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Read(ctx context.Context) (domain.Document, error) {
	if err := f.ensure(ctx); err != nil {
		return domain.Document{}, err
	}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read store: %w", err)
	}
	return decodeDocument(raw)
}

func (f *FileStore) Write(ctx context.Context, doc domain.Document) (domain.Document, error) {
	doc.Normalize()
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domain.Document{}, fmt.Errorf("encode store: %w", err)
	}
	if err := writeFileAtomic(f.path, raw); err != nil {
		return domain.Document{}, fmt.Errorf("write store: %w", err)
	}
	return doc, nil
}

// ensure creates parent directories and the seed document on first use.
func (f *FileStore) ensure(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := os.Stat(f.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat store: %w", err)
	}
	_, err := f.Write(ctx, domain.NewDocument())
	return err
}

func decodeDocument(raw []byte) (domain.Document, error) {
	doc := domain.NewDocument()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return domain.Document{}, fmt.Errorf("decode store: %w", err)
		}
	}
	doc.Normalize()
	return doc, nil
}
