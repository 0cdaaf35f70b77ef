package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"rectangle-service/rectangle/domain"
)

// FileStore mantém o retângulo em memória e espelha cada escrita num arquivo
// JSON (o registro durável).
//
// Escritas são serializadas: o arquivo é gravado por completo (tmp + fsync +
// rename) e só depois o valor em memória muda. Se a gravação falhar, o valor
// anterior continua sendo servido.
type FileStore struct {
	path string

	mu  sync.RWMutex
	wmu sync.Mutex
	cur domain.Dimensions

	perm fs.FileMode
}

type FileStoreOption func(*FileStore)

func WithFileMode(perm fs.FileMode) FileStoreOption {
	return func(s *FileStore) { s.perm = perm }
}

// OpenFileStore carrega o registro em path. Se ele não existir, cria com def.
//
// A leitura aceita chaves em qualquer caixa ({"Width":80,"Height":100} também
// funciona); a escrita é sempre canônica.
func OpenFileStore(path string, def domain.Dimensions, opts ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path is required")
	}
	s := &FileStore{path: path, perm: 0o644}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := s.write(def); err != nil {
			return nil, &domain.StoreError{Op: "init", Err: err}
		}
		s.cur = def
		return s, nil
	case err != nil:
		return nil, &domain.StoreError{Op: "read", Err: err}
	}

	d, err := decodeRecord(raw)
	if err != nil {
		return nil, &domain.StoreError{Op: "decode", Err: fmt.Errorf("%s: %w", path, err)}
	}
	s.cur = d
	return s, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(context.Context) (domain.Dimensions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur, nil
}

func (s *FileStore) Set(_ context.Context, d domain.Dimensions) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	if err := s.write(d); err != nil {
		return &domain.StoreError{Op: "write", Err: err}
	}

	s.mu.Lock()
	s.cur = d
	s.mu.Unlock()
	return nil
}

// write grava o registro de forma atômica: arquivo temporário no mesmo
// diretório, fsync e rename por cima do anterior.
func (s *FileStore) write(d domain.Dimensions) error {
	data, err := encodeRecord(d)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, s.perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return err
	}
	return nil
}

func encodeRecord(d domain.Dimensions) ([]byte, error) {
	return json.Marshal(d)
}

func decodeRecord(raw []byte) (domain.Dimensions, error) {
	var rec struct {
		Width  *float64 `json:"width"`
		Height *float64 `json:"height"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Dimensions{}, err
	}
	if rec.Width == nil || rec.Height == nil {
		return domain.Dimensions{}, errors.New("record must contain width and height")
	}
	return domain.Dimensions{Width: *rec.Width, Height: *rec.Height}, nil
}
