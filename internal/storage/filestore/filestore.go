package filestore

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/storage"
)

// FileStore keeps one file per key under Root. Writes replace the file atomically, so a crash never leaves a
// half written session behind.
type FileStore struct {
	Root string
}

func New(root string) (fs storage.Storage, err error) {
	fs = &FileStore{
		Root: root,
	}

	info, err := os.Stat(root)
	if err == nil {
		if !info.IsDir() {
			log.Error().Str("root", root).Msg("not a directory")
			err = storage.ErrNotDir
		}
		return
	}

	if errors.Is(err, os.ErrNotExist) {
		err = os.MkdirAll(root, 0o700)
	}

	if err != nil {
		log.Error().Err(err).Msg("internal error when setting up storage")
		err = storage.ErrInternal
	}

	return
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", storage.ErrBadKey
	}
	return filepath.Join(s.Root, key), nil
}

func (s *FileStore) Get(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotExist
		}
		log.Error().Err(err).Msg("failed to read file " + path)
		return nil, storage.ErrInternal
	}
	return content, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err = atomic.WriteFile(path, bytes.NewReader(value)); err != nil {
		log.Error().Err(err).Msg("failed to write file " + path)
		return storage.ErrInternal
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ErrNotExist
		}
		log.Error().Err(err).Msg("file deletion error")
		return storage.ErrInternal
	}

	return nil
}

func (s *FileStore) Clear() error {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		log.Error().Err(err).Msg("failed to list storage root")
		return storage.ErrInternal
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.Root, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Error().Err(err).Str("file", e.Name()).Msg("file deletion error")
			return storage.ErrInternal
		}
	}
	return nil
}
