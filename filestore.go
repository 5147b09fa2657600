package bstore

import (
	"io"
	"os"
)

// FileStore is the storage engine's external collaborator: a random-access
// byte file. Node framing, header layout, and the commit protocol in
// storage.go are expressed entirely in terms of this contract, never in
// terms of *os.File directly. The engine itself opens osFileStore values;
// no option lets a caller supply another FileStore implementation.
type FileStore interface {
	// ReadAt reads len(p) bytes starting at off. Semantics match io.ReaderAt.
	ReadAt(p []byte, off int64) (int, error)
	// Append writes p at the current end of the file and returns the
	// offset at which it was written.
	Append(p []byte) (offset int64, err error)
	// WriteAt overwrites len(p) bytes starting at off. Used only for the
	// 20-byte header, never for record bodies (which are never rewritten
	// in place).
	WriteAt(p []byte, off int64) (int, error)
	// Len reports the current length of the file in bytes.
	Len() (int64, error)
	// Truncate resets the file to the given length, used to reinitialize
	// a write side back to its idle 20-byte state.
	Truncate(size int64) error
	// Rename moves the file this store wraps to newPath, promoting it to
	// take newPath's place. Used by commit() to promote the write side
	// over the read side. The store continues to refer to the same
	// underlying file, now at newPath.
	Rename(newPath string) error
	// Remove deletes the file this store wraps from the filesystem. Used
	// by commit() to clear the way for the promoted write side, and by
	// close() to discard a lingering write side on teardown.
	Remove() error
	// Close releases the underlying resource.
	Close() error
}

// osFileStore is the default FileStore backed by a single *os.File.
type osFileStore struct {
	file *os.File
	path string
}

// openFileStore opens or creates path for read/write access.
func openFileStore(path string) (*osFileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}
	return &osFileStore{file: f, path: path}, nil
}

// openReadOnlyFileStore opens path for read-only access. The file must
// already exist.
func openReadOnlyFileStore(path string) (*osFileStore, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return &osFileStore{file: f, path: path}, nil
}

func (s *osFileStore) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

func (s *osFileStore) Append(p []byte) (int64, error) {
	off, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	n, err := s.file.Write(p)
	if err != nil {
		return 0, err
	}
	if n != len(p) {
		return 0, io.ErrShortWrite
	}
	return off, nil
}

func (s *osFileStore) WriteAt(p []byte, off int64) (int, error) {
	return s.file.WriteAt(p, off)
}

func (s *osFileStore) Len() (int64, error) {
	info, err := s.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *osFileStore) Truncate(size int64) error {
	if err := s.file.Truncate(size); err != nil {
		return err
	}
	_, err := s.file.Seek(0, io.SeekEnd)
	return err
}

func (s *osFileStore) Rename(newPath string) error {
	if err := os.Rename(s.path, newPath); err != nil {
		return err
	}
	s.path = newPath
	return nil
}

func (s *osFileStore) Remove() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *osFileStore) Close() error {
	return s.file.Close()
}
