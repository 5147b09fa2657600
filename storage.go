package bstore

import "fmt"

// writeSideIdleSize is the size of a freshly (re)initialized write side:
// a 20-byte header with root_offset = 0, nothing in the records region.
const writeSideIdleSize = headerSize

// storage is the engine described in spec.md §4.2: a root-pointer header,
// append-only node records, and a copy-file commit protocol built from two
// parallel files, the read side (path) and the write side (path+".tmp").
//
// storage is parameterised by the same Key/Value types as the tree it
// backs, because decoding a node record requires the Codec for both.
type storage[K Ordered[K], V any] struct {
	readPath  string
	writePath string
	readOnly  bool
	logger    Logger

	keyCodec Codec[K]
	valCodec Codec[V]

	read  FileStore
	write FileStore // nil when readOnly
}

// openStorage opens the read side at path, creating it if absent. A
// read-only storage never opens path+".tmp".
func openStorage[K Ordered[K], V any](path string, opts StoreOptions, keyCodec Codec[K], valCodec Codec[V]) (*storage[K, V], error) {
	logger := opts.logger
	if logger == nil {
		logger = DiscardLogger{}
	}

	s := &storage[K, V]{
		readPath:  path,
		writePath: path + ".tmp",
		readOnly:  opts.readOnly,
		logger:    logger,
		keyCodec:  keyCodec,
		valCodec:  valCodec,
	}

	if opts.readOnly {
		read, err := openReadOnlyFileStore(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnableToReadStorage, err)
		}
		s.read = read
		return s, nil
	}

	read, err := openFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnableToCreateStorage, err)
	}
	s.read = read

	write, err := openFileStore(s.writePath)
	if err != nil {
		read.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnableToCreateStorage, err)
	}
	s.write = write

	writeLen, err := write.Len()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnableToReadStorage, err)
	}
	if writeLen == 0 {
		if err := s.resetWriteSide(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// isEmpty reports whether the read side has length 0: "no tree yet".
func (s *storage[K, V]) isEmpty() (bool, error) {
	n, err := s.read.Len()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnableToReadStorage, err)
	}
	return n == 0, nil
}

// resetWriteSide (re)initializes the write side to its idle state: a
// 20-byte header with root_offset = 0.
func (s *storage[K, V]) resetWriteSide() error {
	if s.write == nil {
		return ErrStorageReadOnly
	}
	if err := s.write.Truncate(0); err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToModifyTemporary, err)
	}
	header, err := encodeHeader(0)
	if err != nil {
		return err
	}
	if _, err := s.write.WriteAt(header, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToModifyTemporary, err)
	}
	return nil
}

// writeFileIsEmpty reports whether the write side is in its idle state
// (exactly headerSize bytes), the post-commit steady state.
func (s *storage[K, V]) writeFileIsEmpty() (bool, error) {
	if s.write == nil {
		return true, nil
	}
	n, err := s.write.Len()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnableToReadStorage, err)
	}
	return n == writeSideIdleSize, nil
}

// append writes node to the write side at its current end and returns the
// offset of the written record.
func (s *storage[K, V]) append(n *Node[K, V]) (int64, error) {
	if s.readOnly {
		return 0, ErrStorageReadOnly
	}
	if !n.loaded {
		return 0, ErrNodeNotLoaded
	}

	body, err := encodeNodeBody(n, s.keyCodec, s.valCodec)
	if err != nil {
		return 0, err
	}
	record, err := frameRecord(body)
	if err != nil {
		return 0, err
	}

	off, err := s.write.Append(record)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnableToModifyTemporary, err)
	}
	n.offset = off
	return off, nil
}

// saveRoot appends node to the write side, then updates the write side's
// header to point at the new record, and returns the offset written.
func (s *storage[K, V]) saveRoot(n *Node[K, V]) (int64, error) {
	if s.readOnly {
		return 0, ErrStorageReadOnly
	}
	if !n.loaded {
		return 0, ErrNodeNotLoaded
	}

	off, err := s.append(n)
	if err != nil {
		return 0, err
	}

	header, err := encodeHeader(off)
	if err != nil {
		return 0, err
	}
	if _, err := s.write.WriteAt(header, 0); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnableToModifyTemporary, err)
	}
	return off, nil
}

// readRoot commits any pending write side, then reads root_offset from
// the read side's header and decodes that record.
func (s *storage[K, V]) readRoot() (*Node[K, V], error) {
	if !s.readOnly {
		idle, err := s.writeFileIsEmpty()
		if err != nil {
			return nil, err
		}
		if !idle {
			if err := s.commit(); err != nil {
				return nil, err
			}
		}
	}

	headerBuf := make([]byte, headerSize)
	if _, err := s.read.ReadAt(headerBuf, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecordSize, err)
	}
	rootOffset, err := decodeHeader(headerBuf)
	if err != nil {
		return nil, err
	}

	root, err := s.findNode(rootOffset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRootRecord, err)
	}
	root.isRoot = true
	return root, nil
}

// findNode reads the record at offset — trying the read side first, and
// falling back to the write side for offsets written earlier in the
// current operation, not yet promoted by commit — decodes it, and stamps
// offset on the result.
func (s *storage[K, V]) findNode(offset int64) (*Node[K, V], error) {
	n, err := s.findNodeIn(s.read, offset)
	if err == nil {
		return n, nil
	}
	if s.write != nil {
		if n2, err2 := s.findNodeIn(s.write, offset); err2 == nil {
			return n2, nil
		}
	}
	return nil, err
}

func (s *storage[K, V]) findNodeIn(fs FileStore, offset int64) (*Node[K, V], error) {
	sizeField := make([]byte, fieldWidth)
	if _, err := fs.ReadAt(sizeField, offset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecordSize, err)
	}
	size, err := decodeFixedWidth(sizeField)
	if err != nil {
		return nil, err
	}

	body := make([]byte, size)
	if _, err := fs.ReadAt(body, offset+fieldWidth); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	n, err := decodeNodeBody(body, s.keyCodec, s.valCodec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	n.offset = offset
	return n, nil
}

// commit replaces the read side with the write side: delete the read
// side, rename the write side into its place, reopen the read side, and
// re-initialize a fresh idle write side. Because the promotion is a
// rename rather than a copy, offsets recorded during the operation remain
// valid byte positions in the promoted file.
func (s *storage[K, V]) commit() error {
	if s.readOnly {
		return ErrStorageReadOnly
	}

	if err := s.read.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToReadStorage, err)
	}
	if err := s.read.Remove(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToRenameTemporary, err)
	}
	if err := s.write.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToModifyTemporary, err)
	}
	if err := s.write.Rename(s.readPath); err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToRenameTemporary, err)
	}

	read, err := openFileStore(s.readPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToReadStorage, err)
	}
	s.read = read

	write, err := openFileStore(s.writePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToCreateStorage, err)
	}
	s.write = write
	if err := s.resetWriteSide(); err != nil {
		return err
	}

	s.logger.Info("commit", "readPath", s.readPath)
	return nil
}

// close releases the read-side file handle and removes any lingering
// write-side file.
func (s *storage[K, V]) close() error {
	var firstErr error
	if s.read != nil {
		if err := s.read.Close(); err != nil {
			firstErr = err
		}
	}
	if s.write != nil {
		if err := s.write.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := s.write.Remove(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
