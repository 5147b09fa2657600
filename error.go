package bstore

import "errors"

// Structural errors: the bytes on disk do not match the framing contract.
// Fatal for the current operation; in-memory tree state is left unmodified.
var (
	ErrInvalidStorage    = errors.New("bstore: storage file is not a valid store")
	ErrInvalidRootRecord = errors.New("bstore: root record could not be decoded")
	ErrInvalidRecord     = errors.New("bstore: node record could not be decoded")
	ErrInvalidRecordSize = errors.New("bstore: record size field is malformed")
)

// Capacity/state errors indicate a programming error: an API was invoked on
// a node whose elements/children are not in memory.
var ErrNodeNotLoaded = errors.New("bstore: node is not loaded")

// Semantic errors are non-fatal; the caller may retry with different input.
var ErrDuplicateKey = errors.New("bstore: key already exists")

// Resource errors are filesystem-level failures. The operation is aborted;
// because the read side is only replaced by atomic rename at commit, any
// failure before rename leaves the previously committed tree fully intact.
var (
	ErrUnableToCreateStorage   = errors.New("bstore: unable to create storage file")
	ErrUnableToReadStorage     = errors.New("bstore: unable to read storage file")
	ErrUnableToModifyTemporary = errors.New("bstore: unable to modify write-side file")
	ErrUnableToRenameTemporary = errors.New("bstore: unable to rename write-side file into place")
	ErrStorageReadOnly         = errors.New("bstore: storage is read-only")
)

// ErrUnableToInsert wraps a downstream failure encountered during Insert,
// surfaced to the caller without losing the cause. Both this sentinel and
// the cause match with errors.Is or errors.As.
var ErrUnableToInsert = errors.New("bstore: insert failed")
