package bstore

// defaultMinimumDegree is a block-sized minimum degree, in the spirit of
// sizing a node to occupy roughly one disk block. Ignored when opening an
// existing store, where t is read back from the root record.
const defaultMinimumDegree = 128

// StoreOptions configures how a Tree is opened or created.
type StoreOptions struct {
	minimumDegree int
	readOnly      bool
	logger        Logger
}

// defaultStoreOptions returns safe default configuration.
func defaultStoreOptions() StoreOptions {
	return StoreOptions{
		minimumDegree: defaultMinimumDegree,
		readOnly:      false,
		logger:        DiscardLogger{},
	}
}

// StoreOption configures store options using the functional options pattern.
type StoreOption func(*StoreOptions)

// WithMinimumDegree sets the B-tree minimum degree t used only when
// creating a new store. t must be >= 2; values below that are clamped up
// by Open. Ignored when opening an existing store.
//
//goland:noinspection GoUnusedExportedFunction
func WithMinimumDegree(t int) StoreOption {
	return func(opts *StoreOptions) {
		opts.minimumDegree = t
	}
}

// WithReadOnly opens the storage engine without a write-side file. Any
// mutating operation on a read-only store fails with ErrStorageReadOnly.
//
//goland:noinspection GoUnusedExportedFunction
func WithReadOnly() StoreOption {
	return func(opts *StoreOptions) {
		opts.readOnly = true
	}
}

// WithLogger installs a Logger used for structural warnings that do not
// fail the operation they occur in (e.g. a minimumDegree override silently
// ignored on reopen). Defaults to DiscardLogger.
//
//goland:noinspection GoUnusedExportedFunction
func WithLogger(l Logger) StoreOption {
	return func(opts *StoreOptions) {
		opts.logger = l
	}
}
