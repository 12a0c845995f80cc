package link

import "errors"

// Error kinds surfaced by the store, manager, and watcher. Callers
// classify failures with errors.Is against these sentinels.
var (
	// ErrValidation indicates a request that is malformed before any
	// side effect (bad glob, empty write path, unknown id token).
	ErrValidation = errors.New("validation error")

	// ErrConflict indicates a state collision: a write path already
	// claimed by an active link, or a guarded operation refused.
	ErrConflict = errors.New("conflict")

	// ErrNotFound indicates a referenced link id does not exist.
	ErrNotFound = errors.New("link not found")

	// ErrProcess indicates a watcher process failed to launch, confirm,
	// or terminate as requested.
	ErrProcess = errors.New("process error")

	// ErrStore indicates the persistence layer failed underneath an
	// otherwise valid operation.
	ErrStore = errors.New("store error")

	// ErrHardFault indicates a watcher terminated abnormally and its
	// descriptor carries the fault marker.
	ErrHardFault = errors.New("hard fault")
)
