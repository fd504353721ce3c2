package chat

import "errors"

// Error kinds shared across the store, the completion gateway and the
// orchestrator. Callers classify failures with errors.Is and wrap these with
// fmt.Errorf("...: %w", ...) to attach detail.
var (
	// ErrValidation marks malformed input; nothing was persisted.
	ErrValidation = errors.New("validation failed")

	// ErrStorage marks a message store read or write failure.
	ErrStorage = errors.New("storage failed")

	// ErrProvider marks a failed completion provider call. Messages already
	// persisted for the turn stay persisted.
	ErrProvider = errors.New("completion provider failed")

	// ErrEmptyCompletion marks a provider response that carried no usable
	// content. Propagates like ErrProvider.
	ErrEmptyCompletion = errors.New("completion provider returned no content")
)
