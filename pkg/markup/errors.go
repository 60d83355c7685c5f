package markup

import "github.com/vango-dev/tessera/internal/errors"

// Sentinels for errors.Is. Render failures match by category, so
// ErrRenderFailure matches invalid tags and unknown kinds. Errors reported
// by blocks are returned as the block produced them.
var (
	ErrDepthLimitExceeded = errors.New("E140")
	ErrInvalidTag         = errors.New("E160")
	ErrRenderFailure      = &errors.Error{Category: errors.CategoryRender, Message: "render failure"}
	ErrValidationRejected = &errors.Error{Category: errors.CategoryValidation, Message: "validation rejected"}
)
