package preview

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoMatch means no reference lies under the cursor.
	ErrNoMatch = errors.New("no image reference at cursor")

	// ErrUnresolved means the reference could not be turned into a locator.
	ErrUnresolved = errors.New("could not resolve image locator")

	// ErrFetch means the locator's bytes could not be retrieved.
	ErrFetch = errors.New("could not fetch image")

	// ErrDecode means the bytes are not a readable image.
	ErrDecode = errors.New("could not decode image")
)

// NotResolvedMessage is the neutral text shown in place of a preview.
const NotResolvedMessage = "Could not resolve image for preview"

// classify wraps err with kind unless err is a context cancellation, which
// is passed through so callers can tell abandonment from failure.
func classify(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
