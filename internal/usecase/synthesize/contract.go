package synthesize

import "context"

// Completer requests a single chat completion.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
