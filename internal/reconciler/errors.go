package reconciler

import "fmt"

// NetworkError indicates the remote revision service was unreachable or
// rejected the credential. Transient: the loop retries on the next tick.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// LocalRepositoryError indicates the local working copy is missing, corrupted,
// or not a valid checkout.
type LocalRepositoryError struct {
	Path string
	Err  error
}

func (e *LocalRepositoryError) Error() string {
	return fmt.Sprintf("local repository %s: %v", e.Path, e.Err)
}

func (e *LocalRepositoryError) Unwrap() error { return e.Err }

// UpdateError indicates the fast-forward update action failed. The working
// copy is assumed unchanged; the loop stays behind and retries next tick.
type UpdateError struct {
	Target string
	Err    error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update to %s: %v", e.Target, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }
