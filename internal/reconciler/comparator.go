package reconciler

import "context"

// LocalSource resolves the revision currently checked out in the local
// working copy.
type LocalSource interface {
	Head(ctx context.Context) (string, error)
}

// RemoteSource resolves the tip revision of the tracked branch on the remote
// service.
type RemoteSource interface {
	Tip(ctx context.Context) (string, error)
}

// Comparison is the outcome of one local/remote revision lookup.
type Comparison struct {
	LocalID  string `json:"local_id"`
	RemoteID string `json:"remote_id"`
	Matches  bool   `json:"matches"`
}

// Comparator reports whether the local working copy matches the tip of the
// remote branch.
type Comparator struct {
	Local  LocalSource
	Remote RemoteSource
}

// Compare resolves both revision identifiers and compares them for exact
// equality. Errors from either source are returned unchanged; Compare never
// retries.
func (c *Comparator) Compare(ctx context.Context) (Comparison, error) {
	remote, err := c.Remote.Tip(ctx)
	if err != nil {
		return Comparison{}, err
	}
	local, err := c.Local.Head(ctx)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		LocalID:  local,
		RemoteID: remote,
		Matches:  local == remote,
	}, nil
}
