package reconciler

import (
	"context"
	"errors"
	"testing"
)

func TestCompareMatches(t *testing.T) {
	c := &Comparator{
		Local:  &stubLocal{id: "abc123"},
		Remote: &stubRemote{id: "abc123"},
	}

	cmp, err := c.Compare(context.Background())
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if !cmp.Matches {
		t.Errorf("identical identifiers reported as mismatch: %+v", cmp)
	}
	if cmp.LocalID != "abc123" || cmp.RemoteID != "abc123" {
		t.Errorf("unexpected identifiers: %+v", cmp)
	}
}

func TestCompareMismatch(t *testing.T) {
	c := &Comparator{
		Local:  &stubLocal{id: "abc123"},
		Remote: &stubRemote{id: "def456"},
	}

	cmp, err := c.Compare(context.Background())
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if cmp.Matches {
		t.Errorf("distinct identifiers reported as match: %+v", cmp)
	}
}

func TestCompareNoPrefixMatching(t *testing.T) {
	c := &Comparator{
		Local:  &stubLocal{id: "abc123"},
		Remote: &stubRemote{id: "abc123f"},
	}

	cmp, err := c.Compare(context.Background())
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if cmp.Matches {
		t.Error("prefix overlap must not count as a match")
	}
}

func TestCompareSurfacesErrorsUnchanged(t *testing.T) {
	remoteErr := &NetworkError{Err: errors.New("unreachable")}
	c := &Comparator{
		Local:  &stubLocal{id: "abc123"},
		Remote: &stubRemote{err: remoteErr},
	}

	_, err := c.Compare(context.Background())
	if !errors.Is(err, remoteErr) {
		t.Errorf("remote error not passed through: %v", err)
	}

	localErr := &LocalRepositoryError{Path: "/srv/checkout", Err: errors.New("corrupt")}
	c = &Comparator{
		Local:  &stubLocal{err: localErr},
		Remote: &stubRemote{id: "abc123"},
	}

	_, err = c.Compare(context.Background())
	if !errors.Is(err, localErr) {
		t.Errorf("local error not passed through: %v", err)
	}
}
