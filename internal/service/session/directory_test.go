package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/policyadvisor/internal/core"
)

func TestDirectory_RefreshReplacesCache(t *testing.T) {
	listings := [][]core.SessionSummary{
		{{ID: "a"}, {ID: "b"}},
		{{ID: "c"}},
	}
	call := 0
	backend := &mockBackend{
		listFunc: func(ctx context.Context) ([]core.SessionSummary, error) {
			out := listings[call]
			call++
			return out, nil
		},
	}
	dir := NewDirectory(backend)

	first, err := dir.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := dir.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "c", second[0].ID)
	assert.Equal(t, second, dir.Cached())
}

func TestDirectory_RefreshFailureKeepsCache(t *testing.T) {
	fail := false
	backend := &mockBackend{
		listFunc: func(ctx context.Context) ([]core.SessionSummary, error) {
			if fail {
				return nil, errors.New("backend down")
			}
			return []core.SessionSummary{{ID: "a"}}, nil
		},
	}
	dir := NewDirectory(backend)

	_, err := dir.Refresh(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = dir.Refresh(context.Background())
	require.Error(t, err)

	// Last good listing still available for the picker.
	require.Len(t, dir.Cached(), 1)
}

func TestDirectory_RemoveIsLocal(t *testing.T) {
	backend := &mockBackend{
		listFunc: func(ctx context.Context) ([]core.SessionSummary, error) {
			return []core.SessionSummary{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
		},
	}
	dir := NewDirectory(backend)
	_, err := dir.Refresh(context.Background())
	require.NoError(t, err)

	dir.Remove("b")
	ids := make([]string, 0)
	for _, s := range dir.Cached() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)

	// Removing an unknown id is a no-op.
	dir.Remove("zzz")
	assert.Len(t, dir.Cached(), 2)
}
