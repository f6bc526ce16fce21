package storage_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ha1tch/automata/internal/storage"
	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parity builds a small complete DFA with a deterministic id sequence.
func parity(t *testing.T, name string) *automaton.Automaton {
	t.Helper()
	n := 0
	s := automaton.NewStore(automaton.KindDFA, automaton.WithName(name), automaton.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("%s-%d", name, n)
	}))
	require.NoError(t, s.SetAlphabet([]string{"0", "1"}))
	even := s.AddState("even")
	odd := s.AddState("odd")
	require.NoError(t, s.SetStart(even))
	require.NoError(t, s.SetAccept(even, true))
	for _, e := range []struct {
		from, to automaton.StateID
		sym      string
	}{{even, odd, "1"}, {odd, even, "1"}, {even, even, "0"}, {odd, odd, "0"}} {
		_, err := s.AddTransition(e.from, e.to, []string{e.sym})
		require.NoError(t, err)
	}
	return s.Snapshot()
}

// runRepositoryContract checks the behaviour every Repository shares.
func runRepositoryContract(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	t.Run("empty library", func(t *testing.T) {
		names, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("save and load", func(t *testing.T) {
		original := parity(t, "parity")
		require.NoError(t, repo.Save(ctx, "parity", original))

		loaded, err := repo.Load(ctx, "parity")
		require.NoError(t, err)
		assert.Equal(t, original, loaded)
	})

	t.Run("save replaces", func(t *testing.T) {
		replacement := parity(t, "other")
		require.NoError(t, repo.Save(ctx, "parity", replacement))

		loaded, err := repo.Load(ctx, "parity")
		require.NoError(t, err)
		assert.Equal(t, "other", loaded.Name)
	})

	t.Run("load missing", func(t *testing.T) {
		_, err := repo.Load(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("list is sorted", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "zeta", parity(t, "zeta")))
		require.NoError(t, repo.Save(ctx, "alpha", parity(t, "alpha")))

		names, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "parity", "zeta"}, names)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "zeta"))
		_, err := repo.Load(ctx, "zeta")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "zeta"), storage.ErrNotFound)

		names, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "parity"}, names)
	})

	t.Run("invalid names", func(t *testing.T) {
		a := parity(t, "x")
		for _, name := range []string{"", "../escape", `a\b`, ".hidden"} {
			assert.ErrorIs(t, repo.Save(ctx, name, a), storage.ErrInvalidName, name)
			_, err := repo.Load(ctx, name)
			assert.ErrorIs(t, err, storage.ErrInvalidName, name)
			assert.ErrorIs(t, repo.Delete(ctx, name), storage.ErrInvalidName, name)
		}
	})
}
