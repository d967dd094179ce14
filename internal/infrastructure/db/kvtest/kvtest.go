// Package kvtest is a conformance suite shared by the ports.KVStore
// backends.
package kvtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safad/worklog/internal/core/domain"
	"github.com/safad/worklog/internal/core/ports"
)

// Run exercises store against the KVStore contract. The store must start
// without the keys ports.KeyUsers, ports.KeySession and ports.KeyRecords.
func Run(t *testing.T, store ports.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		_, err := store.Get(ctx, ports.KeySession)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		doc := []byte(`[{"id":"1","username":"SAFAD"}]`)
		require.NoError(t, store.Set(ctx, ports.KeyUsers, doc))

		got, err := store.Get(ctx, ports.KeyUsers)
		require.NoError(t, err)
		assert.JSONEq(t, string(doc), string(got))
	})

	t.Run("set replaces the whole document", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, ports.KeyRecords, []byte(`[{"id":"a"},{"id":"b"}]`)))
		require.NoError(t, store.Set(ctx, ports.KeyRecords, []byte(`[]`)))

		got, err := store.Get(ctx, ports.KeyRecords)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(got))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, ports.KeySession, []byte(`{"id":"1"}`)))

		users, err := store.Get(ctx, ports.KeyUsers)
		require.NoError(t, err)
		assert.Contains(t, string(users), "SAFAD")
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, ports.KeySession))
		_, err := store.Get(ctx, ports.KeySession)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("delete missing key", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, ports.KeySession))
	})

	t.Run("concurrent writers last write wins", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, store.Set(ctx, ports.KeySession, []byte(fmt.Sprintf(`{"id":"%d"}`, i))))
			}(i)
		}
		wg.Wait()

		got, err := store.Get(ctx, ports.KeySession)
		require.NoError(t, err)
		var doc struct{ ID string }
		require.NoError(t, json.Unmarshal(got, &doc), "document torn by concurrent writes: %s", got)
		assert.Regexp(t, `^[0-7]$`, doc.ID)
	})
}
