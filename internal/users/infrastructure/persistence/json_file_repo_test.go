package persistence

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityreports/miniapp/internal/users/domain"
)

func writeStore(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users_data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readJSON(t *testing.T, path string) map[string]map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestJSONFileRepository_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		repo := NewJSONFileRepository(filepath.Join(t.TempDir(), "nope.json"), nil)
		_, err := repo.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrStoreNotFound)
		assert.False(t, repo.Exists())
	})

	t.Run("corrupt file", func(t *testing.T) {
		repo := NewJSONFileRepository(writeStore(t, `not json`), nil)
		_, err := repo.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrStoreCorrupt)
	})

	t.Run("array document", func(t *testing.T) {
		repo := NewJSONFileRepository(writeStore(t, `[]`), nil)
		_, err := repo.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrStoreCorrupt)
	})

	t.Run("valid file", func(t *testing.T) {
		repo := NewJSONFileRepository(writeStore(t, `{"1": {}, "2": {"name": "B"}}`), nil)
		store, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, store.IDs())
	})

	t.Run("cancelled context", func(t *testing.T) {
		repo := NewJSONFileRepository(writeStore(t, `{}`), nil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := repo.Load(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestJSONFileRepository_Get(t *testing.T) {
	ctx := context.Background()
	repo := NewJSONFileRepository(writeStore(t, `{"42": {"name": "Alice"}}`), nil)

	rec, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	name, _ := rec.Get(domain.FieldName)
	assert.JSONEq(t, `"Alice"`, string(name))

	_, err = repo.Get(ctx, "43")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestJSONFileRepository_SetField(t *testing.T) {
	ctx := context.Background()

	t.Run("missing store is not created", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users_data.json")
		repo := NewJSONFileRepository(path, nil)

		err := repo.SetField(ctx, "1", "promo_enabled", false)
		assert.ErrorIs(t, err, domain.ErrStoreNotFound)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("updates existing user and keeps unknown fields", func(t *testing.T) {
		path := writeStore(t, `{"42": {"name": "Alice", "custom": {"a": [1, 2]}, "streaming_enabled": true}}`)
		repo := NewJSONFileRepository(path, nil)

		require.NoError(t, repo.SetField(ctx, "42", "streaming_enabled", false))

		got := readJSON(t, path)
		assert.Equal(t, false, got["42"]["streaming_enabled"])
		assert.Equal(t, "Alice", got["42"]["name"])
		assert.Equal(t, map[string]any{"a": []any{float64(1), float64(2)}}, got["42"]["custom"])
	})

	t.Run("creates record for unknown user", func(t *testing.T) {
		path := writeStore(t, `{"1": {"name": "A"}}`)
		repo := NewJSONFileRepository(path, nil)

		require.NoError(t, repo.SetField(ctx, "2", "updates_enabled", false))

		store, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, store.IDs())
		rec, _ := store.Get("2")
		assert.Equal(t, []string{"updates_enabled"}, rec.Fields())
	})

	t.Run("is idempotent", func(t *testing.T) {
		path := writeStore(t, `{"1": {"name": "A"}}`)
		repo := NewJSONFileRepository(path, nil)

		require.NoError(t, repo.SetField(ctx, "1", "promo_enabled", false))
		once, err := os.ReadFile(path)
		require.NoError(t, err)

		require.NoError(t, repo.SetField(ctx, "1", "promo_enabled", false))
		twice, err := os.ReadFile(path)
		require.NoError(t, err)

		assert.Equal(t, string(once), string(twice))
	})

	t.Run("corrupt store is left untouched", func(t *testing.T) {
		path := writeStore(t, `{"1": `)
		repo := NewJSONFileRepository(path, nil)

		err := repo.SetField(ctx, "1", "promo_enabled", false)
		assert.ErrorIs(t, err, domain.ErrStoreCorrupt)

		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, `{"1": `, string(data))
	})

	t.Run("non-object entry only affects its own user", func(t *testing.T) {
		path := writeStore(t, `{"1": "legacy", "42": {"name": "Alice"}}`)
		repo := NewJSONFileRepository(path, nil)

		err := repo.SetField(ctx, "1", "promo_enabled", false)
		assert.ErrorIs(t, err, domain.ErrRecordInvalid)
		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, `{"1": "legacy", "42": {"name": "Alice"}}`, string(data))

		_, err = repo.Get(ctx, "1")
		assert.ErrorIs(t, err, domain.ErrRecordInvalid)

		require.NoError(t, repo.SetField(ctx, "42", "promo_enabled", false))
		data, readErr = os.ReadFile(path)
		require.NoError(t, readErr)
		assert.JSONEq(t, `{"1": "legacy", "42": {"name": "Alice", "promo_enabled": false}}`, string(data))
	})

	t.Run("untouched text is not re-escaped", func(t *testing.T) {
		path := writeStore(t, `{"42": {"note": "a<b&c"}}`)
		repo := NewJSONFileRepository(path, nil)

		require.NoError(t, repo.SetField(ctx, "42", "city", "Тверь"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"note": "a<b&c"`)
		assert.Contains(t, string(data), `"city": "Тверь"`)
	})

	t.Run("keeps file permissions", func(t *testing.T) {
		path := writeStore(t, `{}`)
		require.NoError(t, os.Chmod(path, 0o600))
		repo := NewJSONFileRepository(path, nil)

		require.NoError(t, repo.SetField(ctx, "1", "x", 1))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})
}

func TestJSONFileRepository_ConcurrentSetField(t *testing.T) {
	ctx := context.Background()
	path := writeStore(t, `{}`)
	repo := NewJSONFileRepository(path, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.SetField(ctx, "user", fieldName(i), i))
		}(i)
	}
	wg.Wait()

	got := readJSON(t, path)
	assert.Len(t, got["user"], 20, "serialized writers must not lose updates")
}

func fieldName(i int) string {
	return "field_" + string(rune('a'+i))
}
