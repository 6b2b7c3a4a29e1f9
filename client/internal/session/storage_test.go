package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QiPanTanYi/banyan/client/internal/session"
	"github.com/QiPanTanYi/banyan/models"
)

func TestFileStorage(t *testing.T) {
	email := "a@x.com"
	sample := session.Persisted{
		IsAuthenticated: true,
		User:            &models.UserProfile{ID: 1, Username: "alice", Email: &email, Status: 1},
		Token:           "access-1",
		RefreshToken:    "refresh-1",
	}

	t.Run("Файл отсутствует", func(t *testing.T) {
		fs := session.NewFileStorage(filepath.Join(t.TempDir(), "missing", "session.json"))
		p, err := fs.Load()
		require.NoError(t, err)
		assert.Nil(t, p)
		assert.NoError(t, fs.Clear())
	})

	t.Run("Сохранение и загрузка", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "session.json")
		fs := session.NewFileStorage(path)
		require.NoError(t, fs.Save(sample))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		p, err := fs.Load()
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, sample, *p)
	})

	t.Run("Формат ключей", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		fs := session.NewFileStorage(path)
		require.NoError(t, fs.Save(sample))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"isAuthenticated": true`)
		assert.Contains(t, string(data), `"refreshToken": "refresh-1"`)
		assert.Contains(t, string(data), `"token": "access-1"`)
	})

	t.Run("Очистка", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		fs := session.NewFileStorage(path)
		require.NoError(t, fs.Save(sample))
		require.NoError(t, fs.Clear())

		p, err := fs.Load()
		require.NoError(t, err)
		assert.Nil(t, p)
		assert.Equal(t, path, fs.Path())
	})

	t.Run("Поврежденный файл", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := session.NewFileStorage(path).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка разбора файла сессии")
	})
}

func TestMemoryStorage(t *testing.T) {
	var ms session.MemoryStorage

	p, err := ms.Load()
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, ms.Save(session.Persisted{Token: "t"}))
	p, err = ms.Load()
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "t", p.Token)

	require.NoError(t, ms.Clear())
	p, err = ms.Load()
	require.NoError(t, err)
	assert.Nil(t, p)
}
