package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/QiPanTanYi/banyan/models"
)

// Persisted - часть состояния сессии, которая переживает перезапуск клиента.
type Persisted struct {
	IsAuthenticated bool                `json:"isAuthenticated"`
	User            *models.UserProfile `json:"user,omitempty"`
	Token           string              `json:"token,omitempty"`
	RefreshToken    string              `json:"refreshToken,omitempty"`
}

// Storage сохраняет и загружает состояние сессии.
type Storage interface {
	// Load возвращает nil без ошибки, если сохраненного состояния нет.
	Load() (*Persisted, error)
	Save(p Persisted) error
	Clear() error
}

// FileStorage хранит сессию в JSON-файле. Доступ к файлу сериализуется
// блокировкой flock на соседнем файле .lock, чтобы два клиента не писали одновременно.
type FileStorage struct {
	path string
	lock *flock.Flock
}

// NewFileStorage создает хранилище по пути path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path, lock: flock.New(path + ".lock")}
}

// Path возвращает путь к файлу сессии.
func (f *FileStorage) Path() string { return f.path }

func (f *FileStorage) Load() (*Persisted, error) {
	if _, err := os.Stat(filepath.Dir(f.path)); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err := f.lock.RLock(); err != nil {
		return nil, fmt.Errorf("ошибка блокировки файла сессии: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения файла сессии: %w", err)
	}

	var p Persisted
	if err = json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла сессии: %w", err)
	}
	return &p, nil
}

func (f *FileStorage) Save(p Persisted) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка кодирования сессии: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("ошибка создания каталога сессии: %w", err)
	}
	if err = f.lock.Lock(); err != nil {
		return fmt.Errorf("ошибка блокировки файла сессии: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()

	// Пишем во временный файл и переименовываем, чтобы не оставить файл недописанным
	tmp := f.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("ошибка записи файла сессии: %w", err)
	}
	if err = os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ошибка сохранения файла сессии: %w", err)
	}
	return nil
}

func (f *FileStorage) Clear() error {
	if _, err := os.Stat(filepath.Dir(f.path)); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("ошибка блокировки файла сессии: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка удаления файла сессии: %w", err)
	}
	return nil
}

// MemoryStorage хранит сессию в памяти. Используется, когда файл сессии отключен.
type MemoryStorage struct {
	mu sync.Mutex
	p  *Persisted
}

func (m *MemoryStorage) Load() (*Persisted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.p == nil {
		return nil, nil
	}
	c := *m.p
	return &c, nil
}

func (m *MemoryStorage) Save(p Persisted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = &p
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = nil
	return nil
}
