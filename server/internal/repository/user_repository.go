package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/models"
)

// Коды и имена ограничений PostgreSQL.
const (
	pgUniqueViolationCode = "23505"
	usernameConstraint    = "users_username_key"
	emailConstraint       = "users_email_key"
)

const userColumns = `id, username, password, email, phone, status, login_time, logout_time, created_at, updated_at`

// UserRepository определяет методы для работы с данными пользователей в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetActiveUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// FindActiveByIdentifier ищет активного пользователя, у которого username, email
	// или phone равен identifier. При нескольких совпадениях побеждает меньший id.
	FindActiveByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UpdateLoginTime(ctx context.Context, id int64, at time.Time) error
	UpdateLogoutTime(ctx context.Context, id int64, at time.Time) error
}

// postgresUserRepository реализует UserRepository для PostgreSQL.
type postgresUserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresUserRepository создает новый экземпляр репозитория пользователей для PostgreSQL.
func NewPostgresUserRepository(db *sqlx.DB, logger *zap.Logger) UserRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresUserRepository{db: db, logger: logger.With(zap.String("component", "repository"))}
}

// CreateUser создает нового пользователя в базе данных.
// Заполняет ID, CreatedAt и UpdatedAt переданной структуры и возвращает ID.
func (r *postgresUserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	query := `INSERT INTO users (username, password, email, phone, status) VALUES ($1, $2, $3, $4, $5) ` +
		`RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, user.Username, user.Password, user.Email, user.Phone, user.Status).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		// Проверяем на ошибку нарушения уникальности (duplicate key)
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			r.logger.Info("Нарушение уникальности при создании пользователя",
				zap.String("username", user.Username), zap.String("constraint", pgErr.Constraint))
			if pgErr.Constraint == emailConstraint {
				return 0, ErrEmailTaken
			}
			return 0, ErrUsernameTaken
		}
		r.logger.Error("Непредвиденная ошибка при создании пользователя",
			zap.String("username", user.Username), zap.Error(err))
		return 0, fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	r.logger.Debug("Пользователь создан", zap.String("username", user.Username), zap.Int64("user_id", user.ID))
	return user.ID, nil
}

// GetUserByID находит пользователя по ID независимо от статуса.
func (r *postgresUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetActiveUserByID находит активного (status = 1) пользователя по ID.
func (r *postgresUserRepository) GetActiveUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id", `SELECT `+userColumns+` FROM users WHERE id = $1 AND status = 1`, id)
}

// GetUserByUsername находит пользователя по его имени.
func (r *postgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetUserByEmail находит пользователя по email.
func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *postgresUserRepository) FindActiveByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` +
		`WHERE status = 1 AND (username = $1 OR email = $1 OR phone = $1) ORDER BY id LIMIT 1`
	return r.getOne(ctx, "identifier", query, identifier)
}

// UpdateLoginTime фиксирует время последнего входа.
func (r *postgresUserRepository) UpdateLoginTime(ctx context.Context, id int64, at time.Time) error {
	return r.touch(ctx, "login_time", id, at)
}

// UpdateLogoutTime фиксирует время последнего выхода.
func (r *postgresUserRepository) UpdateLogoutTime(ctx context.Context, id int64, at time.Time) error {
	return r.touch(ctx, "logout_time", id, at)
}

func (r *postgresUserRepository) getOne(ctx context.Context, by, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug("Пользователь не найден", zap.String("by", by))
			return nil, ErrUserNotFound
		}
		r.logger.Error("Ошибка при поиске пользователя", zap.String("by", by), zap.Error(err))
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}
	return &user, nil
}

// touch обновляет одну из колонок времени. column подставляется только из констант выше.
func (r *postgresUserRepository) touch(ctx context.Context, column string, id int64, at time.Time) error {
	query := `UPDATE users SET ` + column + ` = $2, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		r.logger.Error("Ошибка обновления времени", zap.String("column", column), zap.Int64("user_id", id), zap.Error(err))
		return fmt.Errorf("ошибка выполнения запроса на обновление %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа обновленных строк: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
