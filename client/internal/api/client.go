package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/QiPanTanYi/banyan/models"
)

// DefaultTimeout - таймаут одного HTTP-запроса.
const DefaultTimeout = 15 * time.Second

// ErrAuthorization сигнализирует об ошибке авторизации (401).
var ErrAuthorization = errors.New("ошибка авторизации")

// APIError - ошибка, которую сервер вернул в теле ответа.
type APIError struct {
	Status  int
	Message string
	Fields  []models.FieldError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ошибка сервера: статус %d", e.Status)
	}
	return e.Message
}

// Unwrap позволяет проверять 401 через errors.Is(err, ErrAuthorization).
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrAuthorization
	}
	return nil
}

// Client определяет интерфейс для взаимодействия с API сервера Banyan ERP.
type Client interface {
	// Register регистрирует нового пользователя и возвращает выданные токены.
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	// Login аутентифицирует пользователя по имени, email или телефону.
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	// GetProfile получает профиль текущего пользователя.
	GetProfile(ctx context.Context) (*models.UserProfile, error)
	// Refresh обменивает refresh токен на новую пару.
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	// Logout сообщает серверу о выходе.
	Logout(ctx context.Context) error
	// SetAuthToken устанавливает access токен для аутентифицированных запросов.
	SetAuthToken(token string)
}

// httpClient реализует интерфейс Client для взаимодействия с сервером по HTTP.
type httpClient struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	authToken string
}

// NewHTTPClient создает новый экземпляр API клиента.
// baseURL указывает на корень сервера, например "http://localhost:3001".
func NewHTTPClient(baseURL string) Client {
	return &httpClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Register отправляет запрос на регистрацию на сервер.
func (c *httpClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, false, &resp); err != nil {
		return nil, fmt.Errorf("регистрация: %w", err)
	}
	return &resp, nil
}

// Login отправляет запрос на вход на сервер.
func (c *httpClient) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	body := models.LoginRequest{Username: username, Password: password}
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, false, &resp); err != nil {
		return nil, fmt.Errorf("вход: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("сервер вернул пустой токен")
	}
	return &resp, nil
}

// GetProfile запрашивает профиль текущего пользователя.
func (c *httpClient) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, true, &profile); err != nil {
		return nil, fmt.Errorf("получение профиля: %w", err)
	}
	return &profile, nil
}

// Refresh обменивает refresh токен на новую пару токенов.
func (c *httpClient) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	body := models.RefreshRequest{RefreshToken: refreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", body, false, &resp); err != nil {
		return nil, fmt.Errorf("обновление токена: %w", err)
	}
	return &resp, nil
}

// Logout сообщает серверу о выходе пользователя.
func (c *httpClient) Logout(ctx context.Context) error {
	var resp models.LogoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, true, &resp); err != nil {
		return fmt.Errorf("выход: %w", err)
	}
	return nil
}

// SetAuthToken устанавливает токен аутентификации для клиента.
func (c *httpClient) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

func (c *httpClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// do выполняет запрос и раскладывает поле data конверта ответа в out.
func (c *httpClient) do(ctx context.Context, method, path string, body any, auth bool, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("ошибка формирования URL: %w", err)
	}

	var reader io.Reader
	if body != nil {
		jsonData, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return fmt.Errorf("ошибка кодирования запроса: %w", marshalErr)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if auth {
		token := c.token()
		if token == "" {
			return fmt.Errorf("%w: токен аутентификации отсутствует", ErrAuthorization)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	var env models.RawEnvelope
	if err = json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("ошибка декодирования ответа: %w", err)
	}
	if out != nil && len(env.Data) > 0 {
		if err = json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("ошибка декодирования данных ответа: %w", err)
		}
	}
	return nil
}

// decodeError строит APIError из тела ошибки. Если тело не разбирается, остается только статус.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body models.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Message = body.Message
		apiErr.Fields = body.Errors
	}
	return apiErr
}
