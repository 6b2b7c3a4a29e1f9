package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Типы токенов, записываемые в claim "typ".
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Ошибки проверки токенов. Наружу обе превращаются в 401.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenClaims - полезная нагрузка access и refresh токенов.
// Subject содержит ID пользователя в десятичной записи.
type TokenClaims struct {
	Username  string `json:"username"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID возвращает ID пользователя из Subject.
func (c *TokenClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: некорректный sub", ErrInvalidToken)
	}
	return id, nil
}

// TokenPair - выданная пара токенов.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn - время жизни access токена в секундах.
	ExpiresIn int64
}

// TokenConfig - параметры подписи токенов.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
	Issuer        string
}

// AccessTokenVerifier проверяет access токены. Используется middleware аутентификации.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (*TokenClaims, error)
}

// TokenService подписывает и проверяет токены доступа и обновления.
type TokenService interface {
	AccessTokenVerifier
	IssueAccessToken(userID int64, username string) (string, error)
	IssueRefreshToken(userID int64, username string) (string, error)
	IssuePair(userID int64, username string) (*TokenPair, error)
	VerifyRefreshToken(token string) (*TokenClaims, error)
}

var _ TokenService = (*tokenService)(nil)

type tokenService struct {
	cfg TokenConfig
	now func() time.Time
}

// TokenOption настраивает tokenService.
type TokenOption func(*tokenService)

// WithClock подменяет источник времени (используется в тестах истечения токенов).
func WithClock(now func() time.Time) TokenOption {
	return func(s *tokenService) { s.now = now }
}

// NewTokenService создает сервис токенов.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) TokenService {
	s := &tokenService{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *tokenService) IssueAccessToken(userID int64, username string) (string, error) {
	return s.sign(userID, username, TokenTypeAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

func (s *tokenService) IssueRefreshToken(userID int64, username string) (string, error) {
	return s.sign(userID, username, TokenTypeRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

// IssuePair выдает новую пару токенов. Каждая пара уникальна благодаря jti.
func (s *tokenService) IssuePair(userID int64, username string) (*TokenPair, error) {
	access, err := s.IssueAccessToken(userID, username)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(userID, username)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTTL / time.Second),
	}, nil
}

func (s *tokenService) VerifyAccessToken(token string) (*TokenClaims, error) {
	return s.verify(token, TokenTypeAccess, s.cfg.AccessSecret)
}

func (s *tokenService) VerifyRefreshToken(token string) (*TokenClaims, error) {
	return s.verify(token, TokenTypeRefresh, s.cfg.RefreshSecret)
}

func (s *tokenService) sign(userID int64, username, typ, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := TokenClaims{
		Username:  username,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    s.cfg.Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}
	return signed, nil
}

func (s *tokenService) verify(token, typ, secret string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.cfg.Issuer))
	}

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	// Подпись одним секретом не гарантирует тип, проверяем его явно.
	if claims.TokenType != typ {
		return nil, fmt.Errorf("%w: ожидался %s токен", ErrInvalidToken, typ)
	}
	if _, err = claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}
