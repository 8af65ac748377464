// Пакет share — подписанные ссылки для публичного доступа к файлу.
// Токен — HS256 JWT: sub = UUID файла, aud = "share", exp = срок действия.
package share

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// PathPrefix — префикс публичного маршрута ссылок.
	PathPrefix = "/s/"

	issuer   = "fileshare"
	audience = "share"
)

// ErrInvalidToken — токен повреждён, подписан другим ключом или истёк.
var ErrInvalidToken = errors.New("недействительная ссылка")

// Link — выданная ссылка.
type Link struct {
	// URL — абсолютная ссылка {publicURL}/s/{token}
	URL string
	// Token — подписанный токен
	Token string
	// ExpiresAt — момент истечения
	ExpiresAt time.Time
}

// Issuer выдаёт и проверяет ссылки.
type Issuer struct {
	secret    []byte
	ttl       time.Duration
	publicURL string
	now       func() time.Time
}

// NewIssuer создаёт Issuer. secret не может быть пустым, ttl > 0.
func NewIssuer(secret []byte, ttl time.Duration, publicURL string) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("секрет подписи ссылок не задан")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("срок действия ссылки должен быть положительным: %s", ttl)
	}
	return &Issuer{
		secret:    secret,
		ttl:       ttl,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}, nil
}

// TTL возвращает срок действия выдаваемых ссылок.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Create подписывает ссылку на файл fileID.
func (i *Issuer) Create(fileID string) (*Link, error) {
	now := i.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   fileID,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("подпись ссылки: %w", err)
	}
	return &Link{
		URL:       i.publicURL + PathPrefix + token,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve проверяет токен и возвращает UUID файла.
func (i *Issuer) Resolve(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: нет идентификатора файла", ErrInvalidToken)
	}
	return claims.Subject, nil
}
