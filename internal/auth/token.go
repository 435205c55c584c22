/* JWT 세션 토큰 생성 및 검증 */

package auth

import (
	"errors"
	"fmt"
	"time"

	"ResumeSense/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const issuer = "resumesense-api"

// Claims 구조체, JWT 페이로드에 사용자 정보 포함. jti(ID)로 로그아웃 처리
type Claims struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	key []byte
	ttl time.Duration
}

func NewTokenManager(key []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{key: key, ttl: ttl}
}

// JWT 토큰 생성
func (m *TokenManager) Generate(user models.User) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UID:      user.ID,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   user.ID,
		},
	}

	// 토큰 문자열 생성 및 서명
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.key)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, claims, nil
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// JWT 토큰 검증. HS256 이외 알고리즘은 거부
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.key, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UID == "" || claims.Issuer != issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
