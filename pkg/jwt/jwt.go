package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Profile viaja en el token para que el middleware RBAC del sandbox no consulte el store.
type Claims struct {
	jwt.RegisteredClaims
	UserID  int64  `json:"user_id"`
	Profile string `json:"profile"` // "ADMIN" | "BRANCH" | "DRIVER"
}

var errEmptySecret = errors.New("jwt: secret vacío")

// Generate genera un token JWT firmado que incluye userID y profile.
func Generate(secret string, userID int64, profile, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", errEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:  userID,
		Profile: profile,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// parser acepta solo HS256; un alg distinto es token inválido.
var parser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithIssuedAt(),
)

// Parse valida firma y expiración. Usar IsExpired para distinguir el vencimiento.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	claims := &Claims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}); err != nil {
		return nil, err
	}
	return claims, nil
}

// IsExpired indica si el error de Parse se debe únicamente a la expiración del token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

// PeekExpiry lee el claim exp sin verificar la firma. El cliente no conoce el secret;
// solo lo usa para descartar sesiones restauradas que ya vencieron.
func PeekExpiry(tokenString string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
