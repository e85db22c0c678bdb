package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

// FormTokenField is the hidden input carrying the token.
const FormTokenField = "form_token"

const formTokenIssuer = "income-predictor"

var (
	ErrBadFormToken = errors.New("invalid form token")

	// ErrMissingFormToken also matches ErrBadFormToken.
	ErrMissingFormToken = fmt.Errorf("%w: none submitted", ErrBadFormToken)
)

// FormTokens signs and checks the token embedded in the prediction form. The
// signing key is derived from the configured secret so the raw secret is
// never used directly as an HMAC key.
type FormTokens struct {
	hmac []byte
	ttl  time.Duration
	now  func() time.Time
}

func NewFormTokens(secret string, ttl time.Duration) (*FormTokens, error) {
	if secret == "" {
		return nil, errors.New("empty secret")
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("form-token")), key); err != nil {
		return nil, err
	}
	return &FormTokens{hmac: key, ttl: ttl, now: time.Now}, nil
}

type Claims struct {
	jwt.RegisteredClaims
}

func (a *FormTokens) Issue() (string, error) {
	now := a.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    formTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *FormTokens) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(formTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return nil, errors.Join(ErrBadFormToken, err)
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// RequireFormToken rejects POSTs whose form token is missing or invalid.
// onReject renders the failure; nil falls back to a plain 403.
func RequireFormToken(a *FormTokens, onReject func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	if onReject == nil {
		onReject = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "invalid form token", http.StatusForbidden)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.PostFormValue(FormTokenField)
			if raw == "" {
				onReject(w, r, ErrMissingFormToken)
				return
			}
			c, err := a.Parse(raw)
			if err != nil {
				onReject(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTokenID(r.Context(), c.ID)))
		})
	}
}
