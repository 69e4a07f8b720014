package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rationdist/models"
	"rationdist/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Principal is the capability handed to write operations. A nil Principal
// means nobody is logged in.
type Principal struct {
	DistributorID uint
	Username      string
	Name          string
}

// Require rejects an absent or empty principal.
func Require(p *Principal) error {
	if p == nil || p.DistributorID == 0 {
		return apperr.Unauthorized("please log in as a distributor first")
	}
	return nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) ([]byte, error) {
	if len(password) < 6 {
		return nil, fmt.Errorf("password too short (min 6)")
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// CreateDistributor stores a new distributor account.
func CreateDistributor(ctx context.Context, db *gorm.DB, name, username, password string) (*models.Distributor, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("username required", nil)
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, apperr.Validation(err.Error(), err)
	}
	d := models.Distributor{Name: strings.TrimSpace(name), Username: username, HashedPassword: hashed}
	if err := db.WithContext(ctx).Create(&d).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperr.Validation("distributor already exists", err)
		}
		return nil, apperr.Persistence("failed to create distributor", err)
	}
	return &d, nil
}

// Authenticate checks a username/password pair against the distributors table.
func Authenticate(ctx context.Context, db *gorm.DB, username, password string) (*Principal, error) {
	username = strings.TrimSpace(username)
	var d models.Distributor
	if err := db.WithContext(ctx).Where("username = ?", username).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Persistence("failed to look up distributor", err)
	}
	if err := bcrypt.CompareHashAndPassword(d.HashedPassword, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &Principal{DistributorID: d.ID, Username: d.Username, Name: d.Name}, nil
}

// Claims is the payload of the session token.
type Claims struct {
	DistributorID uint   `json:"distributorId"`
	Username      string `json:"username"`
	Name          string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for p valid for ttl.
func IssueToken(secret []byte, ttl time.Duration, p *Principal) (string, error) {
	if err := Require(p); err != nil {
		return "", err
	}
	now := time.Now()
	claims := &Claims{
		DistributorID: p.DistributorID,
		Username:      p.Username,
		Name:          p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates a session token and returns its principal.
func ParseToken(secret []byte, tokenString string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid or expired session")
	}
	p := &Principal{DistributorID: claims.DistributorID, Username: claims.Username, Name: claims.Name}
	if err := Require(p); err != nil {
		return nil, err
	}
	return p, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
