// Package transaction provides the broker's view of the external
// transaction store: a signed JWT carrying the transaction claims. The
// broker only reads {transaction_id, client_id, scope}; everything else in
// the token belongs to the RP-facing layer.
package transaction

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SvHu/svs/internal/core/domain"
	"github.com/SvHu/svs/internal/core/ports"
)

// JWTStore resolves transaction tokens signed with RSA (RS256). Tokens are
// stateless; expiry is enforced by the claims.
type JWTStore struct {
	privateKey *rsa.PrivateKey
	duration   time.Duration
}

// transactionClaims defines the JWT claims structure for transactions. The
// transaction id rides in the registered ID (jti) claim.
type transactionClaims struct {
	jwt.RegisteredClaims
	ClientID string   `json:"client_id"`
	Scope    []string `json:"scope"`
}

// NewJWTStore creates a JWT-based transaction store. The duration bounds the
// lifetime of tokens issued by Create.
func NewJWTStore(privateKey *rsa.PrivateKey, duration time.Duration) *JWTStore {
	return &JWTStore{
		privateKey: privateKey,
		duration:   duration,
	}
}

// Create issues a signed token for a transaction context. The RP-facing
// layer calls this when a transaction starts; the broker core itself only
// reads tokens back through Get.
func (s *JWTStore) Create(tx *domain.TransactionContext) (string, error) {
	now := time.Now()
	claims := transactionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tx.TransactionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
		},
		ClientID: tx.ClientID,
		Scope:    tx.Scope,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.privateKey)
}

// Get implements ports.TransactionStore. Invalid, expired or foreign tokens
// come back as ErrTransactionNotFound.
func (s *JWTStore) Get(token string) (*domain.TransactionContext, error) {
	var claims transactionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return &s.privateKey.PublicKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.Join(ports.ErrTransactionNotFound, err)
	}
	return &domain.TransactionContext{
		TransactionID: claims.ID,
		ClientID:      claims.ClientID,
		Scope:         domain.Scope(claims.Scope),
	}, nil
}

// Ensure the implementation satisfies the port.
var _ ports.TransactionStore = (*JWTStore)(nil)
