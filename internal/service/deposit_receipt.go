package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositClaims - подтверждение платежа, которое платёжный шлюз подписывает общим секретом.
// Сумму и идентификатор платежа клиент не выбирает: они берутся только из подписанного подтверждения.
type DepositClaims struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"ref"`
	jwt.RegisteredClaims
}

// DepositReceipts выпускает и проверяет подтверждения пополнений.
type DepositReceipts struct {
	secret []byte
}

// NewDepositReceipts создаёт проверку подтверждений с секретом DEPOSIT_SIGNING_SECRET.
func NewDepositReceipts(secret string) *DepositReceipts {
	return &DepositReceipts{secret: []byte(secret)}
}

// Sign выпускает подтверждение на пополнение кошелька userID.
func (r *DepositReceipts) Sign(userID uuid.UUID, amount decimal.Decimal, reference string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := DepositClaims{
		Amount:    amount,
		Reference: reference,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.secret)
}

// Parse проверяет подпись и срок действия, возвращает получателя и содержимое подтверждения.
func (r *DepositReceipts) Parse(receipt string) (uuid.UUID, *DepositClaims, error) {
	claims := &DepositClaims{}
	parsed, err := jwt.ParseWithClaims(receipt, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, nil, err
	}
	if !parsed.Valid {
		return uuid.Nil, nil, jwt.ErrTokenInvalidClaims
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return userID, claims, nil
}
