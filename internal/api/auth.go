package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tonkeeper/tongo/ton"

	"nftraffle/internal/blockchain"
)

const callerKey = "caller"

var errMissingToken = errors.New("missing bearer token")

// IssueToken signs a caller token for subject with HS256.
func IssueToken(secret []byte, subject ton.AccountID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  subject.ToRaw(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// authenticate proves the caller identity: the token subject is the raw
// account id every signer check runs against.
func (h *Handler) authenticate(c *gin.Context) {
	caller, err := h.verify(c.GetHeader("Authorization"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
			Code:    "UNAUTHENTICATED",
			Message: err.Error(),
		})
		return
	}
	c.Set(callerKey, caller)
	c.Next()
}

func (h *Handler) verify(header string) (ton.AccountID, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return ton.AccountID{}, errMissingToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return h.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ton.AccountID{}, err
	}

	return blockchain.ParseAddress(claims.Subject)
}

func caller(c *gin.Context) ton.AccountID {
	return c.MustGet(callerKey).(ton.AccountID)
}
