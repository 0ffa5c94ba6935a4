package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
)

func newTestService() *JWTService {
	return NewJWTService("test-signing-key", "medledger-test", "medledger")
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService()
	identity := id.NewIdentity()

	token, err := svc.GenerateToken(identity, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity.String(), claims.Identity)
	assert.Equal(t, "medledger-test", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateToken(id.NewIdentity(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_WrongKey(t *testing.T) {
	token, err := newTestService().GenerateToken(id.NewIdentity(), time.Hour)
	require.NoError(t, err)

	other := NewJWTService("different-key", "medledger-test", "medledger")
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := newTestService().ValidateToken("not.a.token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestMiddlewareAdapter(t *testing.T) {
	svc := newTestService()
	identity := id.NewIdentity()
	token, err := svc.GenerateToken(identity, time.Hour)
	require.NoError(t, err)

	adapter := NewMiddlewareAdapter(svc)
	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity.String(), claims.Identity)
}
