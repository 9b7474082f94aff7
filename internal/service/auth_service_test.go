package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/testutil"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util"
)

func newAuthService(t *testing.T) (*AuthService, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore()
	return NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4,
	}, store.Users()), store
}

func TestRegisterCreatesAgentAndLogsIn(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Alice", "Alice@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, user.Role)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, token.Value)

	claims, err := svc.TokenManager().ParseToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, err = svc.Register(ctx, "Alice again", "alice@example.com", "another-pass")
	requireCode(t, err, "CONFLICT")

	_, _, err = svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	requireCode(t, err, "UNAUTHORIZED")
	_, _, err = svc.Login(ctx, "nobody@example.com", "wrong")
	requireCode(t, err, "UNAUTHORIZED")
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.CreateUser(context.Background(), "X", "x@example.com", "password1", domain.Role("admin"))
	requireCode(t, err, "VALIDATION_FAILED")
}

func TestCreateUserEnforcesPasswordLength(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.CreateUser(context.Background(), "Sam", "sam@example.com", "short", domain.RoleSupervisor)
	requireCode(t, err, "VALIDATION_FAILED")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Contains(t, domainErr.Details["fields"], "password")
}

func TestListAgents(t *testing.T) {
	svc, store := newAuthService(t)
	store.AddUser("Sam", domain.RoleSupervisor)
	store.AddUser("Alice", domain.RoleAgent)

	agents, err := svc.ListAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "Alice", agents[0].Name)
}
