package account

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dErrors "storefront/pkg/domain-errors"
)

func newTestService() *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewInMemoryStore(), log)
}

func TestCreateHashesPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, User{ID: "u1", Name: "Alice", Email: "alice@example.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.Empty(t, created.Password, "cleartext never leaves the service")
	require.NotEmpty(t, created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter2")))
}

func TestCreateRequiresEmail(t *testing.T) {
	svc := newTestService()
	_, err := svc.Create(context.Background(), User{ID: "u1", Name: "Alice"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestDuplicateEmailIsConflict(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, User{ID: "u1", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, User{ID: "u2", Email: "alice@example.com"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestUpdateKeepsHashWhenPasswordOmitted(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, User{ID: "u1", Email: "alice@example.com", Password: "hunter2"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, User{ID: "u1", Name: "Alice B", Email: "alice@example.com"})
	require.NoError(t, err)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice B", users[0].Name)
	assert.Equal(t, created.PasswordHash, users[0].PasswordHash)
}

func TestUpdateUnknownUserIsNotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.Update(context.Background(), User{ID: "ghost", Email: "g@example.com"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDeleteRemovesUser(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, User{ID: "u1", Email: "alice@example.com"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "u1"))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	err = svc.Delete(ctx, "u1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
