package service

import (
	"testing"
	"time"

	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) (*authService, *fakeUserRepo, *model.User, *fakePublisher) {
	t.Helper()
	user := newUser("avaliado@sgad.local", permission.RoleAvaliado, "DRH")
	require.NoError(t, user.SetPassword("segredo1"))
	repo := newFakeUserRepo(user)
	events := &fakePublisher{}
	svc := NewAuthService(repo, jwt.NewManager("test-secret", "sgad-api", time.Hour), permission.NewDefaultEvaluator(), events, 30*time.Minute)
	return svc.(*authService), repo, user, events
}

func TestLogin(t *testing.T) {
	svc, _, user, _ := newAuth(t)

	res, err := svc.Login(user.Email, "segredo1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, permission.RoleAvaliado, res.User.Role)
	assert.Contains(t, res.Permissions, "M08.create")
	assert.NotContains(t, res.Permissions, "M09.create")
	require.NotEmpty(t, res.Modules)
	assert.Equal(t, permission.ModuleDashboard, res.Modules[0].Code)

	_, err = svc.Login(user.Email, "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("ninguem@sgad.local", "segredo1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Inactive(t *testing.T) {
	svc, repo, user, _ := newAuth(t)
	repo.users[user.ID].IsActive = false

	_, err := svc.Login(user.Email, "segredo1")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestValidateToken_SingleSession(t *testing.T) {
	svc, _, user, _ := newAuth(t)

	first, err := svc.Login(user.Email, "segredo1")
	require.NoError(t, err)
	info, err := svc.ValidateToken(first.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, info.User.ID)

	_, err = svc.Login(user.Email, "segredo1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(first.Token)
	assert.ErrorIs(t, err, ErrSessionReplaced)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestValidateToken_Idle(t *testing.T) {
	svc, _, user, _ := newAuth(t)

	res, err := svc.Login(user.Email, "segredo1")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	_, err = svc.ValidateToken(res.Token)
	assert.ErrorIs(t, err, ErrSessionTimeout)
}

func TestChangePassword(t *testing.T) {
	svc, repo, user, _ := newAuth(t)

	assert.ErrorIs(t, svc.ChangePassword(user.ID, "errada", "novasenha"), ErrWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword(user.ID, "segredo1", "curta"), ErrValidation)
	require.NoError(t, svc.ChangePassword(user.ID, "segredo1", "novasenha"))
	assert.True(t, repo.users[user.ID].CheckPassword("novasenha"))
}

func TestHeartbeat(t *testing.T) {
	svc, _, user, events := newAuth(t)

	require.NoError(t, svc.Heartbeat(user.ID))
	assert.Equal(t, []string{"user_status_update"}, events.types())
}
