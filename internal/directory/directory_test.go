package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shokrpour/thesisflow/internal/models"
	"github.com/shokrpour/thesisflow/internal/store"
	"github.com/shokrpour/thesisflow/internal/store/jsonfile"
)

func newTestService(t *testing.T) (*Service, *store.Stores) {
	t.Helper()
	stores := jsonfile.OpenStores(t.TempDir())
	return New(stores, SHA256Hasher{}), stores
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register(RegisterInput{
		ID: "s100", Name: "Sam Lee", Password: "hunter2",
		Role: models.RoleStudent, NationalID: "111", Major: "CS",
	}))

	role, err := svc.Authenticate("s100", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, role)

	_, err = svc.Authenticate("s100", "wrong")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.Authenticate("ghost", "hunter2")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	testCases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing id", RegisterInput{Name: "X", Password: "p", Role: models.RoleStudent}},
		{"missing password", RegisterInput{ID: "x1", Name: "X", Role: models.RoleStudent}},
		{"bad role", RegisterInput{ID: "x1", Name: "X", Password: "p", Role: "dean"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.Register(tc.input), models.ErrValidation)
		})
	}
}

func TestRegisterUniqueness(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register(RegisterInput{
		ID: "u1", Name: "Sam", Password: "p", Role: models.RoleStudent, NationalID: "111", Major: "CS",
	}))

	t.Run("id is unique across roles", func(t *testing.T) {
		err := svc.Register(RegisterInput{
			ID: "u1", Name: "Other", Password: "p", Role: models.RoleProfessor, NationalID: "222",
		})
		assert.ErrorIs(t, err, models.ErrAlreadyExists)
	})

	t.Run("national id is unique within a role", func(t *testing.T) {
		err := svc.Register(RegisterInput{
			ID: "u2", Name: "Twin", Password: "p", Role: models.RoleStudent, NationalID: "111", Major: "CS",
		})
		assert.ErrorIs(t, err, models.ErrAlreadyExists)
	})

	t.Run("same national id in another role is fine", func(t *testing.T) {
		err := svc.Register(RegisterInput{
			ID: "p1", Name: "Sam Sr", Password: "p", Role: models.RoleProfessor, NationalID: "111",
		})
		assert.NoError(t, err)
	})
}

func TestRegisterProfessorDropsMajor(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register(RegisterInput{
		ID: "p1", Name: "Dr. Vance", Password: "p", Role: models.RoleProfessor, Major: "CS",
	}))

	prof, err := svc.Get(models.RoleProfessor, "p1")
	require.NoError(t, err)
	assert.Empty(t, prof.Major)
}

func TestResetPassword(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register(RegisterInput{
		ID: "s1", Name: "Sam", Password: "original", Role: models.RoleStudent, NationalID: "555", Major: "CS",
	}))

	temp, err := svc.ResetPassword(models.RoleStudent, "555")
	require.NoError(t, err)
	assert.Len(t, temp, tempPasswordLength)

	_, err = svc.Authenticate("s1", "original")
	assert.ErrorIs(t, err, models.ErrUnauthorized, "old password must stop working")

	role, err := svc.Authenticate("s1", temp)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, role)

	_, err = svc.ResetPassword(models.RoleStudent, "000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Register(RegisterInput{
		ID: "s1", Name: "Sam", Password: "old", Role: models.RoleStudent, Major: "CS",
	}))

	assert.ErrorIs(t, svc.ChangePassword("s1", "nope", "new"), models.ErrUnauthorized)
	assert.ErrorIs(t, svc.ChangePassword("s1", "old", ""), models.ErrValidation)
	assert.ErrorIs(t, svc.ChangePassword("ghost", "old", "new"), models.ErrNotFound)

	require.NoError(t, svc.ChangePassword("s1", "old", "new"))
	_, err := svc.Authenticate("s1", "new")
	assert.NoError(t, err)
}

func TestHashers(t *testing.T) {
	testCases := []struct {
		name   string
		hasher Hasher
	}{
		{"sha256", SHA256Hasher{}},
		{"bcrypt", BcryptHasher{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			digest, err := tc.hasher.Hash("secret")
			require.NoError(t, err)
			assert.NotEqual(t, "secret", digest)
			assert.True(t, tc.hasher.Verify("secret", digest))
			assert.False(t, tc.hasher.Verify("wrong", digest))
		})
	}
}
