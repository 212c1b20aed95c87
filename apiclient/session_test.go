package apiclient_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
)

func Test_FileSessionStore_RoundTripAndClear(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := apiclient.NewFileSessionStore(path)
	session := apiclient.Session{
		Token:   "token-abc",
		Profile: apiclient.Profile{ID: "3", Name: "Lin", Email: "lin@example.org", Role: "admin"},
	}

	// act
	_, errBeforeSave := store.Load()
	saveErr := store.Save(session)
	loaded, loadErr := store.Load()
	hadSession, clearErr := store.Clear()
	hadSessionAgain, clearAgainErr := store.Clear()
	_, errAfterClear := store.Load()

	// assert
	assert.ErrorIs(t, errBeforeSave, apiclient.ErrNoSession)
	require.NoError(t, saveErr)
	require.NoError(t, loadErr)
	assert.Equal(t, session, loaded)
	require.NoError(t, clearErr)
	assert.True(t, hadSession)
	require.NoError(t, clearAgainErr)
	assert.False(t, hadSessionAgain)
	assert.ErrorIs(t, errAfterClear, apiclient.ErrNoSession)
}

func Test_FileSessionStore_PersistsStableKeysWithOwnerOnlyPermissions(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "session.json")
	store := apiclient.NewFileSessionStore(path)

	// act
	err := store.Save(apiclient.Session{Token: "t", Profile: apiclient.Profile{ID: "1"}})

	// assert
	require.NoError(t, err)

	raw, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(raw), `"token":"t"`)
	assert.Contains(t, string(raw), `"user":{`)

	info, statErr := os.Stat(path)
	require.NoError(t, statErr)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func Test_FileSessionStore_Load_FailsOnCorruptFile(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	store := apiclient.NewFileSessionStore(path)

	// act
	_, err := store.Load()

	// assert
	require.Error(t, err)
	assert.NotErrorIs(t, err, apiclient.ErrNoSession)
}

func Test_MemorySessionStore_ClearReportsPresence(t *testing.T) {
	store := apiclient.NewMemorySessionStore()

	hadSession, err := store.Clear()
	require.NoError(t, err)
	assert.False(t, hadSession)

	require.NoError(t, store.Save(apiclient.Session{Token: "x"}))

	hadSession, err = store.Clear()
	require.NoError(t, err)
	assert.True(t, hadSession)
}

func Test_ProfileFromToken(t *testing.T) {
	t.Run("reads profile claims", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"sub": "5", "name": "Noor", "email": "noor@example.org", "role": "librarian"})

		profile, err := apiclient.ProfileFromToken(token)

		require.NoError(t, err)
		assert.Equal(t, apiclient.Profile{ID: "5", Name: "Noor", Email: "noor@example.org", Role: "librarian"}, profile)
	})

	t.Run("rejects token without subject", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"name": "Nobody"})

		_, err := apiclient.ProfileFromToken(token)

		assert.ErrorIs(t, err, apiclient.ErrMalformedToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := apiclient.ProfileFromToken("not-a-token")

		assert.ErrorIs(t, err, apiclient.ErrMalformedToken)
	})
}
