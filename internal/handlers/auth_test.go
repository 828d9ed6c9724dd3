package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/internal/models"
	"github.com/stackit-dev/stackit/backend/internal/repositories"
	"github.com/stackit-dev/stackit/backend/internal/testutil"
	"github.com/stackit-dev/stackit/backend/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVerifier struct {
	tokens map[string]*auth.Token
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if token, ok := f.tokens[idToken]; ok {
		return token, nil
	}
	return nil, errors.New("token rejected")
}

func firebaseLogin(t *testing.T, h *AuthHandler, idToken string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/firebase-login", strings.NewReader(`{"idToken":"`+idToken+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h.FirebaseLogin(e.NewContext(req, rec))
}

func TestFirebaseLogin(t *testing.T) {
	db := testutil.NewTestDB(t)
	existing := testutil.CreateUser(t, db, "linked")
	victim := testutil.CreateUser(t, db, "victim")
	verifier := &fakeVerifier{tokens: map[string]*auth.Token{
		"new-user":   {UID: "fb-new", Claims: map[string]interface{}{"email": "New@Example.com", "name": "Newcomer"}},
		"linked":     {UID: "fb-linked", Claims: map[string]interface{}{"email": existing.Email, "email_verified": true}},
		"unverified": {UID: "fb-squatter", Claims: map[string]interface{}{"email": victim.Email, "email_verified": false}},
		"no-claim":   {UID: "fb-unknown", Claims: map[string]interface{}{"email": victim.Email}},
		"no-email":   {UID: "fb-anon", Claims: map[string]interface{}{}},
	}}
	h := NewAuthHandler(repositories.NewPostgresUserRepository(db), verifier, "secret", time.Hour, zap.NewNop())

	t.Run("creates a user on first login", func(t *testing.T) {
		rec, err := firebaseLogin(t, h, "new-user")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "new@example.com", resp.User.Email)
		assert.Equal(t, "Newcomer", resp.User.DisplayName)

		// a second login finds the same row
		rec, err = firebaseLogin(t, h, "new-user")
		require.NoError(t, err)
		var again models.AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
		assert.Equal(t, resp.User.ID, again.User.ID)
	})

	t.Run("links an existing email account", func(t *testing.T) {
		rec, err := firebaseLogin(t, h, "linked")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, rec.Code)

		var user models.User
		require.NoError(t, db.First(&user, existing.ID).Error)
		require.NotNil(t, user.FirebaseUID)
		assert.Equal(t, "fb-linked", *user.FirebaseUID)
	})

	t.Run("does not link an existing email without verification", func(t *testing.T) {
		for _, idToken := range []string{"unverified", "no-claim"} {
			rec, err := firebaseLogin(t, h, idToken)
			assert.Equal(t, http.StatusConflict, httpStatus(err), idToken)
			assert.Empty(t, rec.Body.String(), idToken)
		}

		var user models.User
		require.NoError(t, db.First(&user, victim.ID).Error)
		assert.Nil(t, user.FirebaseUID)
	})

	t.Run("rejects an invalid token", func(t *testing.T) {
		_, err := firebaseLogin(t, h, "forged")
		assert.Equal(t, http.StatusUnauthorized, httpStatus(err))
	})

	t.Run("rejects an account without email", func(t *testing.T) {
		_, err := firebaseLogin(t, h, "no-email")
		assert.Equal(t, http.StatusBadRequest, httpStatus(err))
	})
}

func httpStatus(err error) int {
	_, status := buildErrorResponse(err)
	return status
}
