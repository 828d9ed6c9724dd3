package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stackit-dev/stackit/backend/internal/middleware"
	"github.com/stackit-dev/stackit/backend/internal/models"
	"github.com/stackit-dev/stackit/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret"

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	e := echo.New()
	SetupMiddleware(e, zap.NewNop())
	require.NoError(t, SetupRoutes(e, Dependencies{
		Postgres:  db,
		JWTSecret: testSecret,
		JWTTTL:    time.Hour,
		Logger:    zap.NewNop(),
	}))
	return &testServer{e: e, db: db}
}

func (s *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	decode(t, rec, &m)
	return m
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "up", decodeMap(t, rec)["database"])
}

func TestAnswerVoteEndpoint(t *testing.T) {
	s := newTestServer(t)
	asker := testutil.CreateUser(t, s.db, "asker")
	voter := testutil.CreateUser(t, s.db, "voter")
	q := testutil.CreateQuestion(t, s.db, asker.ID, "How do votes work?")
	a := testutil.CreateAnswer(t, s.db, q.ID, asker.ID)
	token := s.token(t, voter)
	path := fmt.Sprintf("/api/answers/%d/vote", a.ID)

	steps := []struct {
		voteType  string
		wantCount float64
		wantVote  interface{}
	}{
		{"up", 1, "up"},
		{"up", 0, nil},
		{"down", -1, "down"},
		{"up", 1, "up"},
	}
	for i, step := range steps {
		rec := s.do(t, http.MethodPost, path, token, map[string]string{"voteType": step.voteType})
		require.Equal(t, http.StatusOK, rec.Code, "step %d: %s", i, rec.Body.String())
		body := decodeMap(t, rec)
		assert.Equal(t, step.wantCount, body["voteCount"], "step %d", i)
		assert.Equal(t, step.wantVote, body["userVote"], "step %d", i)
	}
}

func TestQuestionVoteEndpoint(t *testing.T) {
	s := newTestServer(t)
	asker := testutil.CreateUser(t, s.db, "asker")
	voter := testutil.CreateUser(t, s.db, "voter")
	q := testutil.CreateQuestion(t, s.db, asker.ID, "How do votes work?")

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/questions/%d/vote", q.ID), s.token(t, voter), map[string]string{"voteType": "down"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, float64(-1), body["voteCount"])
	assert.Equal(t, "down", body["userVote"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/questions/%d", q.ID), s.token(t, voter), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeMap(t, rec)
	assert.Equal(t, float64(-1), detail["voteCount"])
	assert.Equal(t, "down", detail["userVote"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/questions/%d", q.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeMap(t, rec)["userVote"])

	// the list carries the caller's vote too
	rec = s.do(t, http.MethodGet, "/api/questions", s.token(t, voter), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page []models.QuestionDetail
	decode(t, rec, &page)
	require.Len(t, page, 1)
	require.NotNil(t, page[0].UserVote)
	assert.Equal(t, models.VoteDown, *page[0].UserVote)
	assert.Equal(t, int64(-1), page[0].VoteCount)

	rec = s.do(t, http.MethodGet, "/api/questions", s.token(t, asker), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	require.Len(t, page, 1)
	assert.Nil(t, page[0].UserVote)

	rec = s.do(t, http.MethodGet, "/api/questions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	require.Len(t, page, 1)
	assert.Nil(t, page[0].UserVote)
}

func TestVoteErrors(t *testing.T) {
	s := newTestServer(t)
	asker := testutil.CreateUser(t, s.db, "asker")
	q := testutil.CreateQuestion(t, s.db, asker.ID, "How do votes work?")
	a := testutil.CreateAnswer(t, s.db, q.ID, asker.ID)
	token := s.token(t, asker)

	tests := []struct {
		name       string
		path       string
		token      string
		body       interface{}
		wantStatus int
		wantType   string
	}{
		{"no token", fmt.Sprintf("/api/answers/%d/vote", a.ID), "", map[string]string{"voteType": "up"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad token", fmt.Sprintf("/api/answers/%d/vote", a.ID), "garbage", map[string]string{"voteType": "up"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad vote type", fmt.Sprintf("/api/answers/%d/vote", a.ID), token, map[string]string{"voteType": "sideways"}, http.StatusBadRequest, "VALIDATION"},
		{"missing vote type", fmt.Sprintf("/api/answers/%d/vote", a.ID), token, map[string]string{}, http.StatusBadRequest, "VALIDATION"},
		{"missing answer", "/api/answers/999/vote", token, map[string]string{"voteType": "up"}, http.StatusNotFound, "NOT_FOUND"},
		{"missing question", "/api/questions/999/vote", token, map[string]string{"voteType": "up"}, http.StatusNotFound, "NOT_FOUND"},
		{"non numeric id", "/api/answers/abc/vote", token, map[string]string{"voteType": "up"}, http.StatusBadRequest, "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantType, decodeMap(t, rec)["type"])
		})
	}

	var votes int64
	require.NoError(t, s.db.Model(&models.Vote{}).Count(&votes).Error)
	assert.Zero(t, votes)
}

func TestValidationErrorCarriesDetails(t *testing.T) {
	s := newTestServer(t)
	asker := testutil.CreateUser(t, s.db, "asker")

	rec := s.do(t, http.MethodPost, "/api/questions", s.token(t, asker), map[string]interface{}{
		"title":   "Hey",
		"content": "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Type    string            `json:"type"`
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "VALIDATION", body.Type)
	assert.Equal(t, "INVALID_PAYLOAD", body.Code)
	assert.Contains(t, body.Details, "title")
	assert.Contains(t, body.Details, "content")
}

func TestQuestionTagLimitsApplyAfterNormalization(t *testing.T) {
	s := newTestServer(t)
	asker := testutil.CreateUser(t, s.db, "asker")
	token := s.token(t, asker)

	// six spellings of two tags fit under the five tag limit
	rec := s.do(t, http.MethodPost, "/api/questions", token, map[string]interface{}{
		"title":   "Case variants of one tag",
		"content": "These should collapse into two tags.",
		"tags":    []string{"react", "React", "REACT", " react", "react ", "hooks"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.QuestionDetail
	decode(t, rec, &created)
	require.Len(t, created.Tags, 2)
	assert.Equal(t, "hooks", created.Tags[0].Name)
	assert.Equal(t, "react", created.Tags[1].Name)

	// a blank tag is rejected instead of dropped
	rec = s.do(t, http.MethodPost, "/api/questions", token, map[string]interface{}{
		"title":   "Blank tag in the list",
		"content": "Whitespace only tags are invalid.",
		"tags":    []string{"go", "   "},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	var body struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "INVALID_PAYLOAD", body.Code)
	assert.Contains(t, body.Details, "tags[1]")

	// six distinct tags still exceed the limit
	rec = s.do(t, http.MethodPost, "/api/questions", token, map[string]interface{}{
		"title":   "Too many distinct tags",
		"content": "Six different tags are one too many.",
		"tags":    []string{"a", "b", "c", "d", "e", "f"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	decode(t, rec, &body)
	assert.Contains(t, body.Details, "tags")

	var count int64
	require.NoError(t, s.db.Model(&models.Question{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAskAnswerAcceptFlow(t *testing.T) {
	s := newTestServer(t)
	asker := testutil.CreateUser(t, s.db, "asker")
	helper := testutil.CreateUser(t, s.db, "helper")
	stranger := testutil.CreateUser(t, s.db, "stranger")
	askerToken := s.token(t, asker)
	helperToken := s.token(t, helper)

	// ask with tags, which are normalized and returned by name
	rec := s.do(t, http.MethodPost, "/api/questions", askerToken, map[string]interface{}{
		"title":   "How do I use hooks?",
		"content": "I cannot get useEffect to run once.",
		"tags":    []string{"React", "hooks", "react"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.QuestionDetail
	decode(t, rec, &created)
	require.NotZero(t, created.ID)
	require.Len(t, created.Tags, 2)
	assert.Equal(t, "hooks", created.Tags[0].Name)
	assert.Equal(t, "react", created.Tags[1].Name)
	assert.Equal(t, asker.ID, created.Author.ID)

	// answer, which notifies the asker
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/questions/%d/answers", created.ID), helperToken, map[string]string{
		"content": "Pass an empty dependency array.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var answer models.AnswerDetail
	decode(t, rec, &answer)
	require.NotZero(t, answer.ID)
	assert.Equal(t, helper.ID, answer.Author.ID)
	assert.Equal(t, "helper", answer.Author.DisplayName)

	rec = s.do(t, http.MethodGet, "/api/notifications/count", askerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeMap(t, rec)["count"])

	acceptPath := fmt.Sprintf("/api/questions/%d/answers/%d/accept", created.ID, answer.ID)

	// only the question author may accept
	rec = s.do(t, http.MethodPost, acceptPath, s.token(t, stranger), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeMap(t, rec)["type"])

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/questions/%d/answers/%d/accept", created.ID, 999), askerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/questions/%d/answers/%d/accept", 999, answer.ID), askerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, acceptPath, askerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Answer accepted successfully", decodeMap(t, rec)["message"])

	// the helper got exactly one "accepted" notification
	rec = s.do(t, http.MethodGet, "/api/notifications", helperToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox []models.Notification
	decode(t, rec, &inbox)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationAccepted, inbox[0].Type)
	require.NotNil(t, inbox[0].RelatedAnswerID)
	assert.Equal(t, answer.ID, *inbox[0].RelatedAnswerID)

	// the answer list puts the accepted answer first
	testutil.CreateAnswer(t, s.db, created.ID, stranger.ID)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/questions/%d/answers", created.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var answers []models.AnswerDetail
	decode(t, rec, &answers)
	require.Len(t, answers, 2)
	assert.Equal(t, answer.ID, answers[0].ID)
	assert.True(t, answers[0].IsAccepted)
	assert.Equal(t, "helper", answers[0].Author.DisplayName)
	assert.False(t, answers[1].IsAccepted)

	// detail reflects views, the accepted answer and the answer count
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/questions/%d", created.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail models.QuestionDetail
	decode(t, rec, &detail)
	assert.Equal(t, 1, detail.Views)
	assert.Equal(t, int64(2), detail.AnswerCount)
	require.NotNil(t, detail.AcceptedAnswerID)
	assert.Equal(t, answer.ID, *detail.AcceptedAnswerID)
}

func TestAnswerMissingQuestion(t *testing.T) {
	s := newTestServer(t)
	helper := testutil.CreateUser(t, s.db, "helper")

	rec := s.do(t, http.MethodPost, "/api/questions/999/answers", s.token(t, helper), map[string]string{
		"content": "An answer to nothing at all.",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/questions/999/answers", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/questions/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	s := newTestServer(t)
	owner := testutil.CreateUser(t, s.db, "owner")
	other := testutil.CreateUser(t, s.db, "other")
	for i := 0; i < 12; i++ {
		require.NoError(t, s.db.Create(&models.Notification{
			UserID:  owner.ID,
			Type:    models.NotificationAnswer,
			Title:   "New Answer",
			Message: "Someone answered your question!",
		}).Error)
	}
	ownerToken := s.token(t, owner)

	rec := s.do(t, http.MethodGet, "/api/notifications", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox []models.Notification
	decode(t, rec, &inbox)
	assert.Len(t, inbox, 10)

	rec = s.do(t, http.MethodGet, "/api/notifications?limit=500", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &inbox)
	assert.Len(t, inbox, 12)

	rec = s.do(t, http.MethodGet, "/api/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// another user cannot mark it read
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", inbox[0].ID), s.token(t, other), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", inbox[0].ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notification marked as read", decodeMap(t, rec)["message"])

	rec = s.do(t, http.MethodGet, "/api/notifications/count", ownerToken, nil)
	assert.Equal(t, float64(11), decodeMap(t, rec)["count"])

	rec = s.do(t, http.MethodPost, "/api/notifications/read-all", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(11), decodeMap(t, rec)["updated"])

	rec = s.do(t, http.MethodGet, "/api/notifications/count", ownerToken, nil)
	assert.Equal(t, float64(0), decodeMap(t, rec)["count"])
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	signup := map[string]string{
		"email":       "Dana@Example.com",
		"password":    "correct-horse",
		"displayName": "Dana",
	}
	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", signup)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var auth models.AuthResponse
	decode(t, rec, &auth)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "dana@example.com", auth.User.Email)
	assert.NotContains(t, rec.Body.String(), "correct-horse")

	rec = s.do(t, http.MethodPost, "/api/auth/signup", "", signup)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email":    "dana@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email":    "dana@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &auth)

	rec = s.do(t, http.MethodGet, "/api/auth/user", auth.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dana", decodeMap(t, rec)["displayName"])

	rec = s.do(t, http.MethodGet, "/api/auth/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// firebase login is not registered without a verifier
	rec = s.do(t, http.MethodPost, "/api/auth/firebase-login", "", map[string]string{"idToken": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicReads(t *testing.T) {
	s := newTestServer(t)
	asker := testutil.CreateUser(t, s.db, "asker")
	rec := s.do(t, http.MethodPost, "/api/questions", s.token(t, asker), map[string]interface{}{
		"title":   "Which tags exist?",
		"content": "Listing tags should be alphabetical.",
		"tags":    []string{"zig", "go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	testutil.CreateQuestion(t, s.db, asker.ID, "A newer question")

	rec = s.do(t, http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tags []models.Tag
	decode(t, rec, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Name)

	rec = s.do(t, http.MethodGet, "/api/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.Stats
	decode(t, rec, &stats)
	assert.Equal(t, int64(2), stats.Questions)
	assert.Equal(t, int64(1), stats.Users)
	assert.Equal(t, int64(2), stats.Tags)

	rec = s.do(t, http.MethodGet, "/api/questions?limit=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page []models.QuestionDetail
	decode(t, rec, &page)
	require.Len(t, page, 1)
	assert.Equal(t, "A newer question", page[0].Title)

	rec = s.do(t, http.MethodGet, "/api/questions?limit=1&offset=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	require.Len(t, page, 1)
	assert.Equal(t, "Which tags exist?", page[0].Title)
	assert.Len(t, page[0].Tags, 2)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/activity", asker.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/users/999/activity", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
