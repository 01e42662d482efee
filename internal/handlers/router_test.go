package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"devhub/internal/mocks"
	"devhub/internal/services"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	comps    *mocks.CompetitionRepositoryMock
	entries  *mocks.EntryRepositoryMock
	users    *mocks.UserRepositoryMock
	chats    *mocks.ChatRepositoryMock
	messages *mocks.MessageRepositoryMock
	notifier *mocks.NotifierMock
	router   *gin.Engine
}

// newFixture routes every endpoint with userID as the caller; 0 means anonymous.
func newFixture(t *testing.T, userID int) *fixture {
	t.Helper()
	f := &fixture{
		comps:    new(mocks.CompetitionRepositoryMock),
		entries:  new(mocks.EntryRepositoryMock),
		users:    new(mocks.UserRepositoryMock),
		chats:    new(mocks.ChatRepositoryMock),
		messages: new(mocks.MessageRepositoryMock),
		notifier: new(mocks.NotifierMock),
	}
	t.Cleanup(func() {
		f.comps.AssertExpectations(t)
		f.entries.AssertExpectations(t)
		f.users.AssertExpectations(t)
		f.chats.AssertExpectations(t)
		f.messages.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	competitionSvc := services.NewCompetitionService(f.comps, f.entries, f.users, func() time.Time { return now })
	chatSvc := services.NewChatService(f.chats, f.messages, f.users, f.notifier)
	comps := NewCompetitionHandler(competitionSvc)
	entries := NewEntryHandler(competitionSvc)
	chats := NewChatHandler(chatSvc)
	messages := NewMessageHandler(chatSvc)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set("userID", userID)
		}
		c.Next()
	})
	r.GET("/competitions", comps.ListCompetitions)
	r.GET("/competitions/:id", comps.GetCompetition)
	r.GET("/competitions/:id/leaderboard", comps.Leaderboard)
	r.POST("/competitions", comps.CreateCompetition)
	r.PATCH("/competitions/:id/finalize", comps.Finalize)
	r.GET("/entries", entries.ListEntries)
	r.POST("/entries", entries.SubmitEntry)
	r.PATCH("/entries/:id/vote", entries.Vote)
	r.DELETE("/entries/:id", entries.DeleteEntry)
	r.GET("/chats", chats.ListChats)
	r.POST("/chats/start", chats.StartChat)
	r.POST("/messages", messages.SendMessage)
	r.GET("/messages/:chatId", messages.GetMessages)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Message
}

func ptr[T any](v T) *T {
	return &v
}

