package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/habitroom/internal"
	"github.com/yourname/habitroom/internal/api"
	"github.com/yourname/habitroom/internal/auth"
	"github.com/yourname/habitroom/internal/storage"
	"go.uber.org/zap"
)

type testApp struct {
	logger internal.Logger
	rooms  storage.RoomRepository
}

func (a *testApp) Logger() internal.Logger       { return a.logger }
func (a *testApp) Rooms() storage.RoomRepository { return a.rooms }

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  map[string]any     `json:"meta"`
	Error *internal.AppError `json:"error"`
}

func setupRouter(t *testing.T) (*gin.Engine, *storage.FileStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	repo, err := storage.NewFileStorage(t.TempDir()+"/rooms.json", logger)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	app := &testApp{logger: logger, rooms: repo}
	provider := auth.NewLocalProvider("MOCK-TOKEN", logger)
	r := gin.New()
	api.Register(r, app, provider, nil)
	return r, repo
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer MOCK-TOKEN")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestRoomLifecycle(t *testing.T) {
	r, _ := setupRouter(t)

	w, env := doJSON(t, r, "POST", "/api/rooms", `{"name":"Morning Crew"}`)
	require.Equal(t, 200, w.Code)
	var room internal.Room
	require.NoError(t, json.Unmarshal(env.Data, &room))
	assert.NotEmpty(t, room.ID)
	assert.Equal(t, "Morning Crew", room.Name)
	assert.Equal(t, "u1", room.CreatorID)
	require.Len(t, room.Members, 1)

	w, env = doJSON(t, r, "GET", "/api/rooms", "")
	require.Equal(t, 200, w.Code)
	var rooms []internal.Room
	require.NoError(t, json.Unmarshal(env.Data, &rooms))
	assert.Len(t, rooms, 1)
	assert.EqualValues(t, 1, env.Meta["room_count"])

	w, env = doJSON(t, r, "PATCH", "/api/rooms/"+room.ID, `{"name":"Night Crew"}`)
	require.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &room))
	assert.Equal(t, "Night Crew", room.Name)

	w, _ = doJSON(t, r, "DELETE", "/api/rooms/"+room.ID, "")
	require.Equal(t, 200, w.Code)

	w, _ = doJSON(t, r, "GET", "/api/rooms/"+room.ID, "")
	assert.Equal(t, 404, w.Code)
}

func TestItemCheckInFlow(t *testing.T) {
	r, _ := setupRouter(t)
	today := time.Now().Format("2006-01-02")

	_, env := doJSON(t, r, "POST", "/api/rooms", `{"name":"Runners"}`)
	var room internal.Room
	require.NoError(t, json.Unmarshal(env.Data, &room))

	w, env := doJSON(t, r, "POST", "/api/rooms/"+room.ID+"/items", `{"text":"Run 5k"}`)
	require.Equal(t, 200, w.Code)
	var item internal.Item
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "u1", item.UserID)
	assert.Equal(t, today, item.FirstDate)

	body := `{"date":"` + today + `","completed":true}`
	w, env = doJSON(t, r, "POST", "/api/rooms/"+room.ID+"/items/"+item.ID+"/checkin", body)
	require.Equal(t, 200, w.Code)
	assert.Equal(t, true, env.Meta["checked"])
	assert.EqualValues(t, 1, env.Meta["streak"])

	w, env = doJSON(t, r, "GET", "/api/rooms/"+room.ID+"?date="+today, "")
	require.Equal(t, 200, w.Code)
	var view struct {
		Date    string `json:"date"`
		Members []struct {
			Member internal.Member `json:"member"`
			Items  []struct {
				internal.Item
				Checked bool `json:"checked"`
				Streak  int  `json:"streak"`
			} `json:"items"`
			Progress struct {
				Completed  int `json:"completed"`
				Total      int `json:"total"`
				Percentage int `json:"percentage"`
			} `json:"progress"`
		} `json:"memberItems"`
		Leaderboard []struct {
			Member internal.Member `json:"member"`
			Score  int             `json:"score"`
			Rank   string          `json:"rank"`
		} `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, today, view.Date)
	require.Len(t, view.Members, 1)
	require.Len(t, view.Members[0].Items, 1)
	assert.True(t, view.Members[0].Items[0].Checked)
	assert.Equal(t, 100, view.Members[0].Progress.Percentage)
	require.Len(t, view.Leaderboard, 1)
	assert.Equal(t, "🥇", view.Leaderboard[0].Rank)

	// Unchecking retires the item from the next day's view.
	body = `{"date":"` + today + `","completed":false}`
	w, env = doJSON(t, r, "POST", "/api/rooms/"+room.ID+"/items/"+item.ID+"/checkin", body)
	require.Equal(t, 200, w.Code)
	assert.Equal(t, false, env.Meta["checked"])
}

func TestItemValidation(t *testing.T) {
	r, _ := setupRouter(t)

	_, env := doJSON(t, r, "POST", "/api/rooms", `{"name":"Readers"}`)
	var room internal.Room
	require.NoError(t, json.Unmarshal(env.Data, &room))

	w, _ := doJSON(t, r, "POST", "/api/rooms/"+room.ID+"/items", `{"text":""}`)
	assert.Equal(t, 400, w.Code)

	w, _ = doJSON(t, r, "POST", "/api/rooms/"+room.ID+"/items", `{"text":"ok","firstDate":"March 1"}`)
	assert.Equal(t, 400, w.Code)

	w, _ = doJSON(t, r, "POST", "/api/rooms/"+room.ID+"/items/nope/checkin", `{"date":"2024-03-10"}`)
	assert.Equal(t, 400, w.Code)
}

func TestJoinFullRoom(t *testing.T) {
	r, repo := setupRouter(t)

	full := &internal.Room{
		ID:        "fullroom",
		Name:      "Full",
		CreatorID: "x1",
		Members: []internal.Member{
			{ID: "x1"}, {ID: "x2"}, {ID: "x3"}, {ID: "x4"},
		},
		Items:     []internal.Item{},
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.InsertRoom(context.Background(), full))

	w, env := doJSON(t, r, "POST", "/api/rooms/fullroom/join", "")
	assert.Equal(t, 409, w.Code)
	require.NotNil(t, env.Error)

	w, _ = doJSON(t, r, "POST", "/api/rooms/missing/join", "")
	assert.Equal(t, 404, w.Code)
}

func TestCreatorCannotLeave(t *testing.T) {
	r, _ := setupRouter(t)

	_, env := doJSON(t, r, "POST", "/api/rooms", `{"name":"Stuck"}`)
	var room internal.Room
	require.NoError(t, json.Unmarshal(env.Data, &room))

	w, _ := doJSON(t, r, "POST", "/api/rooms/"+room.ID+"/leave", "")
	assert.Equal(t, 403, w.Code)
}

func TestUnauthorized(t *testing.T) {
	r, _ := setupRouter(t)

	req, _ := http.NewRequest("GET", "/api/rooms", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)

	req, _ = http.NewRequest("GET", "/api/rooms", nil)
	req.Header.Set("Authorization", "Bearer WRONG")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)
}

func TestHealthzIsPublic(t *testing.T) {
	r, _ := setupRouter(t)

	req, _ := http.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
}
