package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dawudu11/burptracker/internal"
	"github.com/dawudu11/burptracker/internal/api"
	"github.com/dawudu11/burptracker/internal/storage"
	"github.com/dawudu11/burptracker/internal/ws"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	repos, err := storage.NewFileRepositories(
		filepath.Join(dir, "users.json"),
		filepath.Join(dir, "groups.json"),
		filepath.Join(dir, "sessions.json"),
		logger,
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Closer.Close() })

	hub := ws.NewHub(logger)
	go hub.Run()

	r := gin.New()
	api.RegisterRoutes(r, api.NewServer(logger, repos, hub))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(t)
	rec, body := doJSON(t, r, "GET", "/api/", "")
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, body["message"], "Burp Tracker API")
}

func TestPostBurpSession(t *testing.T) {
	r := setupRouter(t)

	rec, body := doJSON(t, r, "POST", "/api/burp/session", `{"duration":2500}`)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	for _, field := range []string{"date", "total_time", "session_count", "longest_session", "average_session", "sessions"} {
		assert.Contains(t, data, field)
	}
	assert.EqualValues(t, 1, data["session_count"])
	assert.EqualValues(t, 2500, data["total_time"])
}

func TestPostBurpSessionTooShort(t *testing.T) {
	r := setupRouter(t)

	rec, body := doJSON(t, r, "POST", "/api/burp/session", `{"duration":50}`)
	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, strings.ToLower(body["detail"].(string)), "too short")

	// Nothing was recorded.
	_, today := doJSON(t, r, "GET", "/api/burp/today", "")
	assert.EqualValues(t, 0, today["session_count"])
}

func TestTodayStatsDirectFields(t *testing.T) {
	r := setupRouter(t)
	doJSON(t, r, "POST", "/api/burp/session", `{"duration":1500}`)
	doJSON(t, r, "POST", "/api/burp/session", `{"duration":2000}`)

	rec, body := doJSON(t, r, "GET", "/api/burp/today", "")
	require.Equal(t, 200, rec.Code)
	assert.EqualValues(t, 2, body["session_count"])
	assert.EqualValues(t, 3500, body["total_time"])
	assert.EqualValues(t, 2000, body["longest_session"])
	assert.EqualValues(t, 1750, body["average_session"])
}

func TestHistoryEndpoint(t *testing.T) {
	r := setupRouter(t)
	doJSON(t, r, "POST", "/api/burp/session", `{"duration":1500}`)

	rec, body := doJSON(t, r, "GET", "/api/burp/history/7", "")
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, true, body["success"])
	history := body["data"].([]interface{})
	assert.LessOrEqual(t, len(history), 7)
	assert.Len(t, history, 1)

	rec, _ = doJSON(t, r, "GET", "/api/burp/history/0", "")
	assert.Equal(t, 400, rec.Code)

	rec, _ = doJSON(t, r, "GET", "/api/burp/history/abc", "")
	assert.Equal(t, 400, rec.Code)
}

func TestCreateUserIdempotent(t *testing.T) {
	r := setupRouter(t)

	rec, body := doJSON(t, r, "POST", "/api/user/create", `{"username":"TestPlayer1"}`)
	require.Equal(t, 200, rec.Code)
	first := body["user"].(map[string]interface{})
	for _, field := range []string{"id", "username", "created_at"} {
		assert.Contains(t, first, field)
	}

	rec, body = doJSON(t, r, "POST", "/api/user/create", `{"username":"TestPlayer1"}`)
	require.Equal(t, 200, rec.Code)
	second := body["user"].(map[string]interface{})
	assert.Equal(t, first["id"], second["id"])
}

func TestJoinGroupInvalidCode(t *testing.T) {
	r := setupRouter(t)

	rec, body := doJSON(t, r, "POST", "/api/group/join", `{"invite_code":"INVALID","username":"TestUser"}`)
	assert.Equal(t, 404, rec.Code)
	assert.Contains(t, strings.ToLower(body["detail"].(string)), "invalid")
}

func TestRenameGroupPermission(t *testing.T) {
	r := setupRouter(t)

	_, created := doJSON(t, r, "POST", "/api/group/create", `{"name":"Test Squad","creator_username":"TestPlayer1"}`)
	group := created["group"].(map[string]interface{})
	groupID := group["id"].(string)

	_, outsiderBody := doJSON(t, r, "POST", "/api/user/create", `{"username":"Outsider"}`)
	outsiderID := outsiderBody["user"].(map[string]interface{})["id"].(string)

	rec, _ := doJSON(t, r, "PUT", "/api/group/"+groupID+"/name?user_id="+outsiderID, `{"name":"Hijacked"}`)
	assert.Equal(t, 403, rec.Code)

	creatorID := group["creator_id"].(string)
	rec, body := doJSON(t, r, "PUT", "/api/group/"+groupID+"/name?user_id="+creatorID, `{"name":"Updated Test Squad"}`)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "Updated Test Squad", body["group"].(map[string]interface{})["name"])
}

func TestMultiplayerWorkflow(t *testing.T) {
	r := setupRouter(t)

	_, u1Body := doJSON(t, r, "POST", "/api/user/create", `{"username":"BurpMaster"}`)
	user1 := u1Body["user"].(map[string]interface{})

	_, u2Body := doJSON(t, r, "POST", "/api/user/create", `{"username":"BurpChamp"}`)
	user2 := u2Body["user"].(map[string]interface{})

	rec, gBody := doJSON(t, r, "POST", "/api/group/create", `{"name":"Elite Burpers","creator_username":"BurpMaster"}`)
	require.Equal(t, 200, rec.Code)
	group := gBody["group"].(map[string]interface{})
	inviteCode := group["invite_code"].(string)
	assert.Len(t, inviteCode, 6)
	groupID := group["id"].(string)

	rec, jBody := doJSON(t, r, "POST", "/api/group/join", `{"invite_code":"`+inviteCode+`","username":"BurpChamp"}`)
	require.Equal(t, 200, rec.Code)
	joinedGroup := jBody["group"].(map[string]interface{})
	assert.Len(t, joinedGroup["members"].([]interface{}), 2)

	for _, payload := range []string{
		`{"user_id":"` + user1["id"].(string) + `","duration":3500,"detection_method":"manual"}`,
		`{"user_id":"` + user2["id"].(string) + `","duration":2800,"detection_method":"manual"}`,
		`{"user_id":"` + user1["id"].(string) + `","duration":4200,"detection_method":"manual"}`,
	} {
		rec, sBody := doJSON(t, r, "POST", "/api/group/"+groupID+"/session", payload)
		require.Equal(t, 200, rec.Code)
		assert.Contains(t, sBody, "session")
		assert.Contains(t, sBody, "group_stats")
	}

	rec, stBody := doJSON(t, r, "GET", "/api/group/"+groupID+"/stats", "")
	require.Equal(t, 200, rec.Code)
	stats := stBody["data"].(map[string]interface{})
	leaderboard := stats["daily_leaderboard"].([]interface{})
	require.Len(t, leaderboard, 2)

	top := leaderboard[0].(map[string]interface{})
	assert.Equal(t, "BurpMaster", top["username"])
	assert.EqualValues(t, 4200, top["longest_burp"])

	second := leaderboard[1].(map[string]interface{})
	assert.Equal(t, "BurpChamp", second["username"])
	assert.EqualValues(t, 2800, second["longest_burp"])

	membersStats := stats["members_stats"].([]interface{})
	assert.Len(t, membersStats, 2)
}
