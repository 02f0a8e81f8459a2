package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyonms2/avatar-arena/internal/abilities"
	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/engine"
	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/service"
	"github.com/lyonms2/avatar-arena/internal/settlement"
	"github.com/lyonms2/avatar-arena/internal/storage"
	"github.com/lyonms2/avatar-arena/internal/training"
)

const (
	testJWTSecret  = "jwt-secret"
	testCronSecret = "cron-secret"
)

type fixture struct {
	router *gin.Engine
	repo   storage.Repository
}

func newFixture(t *testing.T, cfg RouterConfig) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.OpenAndMigrate("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := storage.NewSQLiteRepository(db, time.Now)
	reg := abilities.Default()
	rng := game.NewLockedRand(7)
	eng := engine.New(reg, rng, engine.DefaultRules(), time.Now)

	battles := service.NewBattles(repo, eng, settlement.DefaultRules())
	rewards := service.NewRewards(repo, reg, settlement.DefaultRanks, rng, time.Now)
	sweeper := service.NewSweeper(repo, constants.RoomRetention, time.Now)
	trainer := service.NewTraining(battles, training.NewStore(time.Minute), eng, reg, rng)

	h := NewGameHandler(battles, rewards, sweeper, trainer, reg)
	f := &fixture{router: NewRouter(h, cfg), repo: repo}

	ctx := context.Background()
	for _, p := range []*game.Player{
		{UserID: "h", Name: "Host", Level: 5, Coins: 500},
		{UserID: "g", Name: "Guest", Level: 5, Coins: 500},
	} {
		require.NoError(t, repo.SavePlayer(ctx, p))
	}
	f.avatar(t, "ah", "h", game.ElementFire, 20)
	f.avatar(t, "ag", "g", game.ElementWater, 10)
	return f
}

func (f *fixture) avatar(t *testing.T, id, owner string, el game.Element, agility int) {
	t.Helper()
	a := &game.Avatar{
		ID: id, OwnerID: owner, Name: id, Element: el, Rarity: game.RarityCommon,
		HP: 100, MaxHP: 100, Alive: true, Bond: 50,
		Stats:     game.Stats{Strength: 15, Agility: agility, Resistance: 10, Focus: 10},
		Abilities: abilities.Default().StarterSet(el),
	}
	require.NoError(t, f.repo.SaveAvatar(context.Background(), a))
}

func (f *fixture) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeRoom(t *testing.T, w *httptest.ResponseRecorder) game.Room {
	t.Helper()
	var r game.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var m map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

// startBattle creates a room, seats the guest and readies both sides.
func (f *fixture) startBattle(t *testing.T) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/rooms", gin.H{"userId": "h", "avatarId": "ah"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	roomID := decodeRoom(t, w).ID

	w = f.do(t, http.MethodPost, "/api/rooms/"+roomID+"/join", gin.H{"userId": "g", "avatarId": "ag"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, u := range []string{"h", "g"} {
		w = f.do(t, http.MethodPost, "/api/battle/action", gin.H{"roomId": roomID, "userId": u, "action": "ready"}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	room := decodeRoom(t, w)
	require.Equal(t, game.StatusActive, room.Status)
	require.Equal(t, game.RoleHost, room.Turn)
	return roomID
}

func TestHealthAndVersion(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", nil, nil).Code)

	w := f.do(t, http.MethodGet, "/version", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), constants.ServiceName)
}

func TestBattleFlow_StatusCodes(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	roomID := f.startBattle(t)

	w := f.do(t, http.MethodGet, "/api/rooms/"+roomID+"?userId=h", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/rooms/"+roomID+"?userId=stranger", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, constants.ErrKindForbidden, errorBody(t, w)[constants.JSONKeyError])

	w = f.do(t, http.MethodGet, "/api/rooms/nope?userId=h", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/battle/action", gin.H{"roomId": roomID, "userId": "g", "action": "attack"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, constants.MsgNotYourTurn, errorBody(t, w)[constants.JSONKeyMessage])

	w = f.do(t, http.MethodPost, "/api/battle/action", gin.H{"roomId": roomID, "userId": "h", "action": "dance"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/battle/action", gin.H{"roomId": roomID, "userId": "h", "action": "ability", "abilityId": "no-such"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/battle/action", gin.H{"roomId": roomID, "userId": "h", "action": "attack"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	room := decodeRoom(t, w)
	if room.Status == game.StatusActive {
		assert.Equal(t, game.RoleGuest, room.Turn)
	}
	assert.NotEmpty(t, room.BattleLog)

	w = f.do(t, http.MethodPost, "/api/battle/action", gin.H{"userId": "h"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetBet_Bounds(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	w := f.do(t, http.MethodPost, "/api/rooms", gin.H{"userId": "h", "avatarId": "ah"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	roomID := decodeRoom(t, w).ID

	w = f.do(t, http.MethodGet, "/api/players/h/bet-limits", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lim map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lim))
	assert.EqualValues(t, 10, lim["minimum"])
	assert.EqualValues(t, 250, lim["maximum"])

	w = f.do(t, http.MethodPost, "/api/battle/set-bet", gin.H{"roomId": roomID, "userId": "h", "betAmount": 300}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Aposta máxima é 250 moedas", errorBody(t, w)[constants.JSONKeyMessage])

	w = f.do(t, http.MethodPost, "/api/battle/set-bet", gin.H{"roomId": roomID, "userId": "h"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/battle/set-bet", gin.H{"roomId": roomID, "userId": "h", "betAmount": 100}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 100, decodeRoom(t, w).HostBet)
}

func TestSurrenderThenAbandon(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	roomID := f.startBattle(t)

	w := f.do(t, http.MethodPost, "/api/battle/surrender", gin.H{"roomId": roomID, "userId": "g"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	room := decodeRoom(t, w)
	assert.Equal(t, game.StatusFinished, room.Status)
	assert.Equal(t, game.RoleHost, room.Winner)

	// the finished room stays readable but takes no more commands
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/rooms/"+roomID+"?userId=g", nil, nil).Code)
	w = f.do(t, http.MethodPost, "/api/battle/abandon", gin.H{"roomId": roomID, "userId": "g"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAbandon_DeletesRoom(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	roomID := f.startBattle(t)

	w := f.do(t, http.MethodPost, "/api/battle/abandon", gin.H{"roomId": roomID, "userId": "g"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, roomID, body["roomId"])
	assert.Equal(t, true, body["deleted"])
	assert.Equal(t, "h", body["winner"])

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/rooms/"+roomID+"?userId=h", nil, nil).Code)

	p, err := f.repo.GetPlayer(context.Background(), "g")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Fame)
}

func TestIdentity_Bearer(t *testing.T) {
	f := newFixture(t, RouterConfig{JWTSecret: testJWTSecret})

	w := f.do(t, http.MethodPost, "/api/rooms", gin.H{"avatarId": "ah"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	bad := http.Header{constants.HeaderAuthorization: {constants.BearerPrefix + "garbage"}}
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/api/rooms", gin.H{"avatarId": "ah"}, bad).Code)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "h"}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	auth := http.Header{constants.HeaderAuthorization: {constants.BearerPrefix + tok}}

	w = f.do(t, http.MethodPost, "/api/rooms", gin.H{"userId": "g", "avatarId": "ah"}, auth)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, constants.MsgIdentityMismatch, errorBody(t, w)[constants.JSONKeyMessage])

	w = f.do(t, http.MethodPost, "/api/rooms", gin.H{"avatarId": "ah"}, auth)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "h", decodeRoom(t, w).HostUserID)

	// tokens signed with another algorithm are refused
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "h"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	noneAuth := http.Header{constants.HeaderAuthorization: {constants.BearerPrefix + none}}
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/api/rooms", gin.H{"avatarId": "ah"}, noneAuth).Code)
}

func TestCleanup_RequiresCronSecret(t *testing.T) {
	f := newFixture(t, RouterConfig{CronSecret: testCronSecret})

	w := f.do(t, http.MethodPost, "/api/maintenance/cleanup-rooms", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/api/maintenance/cleanup-rooms", nil, http.Header{constants.HeaderCronSecret: {testCronSecret}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res service.SweepResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, service.SweepResult{}, res)
}

func TestCollectReward_Once(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	require.NoError(t, f.repo.SavePendingReward(context.Background(), &game.PendingReward{
		ID: "r1", UserID: "h", Season: "s1", Coins: 100, Fragments: 5,
	}))

	w := f.do(t, http.MethodPost, "/api/rewards/collect", gin.H{"userId": "g", "rewardId": "r1"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/rewards/collect", gin.H{"userId": "h", "rewardId": "r1"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out service.Collection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 600, out.Coins)

	w = f.do(t, http.MethodPost, "/api/rewards/collect", gin.H{"userId": "h", "rewardId": "r1"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrainingEndpoints(t *testing.T) {
	f := newFixture(t, RouterConfig{})

	w := f.do(t, http.MethodPost, "/api/training", gin.H{"userId": "h", "avatarId": "ah"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sess training.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.ID)

	w = f.do(t, http.MethodGet, "/api/training/"+sess.ID+"?userId=g", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, "/api/training/"+sess.ID+"/action", gin.H{"userId": "h", "action": "surrender"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, game.StatusFinished, sess.Room.Status)

	w = f.do(t, http.MethodGet, "/api/training/missing?userId=h", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAbilities(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	w := f.do(t, http.MethodGet, "/api/abilities", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Version   string              `json:"version"`
		Abilities []abilities.Ability `json:"abilities"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, abilities.DefaultVersion, body.Version)
	assert.NotEmpty(t, body.Abilities)
}
