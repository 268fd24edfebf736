package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mkdirlove/song-server/internal/domain"
	"github.com/mkdirlove/song-server/internal/middleware"
	"github.com/mkdirlove/song-server/pkg/crypto"
	"github.com/mkdirlove/song-server/pkg/errors"
	"github.com/mkdirlove/song-server/pkg/httputil"
	"github.com/mkdirlove/song-server/pkg/jwt"
	"github.com/mkdirlove/song-server/pkg/logger"
)

const testPageSize = 25

func init() {
	gin.SetMode(gin.TestMode)
}

func testHasher() *crypto.PasswordHasher {
	return crypto.NewPasswordHasherWithParams(&crypto.Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}

func testLogger() logger.Logger {
	return logger.New(&logger.Config{Level: logger.FatalLevel})
}

// fakeUserRepo is an in-memory UserRepository keyed by username.
type fakeUserRepo struct {
	users   map[string]*domain.User
	findErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Insert(_ context.Context, user *domain.User) error {
	if user == nil {
		return errors.ErrRequestParseError
	}
	if _, exists := r.users[user.Username]; exists {
		return errors.ErrUsernameExists
	}
	copied := *user
	r.users[user.Username] = &copied
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	user, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) List(_ context.Context, adminsOnly bool, page, pageSize int) ([]*domain.User, error) {
	if page < 1 {
		return nil, errors.ErrInvalidPageNumber
	}
	all := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		if adminsOnly && user.Role != domain.RoleAdmin {
			continue
		}
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })

	start := (page - 1) * pageSize
	if start >= len(all) {
		return []*domain.User{}, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (r *fakeUserRepo) Remove(_ context.Context, username string) error {
	if _, ok := r.users[username]; !ok {
		return errors.ErrInvalidUserDetails
	}
	delete(r.users, username)
	return nil
}

func (r *fakeUserRepo) HasAdmin(_ context.Context) (bool, error) {
	for _, user := range r.users {
		if user.Role == domain.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

// fakeSongRepo is an in-memory SongRepository keyed by song id. It records
// the arguments of the last List and IncrementCounter calls.
type fakeSongRepo struct {
	songs map[string]*domain.Song

	lastFilterExplicit bool
	lastPage           int
	lastCounterID      string
	lastCounterField   string
}

func newFakeSongRepo() *fakeSongRepo {
	return &fakeSongRepo{songs: make(map[string]*domain.Song)}
}

func (r *fakeSongRepo) Insert(_ context.Context, song *domain.Song) error {
	if song == nil {
		return errors.ErrRequestParseError
	}
	for _, existing := range r.songs {
		if existing.Name == song.Name && existing.SourceURL == song.SourceURL {
			return errors.ErrSongExists
		}
	}
	copied := *song
	copied.ID = primitiveHex(len(r.songs) + 1)
	r.songs[copied.ID] = &copied
	return nil
}

func (r *fakeSongRepo) List(_ context.Context, filterExplicit bool, page, pageSize int) ([]*domain.Song, error) {
	if page < 1 {
		return nil, errors.ErrInvalidPageNumber
	}
	r.lastFilterExplicit = filterExplicit
	r.lastPage = page

	all := make([]*domain.Song, 0, len(r.songs))
	for _, song := range r.songs {
		if filterExplicit && song.IsExplicit {
			continue
		}
		all = append(all, song)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	start := (page - 1) * pageSize
	if start >= len(all) {
		return []*domain.Song{}, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (r *fakeSongRepo) IncrementCounter(_ context.Context, songID, counterField string) error {
	r.lastCounterID = songID
	r.lastCounterField = counterField

	song, ok := r.songs[songID]
	if !ok {
		return errors.ErrSongNotFound
	}
	switch counterField {
	case domain.FieldNumLikes:
		song.NumLikes++
	case domain.FieldTimesPlayed:
		song.TimesPlayed++
	}
	return nil
}

func (r *fakeSongRepo) Remove(_ context.Context, name, sourceURL string) error {
	for id, song := range r.songs {
		if song.Name == name && song.SourceURL == sourceURL {
			delete(r.songs, id)
			return nil
		}
	}
	return errors.ErrSongNotFound
}

// primitiveHex fabricates a 24-char hex id from a counter.
func primitiveHex(n int) string {
	const hexDigits = "0123456789abcdef"
	id := make([]byte, 24)
	for i := range id {
		id[i] = hexDigits[n%16]
	}
	return string(id)
}

// testEnv wires a router the same way the server binary does: public login,
// everything else behind RequireUser.
type testEnv struct {
	router *gin.Engine
	tokens *jwt.Manager
	users  *fakeUserRepo
	songs  *fakeSongRepo
	hasher *crypto.PasswordHasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tokens: jwt.NewManager(&jwt.Config{Secret: "handler-test-secret-0123456789abcdef", Issuer: "test"}),
		users:  newFakeUserRepo(),
		songs:  newFakeSongRepo(),
		hasher: testHasher(),
	}

	log := testLogger()
	userHandler := NewUserHandler(env.users, env.tokens, env.hasher, testPageSize, log)
	songHandler := NewSongHandler(env.songs, testPageSize, log)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.POST("/login", userHandler.Login)
	router.GET("/get_songs", songHandler.GetSongs)

	authed := router.Group("/", middleware.RequireUser(env.tokens, log))
	authed.POST("/add_song", songHandler.AddSong)
	authed.POST("/like_song", songHandler.LikeSong)
	authed.POST("/play_song", songHandler.PlaySong)
	authed.POST("/remove_song", songHandler.RemoveSong)
	authed.POST("/add_user", userHandler.AddUser)
	authed.POST("/remove_user", userHandler.RemoveUser)
	authed.GET("/get_users", userHandler.GetUsers)

	env.router = router
	return env
}

// seedUser stores a user with a real hash and returns the plaintext password.
func (e *testEnv) seedUser(t *testing.T, username string, role domain.Role) string {
	t.Helper()

	password := "password-for-" + username
	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)

	err = e.users.Insert(context.Background(), domain.NewUser(username, password, hash, role))
	require.NoError(t, err)
	return password
}

// tokenFor issues a token for an already-seeded user.
func (e *testEnv) tokenFor(t *testing.T, username string) string {
	t.Helper()

	user, err := e.users.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	require.NotNil(t, user)

	token, err := e.tokens.Generate("65f1a2b3c4d5e6f7a8b9c0d1", user.Username, int(user.Role))
	require.NoError(t, err)
	return token
}

func (e *testEnv) seedSong(t *testing.T, name string, explicit bool) string {
	t.Helper()

	song := domain.NewSong(name, "https://img/"+name, "https://src/"+name, explicit)
	require.NoError(t, e.songs.Insert(context.Background(), song))
	for id, stored := range e.songs.songs {
		if stored.Name == name {
			return id
		}
	}
	t.Fatalf("seeded song %q not found", name)
	return ""
}

type request struct {
	method  string
	path    string
	token   string
	body    interface{}
	raw     string
	headers map[string]string
}

func (e *testEnv) do(t *testing.T, r request) (*httptest.ResponseRecorder, *httputil.Response) {
	t.Helper()

	var reader *bytes.Reader
	switch {
	case r.raw != "":
		reader = bytes.NewReader([]byte(r.raw))
	case r.body != nil:
		raw, err := json.Marshal(r.body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	default:
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(r.method, r.path, reader)
	if r.body != nil || r.raw != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return w, &resp
}
