package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vacation-rental/internal/config"
	"github.com/iliyamo/vacation-rental/internal/utils"
)

const secret = "test-secret"

func newRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func do(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRole(t *testing.T) {
	e := echo.New()
	g := e.Group("", JWTAuth(secret), RequireRole("ADMIN"))
	g.GET("/who", func(c echo.Context) error {
		return c.String(http.StatusOK, currentUserID(c, ""))
	})

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/who", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/who", "garbage").Code)

	other, err := utils.NewAccessToken("other-secret", 7, "ADMIN", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/who", other.Token).Code)

	user, err := utils.NewAccessToken(secret, 7, "USER", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/who", user.Token).Code)

	admin, err := utils.NewAccessToken(secret, 7, "ADMIN", 5)
	require.NoError(t, err)
	rec := do(e, http.MethodGet, "/who", admin.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Body.String())
}

func TestRequestLoggerSetsIDAndLogs(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/boom", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("inside")
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	rec := do(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	rid := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, rid)
	assert.Contains(t, buf.String(), `"message":"inside"`)
	assert.Contains(t, buf.String(), `"request_id":"`+rid+`"`)
	assert.Contains(t, buf.String(), `"status":418`)
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1,
		RefillInterval: time.Hour, TTL: 2 * time.Hour, KeyStrategy: "ip", Prefix: "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, secret))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/", "").Code)
	rec := do(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retry)
}

func TestTokenBucketWithoutRedisPassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, secret))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/", "").Code)
	}
}

func TestRedisCacheHitAndWriteInvalidation(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute,
		KeyStrategy: "route_query", Prefix: "cache", MaxBodyBytes: 1 << 20,
	}
	calls := 0
	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb))
	e.GET("/items/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "n": calls})
	})
	e.POST("/items", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })

	first := do(e, http.MethodGet, "/items/1", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := do(e, http.MethodGet, "/items/1", "")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	other := do(e, http.MethodGet, "/items/2", "")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"), "path params are part of the key")

	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/items", "").Code)
	third := do(e, http.MethodGet, "/items/1", "")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 3, calls)
}

func TestPayloadRoundTrip(t *testing.T) {
	h := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, h, []byte(`{"a":1}`))
	require.NoError(t, err)
	status, hdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{1, 2})
	assert.False(t, ok)
}

func TestTokenBucketKeysByTokenSubject(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 1, RefillTokens: 1,
		RefillInterval: time.Hour, TTL: 2 * time.Hour, KeyStrategy: "user", Prefix: "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, secret))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	alice, err := utils.NewAccessToken(secret, 1, "USER", 5)
	require.NoError(t, err)
	bob, err := utils.NewAccessToken(secret, 2, "USER", 5)
	require.NoError(t, err)
	forged, err := utils.NewAccessToken("wrong-secret", 3, "USER", 5)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/", alice.Token).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(e, http.MethodGet, "/", alice.Token).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/", bob.Token).Code, "each subject has its own bucket")

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/", forged.Token).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(e, http.MethodGet, "/", "").Code, "invalid tokens share the anon bucket")

	keys, err := rdb.Keys(context.Background(), "rl:user:*").Result()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rl:user:1", "rl:user:2", "rl:user:anon"}, keys)
}
