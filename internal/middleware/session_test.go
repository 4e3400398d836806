package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

func newCookie() *SessionCookie {
	return NewSessionCookie(config.SessionConfig{Secret: "test-secret", CookieName: "sess", TTL: time.Hour}, false, nil)
}

func serve(t *testing.T, s *SessionCookie, prepare func(*fasthttp.RequestCtx)) (*fasthttp.RequestCtx, string) {
	t.Helper()
	var seen string
	handler := s.Handle(func(ctx *fasthttp.RequestCtx) {
		seen = httpcontext.SessionID(ctx)
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/api/v1/workflow")
	if prepare != nil {
		prepare(ctx)
	}
	handler(ctx)
	return ctx, seen
}

func TestIssueAndParse(t *testing.T) {
	s := newCookie()
	token, err := s.Issue("abc")
	require.NoError(t, err)

	sid, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", sid)

	other := NewSessionCookie(config.SessionConfig{Secret: "other", TTL: time.Hour}, false, nil)
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredAndForeignAlgorithms(t *testing.T) {
	s := newCookie()
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := s.Issue("abc")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Parse(expired)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, sessionClaims{SessionID: "abc"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Parse(unsigned)
	assert.Error(t, err)
}

func TestHandleStartsNewSession(t *testing.T) {
	s := newCookie()
	ctx, sid := serve(t, s, nil)

	assert.NotEmpty(t, sid)
	token := string(ctx.Response.Header.Peek(SessionHeader))
	parsed, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, sid, parsed)

	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey("sess")
	require.True(t, ctx.Response.Header.Cookie(cookie))
	assert.True(t, cookie.HTTPOnly())
}

func TestHandleKeepsExistingSession(t *testing.T) {
	s := newCookie()
	token, err := s.Issue("existing")
	require.NoError(t, err)

	_, sid := serve(t, s, func(ctx *fasthttp.RequestCtx) { ctx.Request.Header.SetCookie("sess", token) })
	assert.Equal(t, "existing", sid)

	_, sid = serve(t, s, func(ctx *fasthttp.RequestCtx) { ctx.Request.Header.Set("Authorization", "Bearer "+token) })
	assert.Equal(t, "existing", sid)

	_, sid = serve(t, s, func(ctx *fasthttp.RequestCtx) { ctx.Request.Header.SetCookie("sess", "garbage") })
	assert.NotEqual(t, "existing", sid)
	assert.NotEmpty(t, sid)
}
