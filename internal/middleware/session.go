package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

// SessionHeader carries the session token for clients that do not keep cookies.
const SessionHeader = "X-Session-Token"

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionCookie binds every request to a UI session through a signed token.
// A request without a valid token starts a new session.
type SessionCookie struct {
	secret []byte
	name   string
	ttl    time.Duration
	secure bool
	logger *zap.Logger
	now    func() time.Time
}

func NewSessionCookie(cfg config.SessionConfig, secure bool, logger *zap.Logger) *SessionCookie {
	if logger == nil {
		logger = zap.NewNop()
	}
	secret := cfg.Secret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}
	name := cfg.CookieName
	if name == "" {
		name = "taskboard_session"
	}
	return &SessionCookie{
		secret: []byte(secret),
		name:   name,
		ttl:    cfg.TTL,
		secure: secure,
		logger: logger,
		now:    time.Now,
	}
}

// Issue signs a token for sid.
func (s *SessionCookie) Issue(sid string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies a token and returns the session ID it carries.
func (s *SessionCookie) Parse(tokenString string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.SessionID == "" {
		return "", errors.New("session token carries no session id")
	}
	return claims.SessionID, nil
}

// Handle resolves the session ID, refreshes the token and stores the ID as a user value.
func (s *SessionCookie) Handle(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		sid := ""
		if tokenString := s.extractToken(ctx); tokenString != "" {
			parsed, err := s.Parse(tokenString)
			if err != nil {
				s.logger.Debug("discarding session token", zap.Error(err))
			}
			sid = parsed
		}
		if sid == "" {
			sid = uuid.NewString()
		}

		token, err := s.Issue(sid)
		if err != nil {
			s.logger.Error("failed to sign session token", zap.Error(err))
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			return
		}
		s.setCookie(ctx, token)
		ctx.Response.Header.Set(SessionHeader, token)
		ctx.SetUserValue(httpcontext.UserValueSessionID, sid)

		next(ctx)
	}
}

func (s *SessionCookie) setCookie(ctx *fasthttp.RequestCtx, token string) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(s.name)
	cookie.SetValue(token)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(s.secure)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetExpire(s.now().Add(s.ttl))
	ctx.Response.Header.SetCookie(cookie)
}

func (s *SessionCookie) extractToken(ctx *fasthttp.RequestCtx) string {
	if cookie := ctx.Request.Header.Cookie(s.name); len(cookie) > 0 {
		return string(cookie)
	}
	if header := strings.TrimSpace(string(ctx.Request.Header.Peek(SessionHeader))); header != "" {
		return header
	}
	header := string(ctx.Request.Header.Peek("Authorization"))
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
