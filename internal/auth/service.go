package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

const (
	DefaultTTL       = 30 * 24 * time.Hour
	sessionKeyPrefix = "fittrack-session||"
	tokensSetKey     = "fittrack-sessions"
	tokenRandomBytes = 35
)

var (
	ErrWrongPassword = errors.New("wrong username or password")
	ErrInvalidToken  = errors.New("invalid session token")
)

type Admin struct {
	Username     string
	PasswordHash string
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service issues and revokes session tokens, kept in redis as token -> created at (unix).
type Service struct {
	admin       *Admin
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	admin *Admin,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		admin:          admin,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (as *Service) TTL() time.Duration {
	return as.ttl
}

func (as *Service) Login(ctx context.Context, credentials Credentials, createdAt time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if credentials.Username != as.admin.Username {
		log.Tracef("[username] failed login attempt for user: %s", credentials.Username)
		return "", ErrWrongPassword
	}
	if !pkg.CheckPasswordHash(credentials.Password, as.admin.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", credentials.Username)
		return "", ErrWrongPassword
	}

	token, err := as.RandStringFunc(tokenRandomBytes)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	sessionKey := sessionKeyPrefix + token
	if err := as.redisClient.Set(ctx, sessionKey, createdAt.Unix(), as.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	// add token to the set of sessions
	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", fmt.Errorf("add session to set: %w", err)
	}

	return token, nil
}

func (as *Service) Logout(ctx context.Context, token string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.logout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if token == "" {
		return ErrInvalidToken
	}

	sessionKey := sessionKeyPrefix + token
	deleted, err := as.redisClient.Del(ctx, sessionKey).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	// remove token from the set of sessions
	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return fmt.Errorf("remove session from set: %w", err)
	}

	if deleted == 0 {
		return ErrInvalidToken
	}

	return nil
}

// ScanAndClean runs through all sessions and removes the expired ones.
// Returns the number of removed sessions.
func (as *Service) ScanAndClean(ctx context.Context) int {
	sessionTokens, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return 0
	}

	if len(sessionTokens) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return 0
	}

	log.Debugf("auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		createdAtUnixStr, err := as.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// session key already expired in redis
				toRemove = append(toRemove, token)
				continue
			}
			log.Errorf("auth service, scan and clean token %s: %s", token, err)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
		if err != nil {
			log.Errorf("auth service, scan and clean token %s: %s", token, err)
			toRemove = append(toRemove, token)
			continue
		}

		if time.Since(time.Unix(createdAtUnix, 0)) > as.ttl {
			toRemove = append(toRemove, token)
		}
	}

	removed := 0
	for _, token := range toRemove {
		if err := as.redisClient.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
			log.Errorf("auth service, clean token %s: %s", token, err)
			continue
		}

		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("auth service, clean token %s: %s", token, err)
			continue
		}
		removed++
	}

	log.Debugf("auth service, scan and clean done, removed %d sessions", removed)
	return removed
}
