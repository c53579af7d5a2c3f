package auth

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/pkg/apperror"
	"github.com/minhvu/portfolio-hub/pkg/auth"
	"github.com/minhvu/portfolio-hub/pkg/logger"
)

const (
	// SessionDuration applies when the admin asks to stay signed in; the
	// record goes to the durable tier and survives restarts.
	SessionDuration = 24 * time.Hour
	// ShortSessionDuration applies otherwise; the record lives in the
	// ephemeral tier and dies with the process.
	ShortSessionDuration = time.Hour
)

// Session is the record stored under the adminSession key.
type Session struct {
	Username   string    `json:"username"`
	LoginTime  time.Time `json:"loginTime"`
	Expires    time.Time `json:"expires"`
	RememberMe bool      `json:"rememberMe"`
}

type Credentials struct {
	Username     string
	PasswordHash string
}

type SessionUseCase struct {
	durable   portfolio.LocalStore
	ephemeral portfolio.LocalStore
	creds     Credentials
	jwtSvc    *auth.JWTService
	logger    logger.Logger
}

func NewSessionUseCase(durable, ephemeral portfolio.LocalStore, creds Credentials, jwtSvc *auth.JWTService, log logger.Logger) *SessionUseCase {
	return &SessionUseCase{
		durable:   durable,
		ephemeral: ephemeral,
		creds:     creds,
		jwtSvc:    jwtSvc,
		logger:    log,
	}
}

// tier picks where a session record lives for the given remember-me choice.
func (uc *SessionUseCase) tier(rememberMe bool) portfolio.LocalStore {
	if rememberMe {
		return uc.durable
	}
	return uc.ephemeral
}

type LoginInput struct {
	Username   string
	Password   string
	RememberMe bool
}

type LoginOutput struct {
	AccessToken string
	Session     Session
}

var tracer = otel.Tracer("auth_usecase")

func (uc *SessionUseCase) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if input.Username != uc.creds.Username || !auth.CheckPasswordHash(input.Password, uc.creds.PasswordHash) {
		err := apperror.NewUnauthorized("incorrect username or password", nil)
		span.RecordError(err)
		return nil, err
	}

	lifespan := ShortSessionDuration
	if input.RememberMe {
		lifespan = SessionDuration
	}

	token, err := uc.jwtSvc.GenerateToken(input.Username, input.RememberMe, lifespan)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("username", input.Username))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}

	now := time.Now().UTC()
	session := Session{
		Username:   input.Username,
		LoginTime:  now,
		Expires:    now.Add(lifespan),
		RememberMe: input.RememberMe,
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, apperror.NewInternal("failed to encode session", err)
	}
	if err := uc.tier(input.RememberMe).Set(ctx, portfolio.SessionKey, string(raw)); err != nil {
		uc.logger.Error("Failed to store session", err, zap.Bool("remember_me", input.RememberMe))
		err = apperror.NewStorageUnavailable(tierName(input.RememberMe), err)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("username", input.Username),
		attribute.Bool("remember_me", input.RememberMe),
	)
	uc.logger.Info("Admin logged in",
		zap.String("username", input.Username),
		zap.Bool("remember_me", input.RememberMe),
	)
	return &LoginOutput{AccessToken: token, Session: session}, nil
}

// CurrentSession returns the live session record, if any. An expired
// record is removed on sight.
func (uc *SessionUseCase) CurrentSession(ctx context.Context) (*Session, bool, error) {
	for _, store := range []portfolio.LocalStore{uc.durable, uc.ephemeral} {
		value, found, err := store.Get(ctx, portfolio.SessionKey)
		if err != nil {
			return nil, false, apperror.NewStorageUnavailable("session", err)
		}
		if !found {
			continue
		}

		var session Session
		if err := json.Unmarshal([]byte(value), &session); err != nil {
			uc.logger.Warn("Discarding undecodable session record", zap.Error(err))
			_ = store.Remove(ctx, portfolio.SessionKey)
			continue
		}
		if time.Now().After(session.Expires) {
			uc.logger.Info("Session expired", zap.String("username", session.Username))
			_ = store.Remove(ctx, portfolio.SessionKey)
			continue
		}
		return &session, true, nil
	}
	return nil, false, nil
}

// Logout removes the session record from both tiers.
func (uc *SessionUseCase) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Logout")
	defer span.End()

	var firstErr error
	for _, store := range []portfolio.LocalStore{uc.durable, uc.ephemeral} {
		if err := store.Remove(ctx, portfolio.SessionKey); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		span.RecordError(firstErr)
		return apperror.NewStorageUnavailable("session", firstErr)
	}
	uc.logger.Info("Admin logged out")
	return nil
}

// ValidateToken checks the bearer token and confirms a live session record
// still backs it. A valid signature alone is not enough: logout and expiry
// both kill the record, and a token without a record is rejected.
func (uc *SessionUseCase) ValidateToken(ctx context.Context, tokenString string) (*auth.SessionClaims, error) {
	claims, err := uc.jwtSvc.ValidateToken(tokenString)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid token", err)
	}

	session, found, err := uc.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if !found || session.Username != claims.Username {
		return nil, apperror.NewUnauthorized("no active session", nil)
	}
	return claims, nil
}

func tierName(rememberMe bool) string {
	if rememberMe {
		return "durable local"
	}
	return "ephemeral local"
}
