package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/atriumhq/atrium/internal/auth/password"
	"github.com/atriumhq/atrium/internal/config"
	"github.com/atriumhq/atrium/internal/providers/email"
	"github.com/atriumhq/atrium/internal/token"
	"github.com/atriumhq/atrium/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

// Tokens groups the codecs the identity service signs and verifies with.
type Tokens struct {
	Access  *token.JWT
	Refresh *token.JWT
	Timed   *token.TimedSigner
}

// NewTokens builds the per-purpose codecs from the auth configuration.
func NewTokens(cfg config.Config) Tokens {
	return Tokens{
		Access:  token.NewJWT(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL),
		Refresh: token.NewJWT(cfg.Auth.RefreshSecret, cfg.Auth.RefreshTTL),
		Timed:   token.NewTimedSigner(cfg.Auth.TimedSecret()),
	}
}

type Service struct {
	log      *zap.Logger
	users    domain.Repository
	tokens   domain.TokenRepository
	codecs   Tokens
	mailer   email.Mailer
	genID    *snowflake.Node
	frontend string
}

func New(log *zap.Logger, users domain.Repository, tokens domain.TokenRepository, codecs Tokens, mailer email.Mailer, genID *snowflake.Node, cfg config.Config) domain.Service {
	return &Service{
		log:      log.Named("auth.service"),
		users:    users,
		tokens:   tokens,
		codecs:   codecs,
		mailer:   mailer,
		genID:    genID,
		frontend: cfg.FrontendURL,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResult, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           s.genID.Generate(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hashed,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Concurrent registration can slip past the lookup and land on
		// the unique index instead.
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	sent := s.sendVerification(ctx, user, "Verify your Account")
	return &domain.RegisterResult{User: user, MailSent: sent}, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !password.Verify(user.PasswordHash, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, domain.ErrNotVerified
	}

	accessToken, err := s.codecs.Access.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codecs.Refresh.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	// One refresh row per user: replace the token in place when a row exists.
	row, err := s.tokens.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = &domain.RefreshToken{
			ID:        s.genID.Generate(),
			UserID:    user.ID,
			CreatedAt: time.Now().UTC(),
		}
	}
	row.Token = refreshToken
	row.UpdatedAt = time.Now().UTC()
	if err := s.tokens.Save(ctx, row); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codecs.Refresh.Decode(refreshToken)
	if err != nil {
		return "", domain.ErrInvalidRefresh
	}
	if claims.Email == "" {
		return "", domain.ErrInvalidRefresh
	}

	row, err := s.tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if row == nil || row.User == nil {
		return "", domain.ErrInvalidRefresh
	}
	// A rotated or stale token decodes fine but no longer matches the
	// persisted row's owner.
	if row.User.Email != claims.Email {
		return "", domain.ErrInvalidRefresh
	}

	return s.codecs.Access.Issue(claims.UserID, claims.Email)
}

func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.codecs.Access.Decode(accessToken)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if claims.Email == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, user *domain.User, req domain.UpdateProfileRequest) (*domain.User, error) {
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) DeleteAccount(ctx context.Context, user *domain.User) error {
	return s.users.Delete(ctx, user)
}

func (s *Service) ChangePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) error {
	if !password.Verify(user.PasswordHash, oldPassword) {
		return domain.ErrPasswordMismatch
	}
	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) (bool, error) {
	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return false, err
	}
	return s.sendVerification(ctx, user, "Reset your Password"), nil
}

func (s *Service) CompletePasswordReset(ctx context.Context, tok, newPassword string) error {
	user, err := s.consumeTimedToken(ctx, tok)
	if err != nil {
		return err
	}
	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

func (s *Service) ResendVerification(ctx context.Context, emailAddr string) (bool, error) {
	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return false, err
	}
	return s.sendVerification(ctx, user, "Verify your Account"), nil
}

func (s *Service) CompleteVerification(ctx context.Context, tok string) error {
	user, err := s.consumeTimedToken(ctx, tok)
	if err != nil {
		return err
	}
	user.IsVerified = true
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

// consumeTimedToken decodes a verification or reset token and resolves its
// subject. Expired and tampered tokens both surface as ErrTokenExpired.
func (s *Service) consumeTimedToken(ctx context.Context, tok string) (*domain.User, error) {
	emailAddr, err := s.codecs.Timed.Verify(tok, token.MaxLinkAge)
	if err != nil {
		return nil, domain.ErrTokenExpired
	}
	return s.users.FindByEmail(ctx, emailAddr)
}

// sendVerification dispatches a timed-token mail. Mail failure is reported,
// never propagated.
func (s *Service) sendVerification(ctx context.Context, user *domain.User, subject string) bool {
	tok := s.codecs.Timed.Sign(user.Email)
	sent := s.mailer.Send(ctx, []string{user.Email}, subject, "user/verification", map[string]any{
		"first_name": user.FirstName,
		"url":        fmt.Sprintf("%sauth/verification/%s/", s.frontend, tok),
	})
	if !sent {
		s.log.Warn("verification mail not sent", zap.String("email", user.Email))
	}
	return sent
}
