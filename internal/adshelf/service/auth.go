package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/repository"
	"github.com/jimyag/adshelf/internal/adshelf/repository/model"
	"github.com/jimyag/adshelf/pkg/apierror"
	"github.com/jimyag/adshelf/pkg/idgen"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenIssuer = "adshelf"
	// TokenType 访问令牌类型
	TokenType = "Bearer"
	// MinPasswordLength 密码最少字符数
	MinPasswordLength = 6
	// DefaultTokenTTL 默认访问令牌有效期
	DefaultTokenTTL = 24 * time.Hour
)

// accessClaims 访问令牌的 claims，Subject 为用户 ID，ID 为会话 ID
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService 注册、登录、注销
type AuthService struct {
	userRepo   repository.UserRepository
	revoked    RevocationList
	workspaces *WorkspaceManager
	secret     []byte
	ttl        time.Duration
	idGen      *idgen.Generator
	now        func() time.Time
}

// NewAuthService 创建认证服务
func NewAuthService(
	repo *repository.Repository,
	secret string,
	ttl time.Duration,
	revoked RevocationList,
	workspaces *WorkspaceManager,
) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if revoked == nil {
		revoked = NewMemoryRevocationList()
	}
	return &AuthService{
		userRepo:   repository.NewUserRepository(repo.DB()),
		revoked:    revoked,
		workspaces: workspaces,
		secret:     []byte(secret),
		ttl:        ttl,
		idGen:      idgen.New(),
		now:        time.Now,
	}
}

// SignUp 注册新用户
func (s *AuthService) SignUp(ctx context.Context, req *entity.SignUpRequest) (*entity.User, error) {
	logger := zerolog.Ctx(ctx)

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apierror.InvalidParameter("password must be at least %d characters", MinPasswordLength)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apierror.WrapError(apierror.ErrConflict, "email is already registered", nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error().Err(err).Msg("Failed to look up user")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to look up user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to hash password", err)
	}

	userID, err := s.idGen.GenerateUserID()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate user ID")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to generate user ID", err)
	}

	m := &model.User{
		ID:           userID,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, m); err != nil {
		// 并发注册时查询检查可能都通过，由唯一索引兜底
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apierror.WrapError(apierror.ErrConflict, "email is already registered", err)
		}
		logger.Error().Err(err).Str("email", email).Msg("Failed to create user")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to create user", err)
	}

	logger.Info().Str("user_id", userID).Str("email", email).Msg("User signed up successfully")
	return userModelToEntity(m)
}

// SignIn 校验密码并签发访问令牌
func (s *AuthService) SignIn(ctx context.Context, req *entity.SignInRequest) (*entity.SignInResponse, error) {
	logger := zerolog.Ctx(ctx)

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	m, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Unauthorized("invalid email or password")
		}
		logger.Error().Err(err).Msg("Failed to look up user")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to look up user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn().Str("email", email).Msg("Sign in rejected")
		return nil, apierror.Unauthorized("invalid email or password")
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := accessClaims{
		Email: m.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   m.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to sign access token")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to sign access token", err)
	}

	user, err := userModelToEntity(m)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert user", err)
	}

	logger.Info().
		Str("user_id", m.ID).
		Str("session_id", claims.ID).
		Msg("User signed in successfully")

	return &entity.SignInResponse{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		User:        user,
	}, nil
}

// Authenticate 校验访问令牌，返回会话
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.Session, error) {
	logger := zerolog.Ctx(ctx)

	if token == "" {
		return nil, apierror.Unauthorized("missing access token")
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		logger.Debug().Err(err).Msg("Access token rejected")
		return nil, apierror.WrapError(apierror.ErrUnauthorized, "invalid or expired access token", err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, apierror.Unauthorized("invalid access token")
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to check token revocation")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to check token revocation", err)
	}
	if revoked {
		return nil, apierror.Unauthorized("access token has been revoked")
	}

	return &entity.Session{
		SessionID: claims.ID,
		UserID:    claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}

// SignOut 注销当前会话并关闭它的工作区
func (s *AuthService) SignOut(ctx context.Context) (*entity.SignOutResponse, error) {
	logger := zerolog.Ctx(ctx)

	session, ok := SessionFromContext(ctx)
	if !ok {
		return nil, apierror.Unauthorized("not signed in")
	}

	ttl := time.Unix(session.ExpiresAt, 0).Sub(s.now())
	if err := s.revoked.Revoke(ctx, session.SessionID, ttl); err != nil {
		logger.Error().Err(err).Str("session_id", session.SessionID).Msg("Failed to revoke session")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to revoke session", err)
	}
	if s.workspaces != nil {
		s.workspaces.Close(session.SessionID)
	}

	logger.Info().
		Str("user_id", session.UserID).
		Str("session_id", session.SessionID).
		Msg("User signed out successfully")
	return &entity.SignOutResponse{Return: true}, nil
}

// CurrentUser 当前会话的用户
func (s *AuthService) CurrentUser(ctx context.Context) (*entity.User, error) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return nil, apierror.Unauthorized("not signed in")
	}

	m, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Unauthorized("user no longer exists")
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to look up user")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to look up user", err)
	}
	return userModelToEntity(m)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apierror.InvalidParameter("invalid email address: %q", email)
	}
	return email, nil
}
