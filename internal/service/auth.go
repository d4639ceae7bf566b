package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/flicky/coffeebar-pos/internal/dto"
	"github.com/flicky/coffeebar-pos/internal/model"
	"github.com/flicky/coffeebar-pos/internal/repository"
)

type AuthService struct {
	userRepo     repository.UserRepository
	jwtSecret    []byte
	jwtExpiry    time.Duration
	customerRole string
	validate     *validator.Validate
	log          *slog.Logger
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiry time.Duration, customerRole string, log *slog.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecret:    []byte(jwtSecret),
		jwtExpiry:    jwtExpiry,
		customerRole: customerRole,
		validate:     newValidator(),
		log:          log,
	}
}

type sessionClaims struct {
	Role      int    `json:"role"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, storageErr("check username", err)
	}
	if existing != nil {
		return nil, invalid("username", "is already taken")
	}
	existing, err = s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, storageErr("check email", err)
	}
	if existing != nil {
		return nil, invalid("email", "is already registered")
	}

	role, err := s.userRepo.GetRoleByName(ctx, s.customerRole)
	if err != nil {
		return nil, storageErr("get role", err)
	}
	if role == nil {
		return nil, storageErr("get role", fmt.Errorf("role %q does not exist", s.customerRole))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username: req.Username, Password: string(hashed),
		FirstName: req.FirstName, LastName: req.LastName,
		Email: req.Email, RoleID: role.ID,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storageErr("create user", err)
	}

	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// Login checks credentials and issues a session token. Unknown users and
// wrong passwords both match ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, invalid("username", "is required")
	}
	if req.Password == "" {
		return nil, invalid("password", "is required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storageErr("get user", err)
	}
	if user == nil {
		s.log.Debug("login rejected", "username", username, "reason", ErrUnknownUser.Error())
		return nil, ErrUnknownUser
	}
	if !passwordMatches(user.Password, req.Password) {
		s.log.Debug("login rejected", "username", username, "reason", ErrWrongPassword.Error())
		return nil, ErrWrongPassword
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{Token: token, User: dto.ToUserResponse(user)}, nil
}

// passwordMatches accepts bcrypt hashes as well as legacy plaintext rows.
func passwordMatches(stored, given string) bool {
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func (s *AuthService) generateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Role:      user.RoleID,
		Username:  user.Username,
		FirstName: user.FirstName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ParseToken verifies a token issued by Login and returns its session.
func (s *AuthService) ParseToken(tokenStr string) (model.Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.Session{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return model.Session{}, errors.New("invalid token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return model.Session{}, fmt.Errorf("parse subject: %w", err)
	}
	if claims.ID == "" {
		return model.Session{}, errors.New("token has no id")
	}
	return model.Session{
		UserID:    userID,
		Username:  claims.Username,
		FirstName: claims.FirstName,
		RoleID:    claims.Role,
		TokenID:   claims.ID,
	}, nil
}
