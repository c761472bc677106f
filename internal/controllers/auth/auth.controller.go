package authController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomcare/config"
	"roomcare/internal/database"
	. "roomcare/internal/models"
	"roomcare/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
	"gorm.io/gorm"
)

const (
	TOKEN_EXPIRY         = 7 * 24 * time.Hour
	SESSION_CACHE_PREFIX = "session:"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateIdentity  = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

type RegisterRequest struct {
	CollegeID    string  `json:"collegeId"`
	Name         string  `json:"name"`
	Password     string  `json:"password"`
	Role         Role    `json:"role"`
	HostelNumber string  `json:"hostelNumber"`
	RoomNumber   *string `json:"roomNumber,omitempty"`
	FloorNumber  *int    `json:"floorNumber,omitempty"`
}

type LoginRequest struct {
	CollegeID string `json:"collegeId"`
	Password  string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type AuthControllerInterface interface {
	Register(ctx context.Context, request *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*User, error)
}

// sessionStore keeps issued sessions so tokens stay revocable server-side.
type sessionStore interface {
	Store(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
}

type valkeySessionStore struct {
	cache valkey.Client
}

func (s *valkeySessionStore) Store(
	ctx context.Context,
	sessionID, userID string,
	ttl time.Duration,
) error {
	return database.NewCacheBuilder(s.cache, SESSION_CACHE_PREFIX+sessionID).
		WithValue(userID).
		WithTTL(ttl).
		WithContext(ctx).
		Set()
}

func (s *valkeySessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	_, found, err := database.NewCacheBuilder(s.cache, SESSION_CACHE_PREFIX+sessionID).
		WithContext(ctx).
		GetString()
	return found, err
}

type AuthController struct {
	userRepo repositories.UserRepository
	sessions sessionStore
	config   config.Config
	log      logger.Logger
}

func New(
	userRepo repositories.UserRepository,
	db database.DB,
	config config.Config,
) AuthControllerInterface {
	return &AuthController{
		userRepo: userRepo,
		sessions: &valkeySessionStore{cache: db.Cache.Session},
		config:   config,
		log:      logger.New("authController"),
	}
}

// Register creates a user with role-shaped placement. Students get a sweeper
// assigned from their room's floor when one exists; a registering sweeper is
// backfilled onto every student of their floor and hostel.
func (c *AuthController) Register(
	ctx context.Context,
	request *RegisterRequest,
) (*AuthResponse, error) {
	log := c.log.Function("Register")

	if err := validateRegisterRequest(request); err != nil {
		return nil, err
	}

	_, err := c.userRepo.GetByCollegeID(ctx, request.CollegeID)
	if err == nil {
		return nil, ErrDuplicateIdentity
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, log.Err("failed to check existing user", err, "collegeID", request.CollegeID)
	}

	user := &User{
		CollegeID:    request.CollegeID,
		Name:         request.Name,
		Role:         request.Role,
		HostelNumber: request.HostelNumber,
	}

	if err := user.SetPassword(request.Password); err != nil {
		return nil, log.Err("failed to hash password", err, "collegeID", request.CollegeID)
	}

	switch request.Role {
	case RoleStudent:
		user.RoomNumber = request.RoomNumber
		if floor, ok := user.Floor(); ok {
			sweeper, err := c.userRepo.FindSweeperByHostelAndFloor(ctx, user.HostelNumber, floor)
			if err == nil {
				user.AssignedSweeperID = &sweeper.ID
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, log.Err("failed to find sweeper for floor", err, "floor", floor)
			}
		}
	case RoleSweeper:
		user.FloorNumber = request.FloorNumber
	}

	if err := c.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if user.Role == RoleSweeper {
		backfilled, err := c.userRepo.AssignSweeperToFloorStudents(ctx, user)
		if err != nil {
			log.Er("failed to backfill students with new sweeper", err, "sweeperID", user.ID)
		} else if backfilled > 0 {
			log.Info("backfilled students with new sweeper",
				"sweeperID", user.ID, "students", backfilled)
		}
	}

	token, err := c.generateToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// Login never discloses whether the college id or the password was wrong.
func (c *AuthController) Login(
	ctx context.Context,
	request *LoginRequest,
) (*AuthResponse, error) {
	log := c.log.Function("Login")

	user, err := c.userRepo.GetByCollegeID(ctx, request.CollegeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, log.Err("failed to look up user", err, "collegeID", request.CollegeID)
	}

	if !user.CheckPassword(request.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := c.generateToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// ValidateToken parses the JWT, verifies the session is still live in the
// session cache, and resolves the user.
func (c *AuthController) ValidateToken(ctx context.Context, tokenString string) (*User, error) {
	log := c.log.Function("ValidateToken")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(c.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	found, err := c.sessions.Exists(ctx, claims.ID)
	if err != nil {
		log.Warn("failed to check session cache", "error", err)
	} else if !found {
		return nil, ErrInvalidToken
	}

	user, err := c.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return user, nil
}

func (c *AuthController) generateToken(ctx context.Context, user *User) (string, error) {
	log := c.log.Function("generateToken")

	now := time.Now()
	sessionID := uuid.New().String()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TOKEN_EXPIRY)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(c.config.JWTSecret))
	if err != nil {
		return "", log.Err("failed to sign token", err, "userID", user.ID)
	}

	if err := c.sessions.Store(ctx, sessionID, user.ID.String(), TOKEN_EXPIRY); err != nil {
		return "", log.Err("failed to store session", err, "userID", user.ID)
	}

	return token, nil
}

func validateRegisterRequest(request *RegisterRequest) error {
	if request.CollegeID == "" {
		return fmt.Errorf("%w: collegeId is required", ErrValidation)
	}
	if request.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if request.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if request.HostelNumber == "" {
		return fmt.Errorf("%w: hostelNumber is required", ErrValidation)
	}
	if !request.Role.IsValid() {
		return fmt.Errorf("%w: invalid role", ErrValidation)
	}
	if request.Role == RoleStudent && (request.RoomNumber == nil || *request.RoomNumber == "") {
		return fmt.Errorf("%w: roomNumber is required for students", ErrValidation)
	}
	if request.Role == RoleSweeper && request.FloorNumber == nil {
		return fmt.Errorf("%w: floorNumber is required for sweepers", ErrValidation)
	}
	return nil
}
