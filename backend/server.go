package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/authsession/jwt"
	"github.com/MrEthical07/authsession/middleware"
	"github.com/MrEthical07/authsession/password"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBasePath matches authsession's default BackendConfig.BaseURL path.
const DefaultBasePath = "/api/user"

// Config configures a Server.
type Config struct {
	BasePath string
	Tokens   jwt.Config
	Password password.Config
}

// DefaultConfig returns a one hour HS256 configuration signed with secret.
func DefaultConfig(secret []byte) Config {
	return Config{
		BasePath: DefaultBasePath,
		Tokens: jwt.Config{
			TTL:           time.Hour,
			SigningMethod: jwt.MethodHS256,
			PrivateKey:    secret,
			Issuer:        "authsession-backend",
		},
		Password: password.DefaultConfig(),
	}
}

// Server holds the backend dependencies and its gin engine.
type Server struct {
	logger *zap.Logger
	tokens *jwt.Manager
	hasher *password.Argon2
	users  *userDirectory
	engine *gin.Engine

	// dummyHash keeps unknown-user logins as slow as wrong-password logins.
	dummyHash string
}

// NewServer builds a Server and registers its routes.
func NewServer(cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BasePath == "" {
		cfg.BasePath = DefaultBasePath
	}
	if !strings.HasPrefix(cfg.BasePath, "/") {
		return nil, errors.New("base path must start with /")
	}

	tokens, err := jwt.NewManager(cfg.Tokens)
	if err != nil {
		return nil, err
	}
	hasher, err := password.NewArgon2(cfg.Password)
	if err != nil {
		return nil, err
	}
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	s := &Server{
		logger:    logger,
		tokens:    tokens,
		hasher:    hasher,
		users:     newUserDirectory(),
		dummyHash: dummy,
	}
	s.engine = s.routes(strings.TrimRight(cfg.BasePath, "/"))
	return s, nil
}

func (s *Server) routes(base string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group(base)
	api.POST("/signup", s.Signup)
	api.POST("/login", s.Login)
	api.GET("/me", gin.WrapH(middleware.Guard(s.tokens)(http.HandlerFunc(s.me))))
	return r
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Tokens returns the token manager, for callers that need to verify or mint tokens.
func (s *Server) Tokens() *jwt.Manager {
	return s.tokens
}

// UserCount reports the number of registered users.
func (s *Server) UserCount() int {
	return s.users.len()
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

type credentialsRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST {base}/signup.
func (s *Server) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("invalid signup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	req.UserName = strings.TrimSpace(req.UserName)
	if req.UserName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userName required"})
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("hash password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	user := User{
		ID:           uuid.NewString(),
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.create(user); err != nil {
		if errors.Is(err, ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
			return
		}
		s.logger.Error("create user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("user_name", user.UserName))
	c.JSON(http.StatusCreated, gin.H{"userName": user.UserName, "userId": user.ID})
}

// Login handles POST {base}/login.
func (s *Server) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := s.users.lookup(strings.TrimSpace(req.UserName), req.Email)
	hash := user.PasswordHash
	if err != nil {
		hash = s.dummyHash
	}

	ok, verr := s.hasher.Verify(req.Password, hash)
	if err != nil || verr != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, _, err := s.tokens.Issue(user.ID, user.UserName)
	if err != nil {
		s.logger.Error("issue token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{
		"user":      user.UserName,
		"token":     token,
		"expiresIn": int64(s.tokens.TTL() / time.Second),
		"userId":    user.ID,
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"userId":    claims.Subject,
		"userName":  claims.UserName,
		"expiresAt": claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
	})
}
