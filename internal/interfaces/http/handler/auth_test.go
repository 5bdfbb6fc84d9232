package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appidentity "github.com/lastmile/backend/internal/application/identity"
	"github.com/lastmile/backend/internal/domain/identity"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/auth"
	"github.com/lastmile/backend/internal/infrastructure/config"
	"github.com/lastmile/backend/internal/interfaces/http/middleware"
)

// testJWTConfig returns a default JWT config for tests
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByRole(ctx context.Context, role order.ActorRole, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, role, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, officeID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func setupAuthRouter(handler *AuthHandler, jwtService *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Auth routes (no JWT required for login/refresh)
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.RefreshToken)
	}

	// Protected auth routes (JWT required)
	protectedGroup := r.Group("/api/v1/auth")
	protectedGroup.Use(middleware.JWTAuthMiddleware(jwtService))
	{
		protectedGroup.POST("/logout", handler.Logout)
		protectedGroup.GET("/me", handler.GetCurrentUser)
		protectedGroup.PUT("/password", handler.ChangePassword)
	}

	return r
}

func createTestUserForHandler() *identity.User {
	user, _ := identity.NewActiveUser("testuser", "Password123", order.RoleCustomer, nil)
	return user
}

func createAuthServiceForHandler(userRepo *MockUserRepository, jwtService *auth.JWTService) *appidentity.AuthService {
	return appidentity.NewAuthService(
		userRepo,
		jwtService,
		appidentity.DefaultAuthServiceConfig(),
		zap.NewNop(),
	)
}

func doLogin(t *testing.T, router *gin.Engine) (accessToken, refreshToken string) {
	t.Helper()

	loginBody, _ := json.Marshal(LoginRequest{
		Username: "testuser",
		Password: "Password123",
	})
	loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	router.ServeHTTP(loginW, loginReq)
	require.Equal(t, http.StatusOK, loginW.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(loginW.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	token := data["token"].(map[string]interface{})
	return token["access_token"].(string), token["refresh_token"].(string)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := createTestUserForHandler()

	userRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	handler := NewAuthHandler(createAuthServiceForHandler(userRepo, jwtService))
	router := setupAuthRouter(handler, jwtService)

	body, _ := json.Marshal(LoginRequest{
		Username: "testuser",
		Password: "Password123",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	token := data["token"].(map[string]interface{})
	assert.NotEmpty(t, token["access_token"])
	assert.NotEmpty(t, token["refresh_token"])
	assert.Equal(t, "Bearer", token["token_type"])

	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "testuser", userData["username"])
	assert.Equal(t, "CUSTOMER", userData["role"])
}

func TestAuthHandler_Login_InvalidRequestBody(t *testing.T) {
	jwtService := auth.NewJWTService(testJWTConfig())

	userRepo := new(MockUserRepository)
	handler := NewAuthHandler(createAuthServiceForHandler(userRepo, jwtService))
	router := setupAuthRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := createTestUserForHandler()

	userRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	handler := NewAuthHandler(createAuthServiceForHandler(userRepo, jwtService))
	router := setupAuthRouter(handler, jwtService)

	body, _ := json.Marshal(LoginRequest{
		Username: "testuser",
		Password: "WrongPassword1",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := createTestUserForHandler()

	userRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	handler := NewAuthHandler(createAuthServiceForHandler(userRepo, jwtService))
	router := setupAuthRouter(handler, jwtService)

	_, refreshToken := doLogin(t, router)

	body, _ := json.Marshal(RefreshTokenRequest{RefreshToken: refreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	token := data["token"].(map[string]interface{})
	assert.NotEmpty(t, token["access_token"])
	assert.NotEmpty(t, token["refresh_token"])
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	jwtService := auth.NewJWTService(testJWTConfig())

	userRepo := new(MockUserRepository)
	handler := NewAuthHandler(createAuthServiceForHandler(userRepo, jwtService))
	router := setupAuthRouter(handler, jwtService)

	body, _ := json.Marshal(RefreshTokenRequest{RefreshToken: "not-a-token"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := createTestUserForHandler()

	userRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	handler := NewAuthHandler(createAuthServiceForHandler(userRepo, jwtService))
	router := setupAuthRouter(handler, jwtService)

	accessToken, _ := doLogin(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Logged out successfully", data["message"])
}

func TestAuthHandler_Logout_Unauthorized(t *testing.T) {
	jwtService := auth.NewJWTService(testJWTConfig())

	userRepo := new(MockUserRepository)
	handler := NewAuthHandler(createAuthServiceForHandler(userRepo, jwtService))
	router := setupAuthRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_GetCurrentUser_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := createTestUserForHandler()

	userRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	handler := NewAuthHandler(createAuthServiceForHandler(userRepo, jwtService))
	router := setupAuthRouter(handler, jwtService)

	accessToken, _ := doLogin(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "testuser", userData["username"])
	assert.Equal(t, "CUSTOMER", userData["role"])
}

func TestAuthHandler_ChangePassword_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := createTestUserForHandler()

	userRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	userRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	handler := NewAuthHandler(createAuthServiceForHandler(userRepo, jwtService))
	router := setupAuthRouter(handler, jwtService)

	accessToken, _ := doLogin(t, router)

	changeBody, _ := json.Marshal(ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "NewPassword456",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/auth/password", bytes.NewReader(changeBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
}
