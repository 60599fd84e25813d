package api

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

// GoogleLoginRequest carries a Google ID token. The names are used only when
// the token has none.
type GoogleLoginRequest struct {
	Token     string `json:"token" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RenewSessionRequest struct {
	UpdateToken string `json:"updateToken" binding:"required"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	PictureURL  string     `json:"pictureUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// UpdateProfileRequest carries the names to change; omitted fields stay.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
}

type LoginResponse struct {
	SessionToken      string       `json:"sessionToken"`
	UpdateToken       string       `json:"updateToken"`
	SessionExpiration time.Time    `json:"sessionExpiration"`
	User              UserResponse `json:"user"`
}

// --- Handler Methods ---

// GoogleLogin godoc
// @Summary Sign in with Google
// @Description Verifies a Google ID token, creates or updates the user and opens a session.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body GoogleLoginRequest true "Google ID token"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} ErrorResponse "Missing token"
// @Failure 401 {object} ErrorResponse "Invalid Google ID token"
// @Failure 429 {object} ErrorResponse "Too many login attempts"
// @Failure 503 {object} ErrorResponse "Google unreachable"
// @Router /google-login/ [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err.Error())
		return
	}

	result, err := h.authService.ExchangeGoogleToken(c.Request.Context(), req.Token, service.ProfileNames{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapLoginResultToResponse(result))
}

// Register godoc
// @Summary Register with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} LoginResponse "User created and logged in"
// @Failure 400 {object} ErrorResponse "Invalid input (validation error)"
// @Failure 409 {object} ErrorResponse "Conflict (username or email taken)"
// @Router /register/ [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err.Error())
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapLoginResultToResponse(result))
}

// Login godoc
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} ErrorResponse "Invalid input (validation error)"
// @Failure 401 {object} ErrorResponse "Unauthorized (invalid credentials)"
// @Failure 429 {object} ErrorResponse "Too many login attempts"
// @Router /login/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapLoginResultToResponse(result))
}

// RenewSession godoc
// @Summary Exchange an update token for a new session
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RenewSessionRequest true "Update token"
// @Success 200 {object} LoginResponse "New session"
// @Failure 401 {object} ErrorResponse "Invalid or expired update token"
// @Router /session/ [post]
func (h *AuthHandler) RenewSession(c *gin.Context) {
	var req RenewSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err.Error())
		return
	}

	result, err := h.authService.RenewSession(c.Request.Context(), req.UpdateToken)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapLoginResultToResponse(result))
}

// Logout godoc
// @Summary End the current session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Logged out"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /logout/ [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	// Not behind AuthMiddleware: an expired token may still end its session.
	token, present, err := bearerToken(c)
	if !present {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Authorization header is missing")
		return
	}
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return
	}
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// CurrentUser godoc
// @Summary Get the authenticated user's profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /user/ [get]
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateCurrentUser godoc
// @Summary Change the authenticated user's names
// @Description Only fields present in the body are changed.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Names to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /user/ [put]
func (h *AuthHandler) UpdateCurrentUser(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err.Error())
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
// Crucially excludes PasswordHash and converts ObjectIDs to strings.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:          user.ID.Hex(),
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PictureURL:  user.PictureURL,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

func MapLoginResultToResponse(result *service.LoginResult) LoginResponse {
	return LoginResponse{
		SessionToken:      result.SessionToken,
		UpdateToken:       result.RefreshToken,
		SessionExpiration: result.ExpiresAt,
		User:              MapUserToResponse(result.User),
	}
}
