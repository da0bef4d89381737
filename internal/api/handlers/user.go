package handlers

import (
	"net/http"

	"presence-service/internal/auth"
	"presence-service/internal/database"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	authService *auth.AuthService
	storage     *database.MinIOClient
}

func NewUserHandler(authService *auth.AuthService, storage *database.MinIOClient) *UserHandler {
	return &UserHandler{authService: authService, storage: storage}
}

// GetProfile godoc
// @Summary Get current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.UserModel
// @Failure 404 {object} auth.ErrorResponse "User not found"
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, auth.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update current user profile
// @Description Update username and optionally upload a new avatar image
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param username formData string false "New username"
// @Param avatar formData file false "Avatar image"
// @Success 200 {object} auth.UserModel
// @Failure 400 {object} auth.ErrorResponse "Bad request"
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req auth.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, auth.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid input data",
		})
		return
	}

	var avatarURL string
	if file, err := c.FormFile("avatar"); err == nil {
		if h.storage == nil {
			c.JSON(http.StatusServiceUnavailable, auth.ErrorResponse{
				Code:    http.StatusServiceUnavailable,
				Message: "Avatar storage is not configured",
			})
			return
		}
		avatarURL, err = h.storage.UploadAvatar(c.Request.Context(), userID, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, auth.ErrorResponse{
				Code:    http.StatusInternalServerError,
				Message: "Avatar upload failed",
			})
			return
		}
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, req.Username, avatarURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, auth.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Profile update failed",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
