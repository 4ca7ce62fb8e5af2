package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopportal/accounts-service/internal/dto"
	"github.com/shopportal/accounts-service/internal/service"
)

// UserHandler handles account provisioning and profile CRUD requests
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Create handles account creation
// @Summary Create a new account
// @Description Provision a provider account, persist its profile and dispatch the verification email
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "Creation request"
// @Success 201 {object} dto.CreateUserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	profile, dispatch, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateUserResponse{
		VerificationDispatch: dispatch,
		User:                 profile,
	})
}

// List handles listing all profiles
// @Summary List profiles
// @Description List every stored profile document
// @Tags users
// @Produce json
// @Success 200 {array} domain.UserProfile
// @Failure 500 {object} dto.ErrorResponse
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	profiles, err := h.userService.FindAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// Get handles fetching one profile
// @Summary Get a profile
// @Description Fetch one profile document by UID
// @Tags users
// @Produce json
// @Param id path string true "Account UID"
// @Success 200 {object} domain.UserProfile
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	profile, err := h.userService.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Update handles partial profile updates
// @Summary Update a profile
// @Description Shallow-merge the given fields over the stored document
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "Account UID"
// @Param request body dto.UpdateUserRequest true "Fields to merge"
// @Success 200 {object} domain.UserProfile
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	profile, err := h.userService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Delete handles profile deletion
// @Summary Delete a profile
// @Description Delete one profile document and return the removed snapshot
// @Tags users
// @Produce json
// @Param id path string true "Account UID"
// @Success 200 {object} domain.UserProfile
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	profile, err := h.userService.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
