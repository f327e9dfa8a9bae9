package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/interfaces/http/middleware"
	"kitchenware-market.backend/internal/interfaces/http/response"
	"kitchenware-market.backend/internal/interfaces/http/validators"
	"kitchenware-market.backend/pkg/utils"
)

type ProfileService interface {
	GetOwnProfile(ctx context.Context, actor *entities.Actor) (*entities.UserProfile, error)
	GetProfileByUsername(ctx context.Context, username string) (*entities.UserProfile, error)
	UpdateProfile(ctx context.Context, actor *entities.Actor, username string, input *entities.UpdateProfileInput) (*entities.UserProfile, error)
	UpdateAccount(ctx context.Context, actor *entities.Actor, input *entities.UpdateAccountInput) (*entities.User, error)
	DeleteUser(ctx context.Context, actor *entities.Actor, username string) error
}

// ProfileHandler serves the caller's profile and public user pages
type ProfileHandler struct {
	profileService ProfileService
}

func NewProfileHandler(profileService ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetOwnProfile returns the caller's profile
// GET /api/v1/profile
func (h *ProfileHandler) GetOwnProfile(c *gin.Context) {
	profile, err := h.profileService.GetOwnProfile(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// GetUserProfile returns a public profile
// GET /api/v1/users/:username
func (h *ProfileHandler) GetUserProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// UpdateProfile edits the caller's profile from a multipart or urlencoded form.
// Fields left out of the form are not changed.
// PUT /api/v1/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	actor := middleware.GetActor(c)
	input := &entities.UpdateProfileInput{}

	if bio, ok := c.GetPostForm("bio"); ok {
		input.Bio = &bio
	}
	if phone, ok := c.GetPostForm("phone_number"); ok {
		input.PhoneNumber = &phone
	}
	if raw, ok := c.GetPostForm("is_seller"); ok {
		isSeller, err := parseFormBool(raw)
		if err != nil {
			response.Error(c, domainerrors.NewValidationError("is_seller", "Must be a valid boolean."))
			return
		}
		input.IsSeller = &isSeller
	}
	if raw, ok := c.GetPostForm("remove_picture"); ok {
		remove, err := parseFormBool(raw)
		if err != nil {
			response.Error(c, domainerrors.NewValidationError("remove_picture", "Must be a valid boolean."))
			return
		}
		input.RemovePicture = remove
	}

	files, err := openFiles(formFiles(c, "picture"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Could not read uploaded file"))
		return
	}
	defer files.Close()
	if len(files.uploads) > 1 {
		response.Error(c, domainerrors.NewValidationError("picture", "Only one picture may be uploaded."))
		return
	}
	if len(files.uploads) == 1 {
		input.Picture = files.uploads[0]
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), actor, actor.Username, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// UpdateAccount changes the caller's email and names
// PUT /api/v1/profile/account
func (h *ProfileHandler) UpdateAccount(c *gin.Context) {
	var input entities.UpdateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, validators.ToDomain(err))
		return
	}

	user, err := h.profileService.UpdateAccount(c.Request.Context(), middleware.GetActor(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// DeleteAccount deletes the caller's account with its profile and listings
// DELETE /api/v1/profile
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	actor := middleware.GetActor(c)
	if err := h.profileService.DeleteUser(c.Request.Context(), actor, actor.Username); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseFormBool accepts HTML checkbox values as well as strconv booleans.
func parseFormBool(raw string) (bool, error) {
	switch raw {
	case "on", "yes":
		return true, nil
	case "", "off", "no":
		return false, nil
	}
	return strconv.ParseBool(raw)
}

// pageParam reads ?page=, defaulting to the first page.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 1
	}
	return utils.GetPaginationParams(page, 0).Page
}
