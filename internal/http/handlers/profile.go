package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/hospitalhub/internal/blobstore"
	"github.com/geocoder89/hospitalhub/internal/domain/identity"
	"github.com/geocoder89/hospitalhub/internal/http/middlewares"
)

type IdentityProfileStore interface {
	GetByID(ctx context.Context, id string) (identity.Identity, error)
	UpdateProfile(ctx context.Context, id string, req identity.UpdateProfileRequest) (identity.Identity, error)
	SetImage(ctx context.Context, id, imageRef string) error
}

type ProfileHandler struct {
	identities IdentityProfileStore
	blobs      blobstore.Store
}

func NewProfileHandler(identities IdentityProfileStore, blobs blobstore.Store) *ProfileHandler {
	return &ProfileHandler{
		identities: identities,
		blobs:      blobs,
	}
}

func (h *ProfileHandler) Get(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "You are not authorized to view this page")
		return
	}

	ident, err := h.identities.GetByID(ctx.Request.Context(), userID)

	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			RespondNotFound(ctx, "Account not found.")
			return
		}

		slog.Error("profile_get_failed", "error", err)
		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": ident})
}

func (h *ProfileHandler) Update(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "You are not authorized to view this page")
		return
	}

	var req identity.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.Email = identity.NormalizeEmail(req.Email)

	ident, err := h.identities.UpdateProfile(ctx.Request.Context(), userID, req)

	if err != nil {
		switch {
		case errors.Is(err, identity.ErrDuplicateEmail):
			RespondConflict(ctx, "email_taken", "Email is already registered for this account type.")
		case errors.Is(err, identity.ErrNotFound):
			RespondNotFound(ctx, "Account not found.")
		default:
			slog.Error("profile_update_failed", "error", err)
			RespondInternal(ctx, "Could not update profile")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": ident})
}

// UploadImage accepts a multipart "image" field, stores the blob and points
// the identity record at the new reference.
func (h *ProfileHandler) UploadImage(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "You are not authorized to view this page")
		return
	}

	file, header, err := ctx.Request.FormFile("image")

	if err != nil {
		RespondBadRequest(ctx, "missing_image", "An image file is required.")
		return
	}

	defer file.Close()

	ref, err := h.blobs.Save(header.Filename, file)

	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrMissingFileName), errors.Is(err, blobstore.ErrBadExtension):
			RespondBadRequest(ctx, "invalid_image", err.Error())
		case errors.Is(err, blobstore.ErrTooLarge):
			RespondError(ctx, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
		default:
			slog.Error("image_upload_failed", "error", err)
			RespondInternal(ctx, "Could not store image")
		}
		return
	}

	if err := h.identities.SetImage(ctx.Request.Context(), userID, ref); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			RespondNotFound(ctx, "Account not found.")
			return
		}

		slog.Error("image_upload_failed", "error", err)
		RespondInternal(ctx, "Could not store image")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"imageFile": ref})
}
