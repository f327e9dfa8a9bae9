package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/domain/repositories"
	"kitchenware-market.backend/internal/infrastructure/storage"
	"kitchenware-market.backend/pkg/logger"
	"kitchenware-market.backend/pkg/metrics"
	"kitchenware-market.backend/pkg/utils"
)

// MediaOptions bounds accepted uploads
type MediaOptions struct {
	MaxUploadBytes int64
	AllowedExts    []string
}

// MediaUsecase owns every blob the marketplace stores: listing images and
// profile pictures. Blob writes happen before commit and are undone on
// rollback; blob deletes only run after commit.
type MediaUsecase struct {
	storage     repositories.BlobStorage
	imageRepo   repositories.ItemImageRepository
	itemRepo    repositories.ItemRepository
	profileRepo repositories.ProfileRepository
	refRepo     repositories.MediaReferenceRepository
	uow         repositories.UnitOfWork
	maxBytes    int64
	allowedExts []string
	now         func() time.Time
}

func NewMediaUsecase(
	blobs repositories.BlobStorage,
	imageRepo repositories.ItemImageRepository,
	itemRepo repositories.ItemRepository,
	profileRepo repositories.ProfileRepository,
	refRepo repositories.MediaReferenceRepository,
	uow repositories.UnitOfWork,
	opts MediaOptions,
) *MediaUsecase {
	exts := make([]string, 0, len(opts.AllowedExts))
	for _, ext := range opts.AllowedExts {
		exts = append(exts, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}
	if len(exts) == 0 {
		exts = []string{"jpg", "jpeg", "png", "gif", "webp"}
	}
	maxBytes := opts.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &MediaUsecase{
		storage:     blobs,
		imageRepo:   imageRepo,
		itemRepo:    itemRepo,
		profileRepo: profileRepo,
		refRepo:     refRepo,
		uow:         uow,
		maxBytes:    maxBytes,
		allowedExts: exts,
		now:         time.Now,
	}
}

// ValidateUpload checks size and extension of an incoming image.
func (u *MediaUsecase) ValidateUpload(field string, upload *entities.Upload) error {
	if upload == nil || upload.Content == nil || upload.Filename == "" {
		return domainerrors.NewValidationError(field, "No file was submitted.")
	}
	if upload.Size > u.maxBytes {
		return domainerrors.NewValidationError(field,
			fmt.Sprintf("Image file too large. Maximum size is %dMB.", u.maxBytes/(1024*1024)))
	}
	if _, ok := u.extension(upload.Filename); !ok {
		return domainerrors.NewValidationError(field,
			"Unsupported file extension. Allowed extensions are: "+strings.Join(u.allowedExts, ", ")+".")
	}
	return nil
}

func (u *MediaUsecase) extension(filename string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		return "", false
	}
	for _, allowed := range u.allowedExts {
		if ext == allowed {
			return ext, true
		}
	}
	return "", false
}

// store writes the upload under a fresh key. Must be called inside a unit of
// work: the blob is removed again if the transaction rolls back.
func (u *MediaUsecase) store(ctx context.Context, field, prefix string, upload *entities.Upload) (string, error) {
	ext, _ := u.extension(upload.Filename)
	key := storage.BuildKey(prefix, ext, u.now())

	n, err := u.storage.Save(ctx, key, io.LimitReader(upload.Content, u.maxBytes+1))
	if err != nil {
		_ = u.storage.Delete(context.WithoutCancel(ctx), key)
		return "", fmt.Errorf("store %s: %w", field, err)
	}
	u.uow.OnRollback(ctx, func(hookCtx context.Context) {
		u.deleteBlob(hookCtx, key, "rollback")
	})
	if n > u.maxBytes {
		return "", domainerrors.NewValidationError(field,
			fmt.Sprintf("Image file too large. Maximum size is %dMB.", u.maxBytes/(1024*1024)))
	}
	return key, nil
}

// AttachImage validates and stores an image for the item and creates its row.
// With forcePrimary the new image replaces any existing primary. Otherwise it
// becomes primary only if the item has none, decided by a single conditional
// update while the item row is locked.
func (u *MediaUsecase) AttachImage(ctx context.Context, item *entities.Item, upload *entities.Upload, forcePrimary bool) (*entities.ItemImage, error) {
	if err := u.ValidateUpload("image", upload); err != nil {
		return nil, err
	}

	img := &entities.ItemImage{
		ID:     utils.GenerateUUIDv7(),
		ItemID: item.ID,
	}
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.itemRepo.LockForUpdate(txCtx, item.ID); err != nil {
			return err
		}

		key, err := u.store(txCtx, "image", entities.ListingsMediaRoot, upload)
		if err != nil {
			return err
		}
		img.Image = key
		img.UploadedAt = u.now().UTC()

		if err := u.imageRepo.Create(txCtx, img); err != nil {
			return err
		}

		if forcePrimary {
			if err := u.imageRepo.SetPrimary(txCtx, item.ID, img.ID); err != nil {
				return err
			}
			img.IsPrimary = true
			return nil
		}

		won, err := u.imageRepo.MarkPrimaryIfNone(txCtx, item.ID, img.ID)
		if err != nil {
			return err
		}
		img.IsPrimary = won
		return nil
	})
	if err != nil {
		return nil, err
	}

	img.URL = u.storage.URL(img.Image)
	metrics.ImagesAttached.Inc()
	return img, nil
}

// ReplacePicture stores a new profile picture. The previous blob is deleted
// only after the reference switch commits.
func (u *MediaUsecase) ReplacePicture(ctx context.Context, profile *entities.UserProfile, upload *entities.Upload) error {
	if err := u.ValidateUpload("picture", upload); err != nil {
		return err
	}

	var newKey string
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		key, err := u.store(txCtx, "picture", entities.ProfileMediaRoot, upload)
		if err != nil {
			return err
		}
		if err := u.profileRepo.UpdatePicture(txCtx, profile.ID, &key); err != nil {
			return err
		}
		if profile.HasPicture() && profile.Picture.String != key {
			u.DeleteAfterCommit(txCtx, profile.Picture.String, "picture_replaced")
		}
		newKey = key
		return nil
	})
	if err != nil {
		return err
	}

	profile.Picture = null.StringFrom(newKey)
	profile.PictureURL = u.storage.URL(newKey)
	return nil
}

// RemovePicture clears the profile picture reference and deletes the blob after commit.
func (u *MediaUsecase) RemovePicture(ctx context.Context, profile *entities.UserProfile) error {
	if !profile.HasPicture() {
		return nil
	}
	old := profile.Picture.String
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.profileRepo.UpdatePicture(txCtx, profile.ID, nil); err != nil {
			return err
		}
		u.DeleteAfterCommit(txCtx, old, "picture_removed")
		return nil
	})
	if err != nil {
		return err
	}

	profile.Picture = null.String{}
	profile.PictureURL = ""
	return nil
}

// RemovePictureFile schedules deletion of the profile's picture blob. Used when
// the profile itself goes away.
func (u *MediaUsecase) RemovePictureFile(ctx context.Context, profile *entities.UserProfile) {
	if profile.HasPicture() {
		u.DeleteAfterCommit(ctx, profile.Picture.String, "profile_deleted")
	}
}

// DeleteAfterCommit deletes key once the surrounding transaction commits.
// Failures are logged; the row is already gone so the blob is an orphan for
// the sweeper.
func (u *MediaUsecase) DeleteAfterCommit(ctx context.Context, key, reason string) {
	u.uow.AfterCommit(ctx, func(hookCtx context.Context) {
		u.deleteBlob(hookCtx, key, reason)
	})
}

func (u *MediaUsecase) deleteBlob(ctx context.Context, key, reason string) {
	if err := u.storage.Delete(ctx, key); err != nil {
		metrics.BlobDeletes.WithLabelValues(reason, "error").Inc()
		logger.Warn(ctx, "Failed to delete media blob",
			zap.String("key", key),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return
	}
	metrics.BlobDeletes.WithLabelValues(reason, "ok").Inc()
}

// URL returns the public URL of a stored blob
func (u *MediaUsecase) URL(key string) string {
	return u.storage.URL(key)
}

// DecorateProfile fills derived presentation fields.
func (u *MediaUsecase) DecorateProfile(profile *entities.UserProfile) {
	if profile == nil {
		return
	}
	profile.PictureURL = ""
	if profile.HasPicture() {
		profile.PictureURL = u.storage.URL(profile.Picture.String)
	}
}

// DecorateImages fills image URLs.
func (u *MediaUsecase) DecorateImages(images []*entities.ItemImage) {
	for _, img := range images {
		img.URL = u.storage.URL(img.Image)
	}
}

// SweepOrphans deletes blobs under the given prefixes that are older than
// grace and no longer referenced by any row. It returns how many were removed.
func (u *MediaUsecase) SweepOrphans(ctx context.Context, prefixes []string, grace time.Duration) (int, error) {
	cutoff := u.now().Add(-grace)
	removed := 0
	for _, prefix := range prefixes {
		blobs, err := u.storage.List(ctx, prefix)
		if err != nil {
			return removed, fmt.Errorf("list %s: %w", prefix, err)
		}

		candidates := make([]string, 0, len(blobs))
		for _, b := range blobs {
			if b.ModTime.Before(cutoff) {
				candidates = append(candidates, b.Key)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		referenced, err := u.refRepo.ReferencedKeys(ctx, candidates)
		if err != nil {
			return removed, err
		}
		for _, key := range candidates {
			if _, ok := referenced[key]; ok {
				continue
			}
			if err := u.storage.Delete(ctx, key); err != nil {
				if errors.Is(err, context.Canceled) {
					return removed, err
				}
				logger.Warn(ctx, "Failed to delete orphan blob", zap.String("key", key), zap.Error(err))
				continue
			}
			removed++
			metrics.OrphanBlobsSwept.Inc()
		}
	}
	return removed, nil
}
