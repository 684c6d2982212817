package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-travel-service/http/controller/dto"
	"github.com/tnqbao/gau-travel-service/infra"
	"github.com/tnqbao/gau-travel-service/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func (ctrl *Controller) UploadImage(c *gin.Context) {
	userID, ok := ctrl.currentUserID(c, "Image")
	if !ok {
		return
	}

	namespace, err := magazineNamespace(c.PostForm("magazine"), c.PostForm("folder"))
	if err != nil {
		ctrl.respondError(c, "Image", err)
		return
	}

	stored, ok := ctrl.storeImage(c, userID, namespace, utils.BlobCategoryImages)
	if !ok {
		return
	}
	utils.JSON201(c, stored)
}

func (ctrl *Controller) ListImages(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Image")
	if !ok {
		return
	}

	namespace, err := magazineNamespace(c.Query("magazine"), c.Query("folder"))
	if err != nil {
		ctrl.respondError(c, "Image", err)
		return
	}
	dir, err := utils.ResolveBlobDir(userID, namespace, utils.BlobCategoryImages)
	if err != nil {
		ctrl.respondError(c, "Image", err)
		return
	}

	blobs, err := ctrl.Infra.Storage.ListObjects(ctx, dir+"/")
	if err != nil {
		ctrl.respondError(c, "Image", err)
		return
	}

	// only direct children; nested magazine folders are listed separately
	names := make([]string, 0, len(blobs))
	for _, blob := range blobs {
		if path.Dir(blob.Path) == dir {
			names = append(names, blob.Name)
		}
	}

	utils.JSON200(c, gin.H{"images": names, "count": len(names)})
}

func (ctrl *Controller) GetImageURL(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Image")
	if !ok {
		return
	}

	key, err := ctrl.imageKey(c, userID)
	if err != nil {
		ctrl.respondError(c, "Image", err)
		return
	}

	exists, err := ctrl.Infra.Storage.ObjectExists(ctx, key)
	if err != nil {
		ctrl.respondError(c, "Image", err)
		return
	}
	if !exists {
		utils.JSON404(c, "Image not found")
		return
	}

	expiry := ctrl.Config.EnvConfig.Minio.PresignExpiry
	url, err := ctrl.Infra.Storage.PresignedGetURL(ctx, key, expiry)
	if err != nil {
		ctrl.respondError(c, "Image", err)
		return
	}
	utils.JSON200(c, dto.StoredBlobResponseDTO{Path: key, URL: url, ExpiresIn: int64(expiry.Seconds())})
}

func (ctrl *Controller) DeleteImage(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Image")
	if !ok {
		return
	}

	key, err := ctrl.imageKey(c, userID)
	if err != nil {
		ctrl.respondError(c, "Image", err)
		return
	}

	if err := ctrl.Infra.Storage.DeleteObject(ctx, key); err != nil {
		ctrl.respondError(c, "Image", err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Image] Deleted %s", key)
	utils.JSON200(c, gin.H{"message": "Image deleted", "path": key})
}

func (ctrl *Controller) imageKey(c *gin.Context, userID string) (string, error) {
	name, err := pathSegment("name", c.Query("name"))
	if err != nil {
		return "", err
	}
	namespace, err := magazineNamespace(c.Query("magazine"), c.Query("folder"))
	if err != nil {
		return "", err
	}
	return utils.ResolveBlobPath(userID, namespace, utils.BlobCategoryImages, name)
}

// storeImage reads the multipart "file" field, runs it through content safety,
// allocates a free name under the resolved directory and uploads it. On any
// failure it writes the response itself and returns false.
func (ctrl *Controller) storeImage(c *gin.Context, userID string, namespace []string, category utils.BlobCategory) (*dto.StoredBlobResponseDTO, bool) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Image] Failed to get file from form data")
		utils.JSON400(c, "Failed to get file: "+err.Error())
		return nil, false
	}

	maxSize := ctrl.Config.EnvConfig.Upload.MaxImageSize
	if fileHeader.Size > maxSize {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Image] File '%s' too large: %d bytes", fileHeader.Filename, fileHeader.Size)
		utils.JSON413(c, fmt.Sprintf("Image exceeds the %d byte limit", maxSize))
		return nil, false
	}

	filename, err := uploadFilename(fileHeader.Filename)
	if err != nil {
		ctrl.respondError(c, "Image", err)
		return nil, false
	}

	data, err := readFormFile(fileHeader)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Image] Failed to read upload: %v", err)
		utils.JSON400(c, "Failed to read file")
		return nil, false
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Image] Rejected '%s' with content type %s", filename, contentType)
		utils.JSON400(c, "File is not an image")
		return nil, false
	}

	scores, err := ctrl.Infra.ContentSafety.Classify(ctx, data)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Image] Content safety check failed: %v", err)
		if errors.Is(err, infra.ErrProviderUnavailable) {
			utils.JSON503(c, "Content safety service temporarily unavailable")
		} else {
			utils.JSON502(c, "Content safety check failed")
		}
		return nil, false
	}
	if filtered := infra.FilteredCategories(scores, ctrl.Config.EnvConfig.ContentSafety.Threshold); len(filtered) > 0 {
		ctrl.Infra.Metrics.FilteredImages.Add(ctx, 1)
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Image] Filtered '%s' for user %s: %v", filename, userID, filtered)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "image filtered", "categories": filtered})
		return nil, false
	}

	stored, err := ctrl.putBlob(c, userID, namespace, category, filename, data, contentType)
	if err != nil {
		ctrl.respondError(c, "Image", err)
		return nil, false
	}
	stored.Scores = scores
	return stored, true
}

// putBlob uploads data under a free name in the resolved directory and returns
// its path with a presigned read URL.
func (ctrl *Controller) putBlob(c *gin.Context, userID string, namespace []string, category utils.BlobCategory, filename string, data []byte, contentType string) (*dto.StoredBlobResponseDTO, error) {
	ctx := c.Request.Context()

	dir, err := utils.ResolveBlobDir(userID, namespace, category)
	if err != nil {
		return nil, err
	}

	key := utils.AllocateUniqueName(func(candidate string) (bool, error) {
		return ctrl.Infra.Storage.ObjectExists(ctx, candidate)
	}, dir, filename)

	if err := ctrl.Infra.Storage.PutObject(ctx, key, data, contentType); err != nil {
		return nil, err
	}
	ctrl.Infra.Metrics.BlobUploads.Add(ctx, 1, metric.WithAttributes(attribute.String("category", string(category))))
	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Blob] Stored %s (%d bytes)", key, len(data))

	expiry := ctrl.Config.EnvConfig.Minio.PresignExpiry
	url, err := ctrl.Infra.Storage.PresignedGetURL(ctx, key, expiry)
	if err != nil {
		return nil, err
	}

	return &dto.StoredBlobResponseDTO{Path: key, URL: url, ExpiresIn: int64(expiry.Seconds())}, nil
}

func readFormFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// uploadFilename keeps only the last element of a client supplied name.
func uploadFilename(name string) (string, error) {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	return pathSegment("filename", name)
}

func pathSegment(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "." || value == ".." || value == "/" || strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("%w: invalid %s %q", utils.ErrValidation, field, value)
	}
	return value, nil
}

func magazineNamespace(magazine, folder string) ([]string, error) {
	magazine = strings.TrimSpace(magazine)
	folder = strings.TrimSpace(folder)
	if magazine == "" {
		if folder != "" {
			return nil, fmt.Errorf("%w: folder requires a magazine", utils.ErrValidation)
		}
		return nil, nil
	}
	if _, err := pathSegment("magazine", magazine); err != nil {
		return nil, err
	}
	if folder != "" {
		if _, err := pathSegment("folder", folder); err != nil {
			return nil, err
		}
	}
	return utils.MagazineNamespace(magazine, folder), nil
}
