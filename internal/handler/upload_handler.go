package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ossgate/internal/domain"
	"ossgate/internal/middleware"
	"ossgate/internal/service"
)

// multipartOverhead covers boundaries and form fields around the files.
const multipartOverhead = 1 << 20

// AvatarResponse is returned after an avatar upload.
type AvatarResponse struct {
	URL     string `json:"url"`
	OSSPath string `json:"oss_path"`
}

// PropertyImageResponse is returned for each uploaded property image.
type PropertyImageResponse struct {
	ImageID   string `json:"image_id"`
	OSSPath   string `json:"oss_path"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
	MimeType  string `json:"mime_type"`
	SortOrder int    `json:"sort_order"`
}

// UploadHandler relays multipart uploads to object storage.
type UploadHandler struct {
	uploads         service.UploadService
	avatarBodyLimit int64
	imageBodyLimit  int64
	logger          *zap.Logger
}

// NewUploadHandler creates a new UploadHandler. Request bodies are capped at
// the per-file limit times the file count plus multipart overhead.
func NewUploadHandler(uploads service.UploadService, avatarMaxBytes, imageMaxBytes int64, maxImages int, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploads:         uploads,
		avatarBodyLimit: avatarMaxBytes + multipartOverhead,
		imageBodyLimit:  imageMaxBytes*int64(maxImages) + multipartOverhead,
		logger:          logger,
	}
}

// Avatar handles POST /upload/avatar and POST /api/upload/avatar
func (h *UploadHandler) Avatar(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.avatarBodyLimit)
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		h.formError(c, err)
		return
	}
	defer func() { _ = file.Close() }()

	obj, err := h.uploads.UploadAvatar(c.Request.Context(), ownerID, service.UploadFile{File: file, Header: header})
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	RespondOK(c, AvatarResponse{URL: obj.URL, OSSPath: obj.OSSPath})
}

// PropertyImage handles POST /upload/property-image and POST /api/upload/property-image.
// A single file yields an object, several files an array.
func (h *UploadHandler) PropertyImage(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.imageBodyLimit)
	form, err := c.MultipartForm()
	if err != nil {
		h.formError(c, err)
		return
	}
	defer func() { _ = form.RemoveAll() }()

	headers := form.File["image"]
	if len(headers) == 0 {
		HandleError(c, h.logger, domain.ErrMissingFile)
		return
	}

	opts, ok := parsePropertyImageOptions(c, form)
	if !ok {
		return
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll(files)
			HandleError(c, h.logger, err)
			return
		}
		files = append(files, service.UploadFile{File: f, Header: fh})
	}
	defer closeAll(files)

	images, err := h.uploads.UploadPropertyImages(c.Request.Context(), ownerID, files, opts)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	resp := make([]PropertyImageResponse, len(images))
	for i, img := range images {
		resp[i] = PropertyImageResponse{
			ImageID:   img.ID,
			OSSPath:   img.OSSPath,
			URL:       img.URL,
			IsPrimary: img.IsPrimary,
			MimeType:  img.MimeType,
			SortOrder: img.SortOrder,
		}
	}
	if len(resp) == 1 {
		RespondOK(c, resp[0])
		return
	}
	RespondOK(c, resp)
}

func (h *UploadHandler) formError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		RespondError(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
		return
	}
	HandleError(c, h.logger, domain.ErrMissingFile)
}

func parsePropertyImageOptions(c *gin.Context, form *multipart.Form) (service.PropertyImageOptions, bool) {
	var opts service.PropertyImageOptions

	if v := formValue(form, "is_primary"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FIELD", "is_primary must be a boolean")
			return opts, false
		}
		opts.IsPrimary = &b
	}
	if v := formValue(form, "sort_order"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			RespondError(c, http.StatusBadRequest, "INVALID_FIELD", "sort_order must be a non-negative integer")
			return opts, false
		}
		opts.SortOrder = &n
	}
	return opts, true
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func closeAll(files []service.UploadFile) {
	for _, f := range files {
		_ = f.File.Close()
	}
}
