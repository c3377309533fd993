package handlers

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Johnhpure/meet/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// allowedExtensions lists the image types the form accepts.
var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// URLPrefix is where stored files are served back from.
const URLPrefix = "/uploads/"

type UploadHandler struct {
	dir      string
	maxBytes int64
	prom     *observability.Prom
	log      *slog.Logger
}

func NewUploadHandler(dir string, maxBytes int64, prom *observability.Prom, log *slog.Logger) *UploadHandler {
	return &UploadHandler{
		dir:      dir,
		maxBytes: maxBytes,
		prom:     prom,
		log:      log,
	}
}

// Upload stores one multipart file under a server-controlled name and
// returns its relative URL. The client never influences the stored name
// beyond the extension.
func (h *UploadHandler) Upload(ctx *gin.Context) {
	file, err := ctx.FormFile("file")

	if err != nil {
		h.rejected()
		RespondBadRequest(ctx, "please choose a file to upload")
		return
	}

	if h.maxBytes > 0 && file.Size > h.maxBytes {
		h.rejected()
		RespondBadRequest(ctx, "file is too large")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))

	if _, ok := allowedExtensions[ext]; !ok {
		h.rejected()
		RespondBadRequest(ctx, "only image files are allowed")
		return
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(h.dir, name)

	err = ctx.SaveUploadedFile(file, dst)

	if err != nil {
		if h.prom != nil {
			h.prom.UploadsTotal.WithLabelValues("error").Inc()
		}
		h.log.Error("could not store upload", "err", err, "dst", dst)
		RespondInternal(ctx, "could not store file")
		return
	}

	if h.prom != nil {
		h.prom.UploadsTotal.WithLabelValues("ok").Inc()
		h.prom.UploadBytes.Add(float64(file.Size))
	}

	RespondOK(ctx, gin.H{"url": URLPrefix + name}, "upload successful")
}

func (h *UploadHandler) rejected() {
	if h.prom != nil {
		h.prom.UploadsTotal.WithLabelValues("rejected").Inc()
	}
}
