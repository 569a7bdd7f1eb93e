package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/fieldops-app/internal/httpx"
	"github.com/diewo77/fieldops-app/internal/storage"
)

// presignTTL is how long an issued write URL stays usable.
const presignTTL = time.Hour

// UploadHandler issues pre-signed write URLs against the blob-store
// collaborator. It never touches object bytes itself.
type UploadHandler struct {
	blobs      storage.BlobStore
	publicBase string
	log        *zap.Logger
}

func NewUploadHandler(blobs storage.BlobStore, publicBase string, log *zap.Logger) *UploadHandler {
	return &UploadHandler{blobs: blobs, publicBase: strings.TrimSuffix(publicBase, "/"), log: log}
}

func (h *UploadHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload/presign", h.presign)
}

type presignRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

type presignResponse struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	FileName  string `json:"fileName"`
}

func (h *UploadHandler) presign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	if req.FileName == "" || req.FileType == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_error",
			map[string]string{"fileName": "required", "fileType": "required"})
		return
	}
	key := storage.ObjectKey(req.FileName)
	uploadURL, err := h.blobs.PresignPut(r.Context(), key, req.FileType, presignTTL)
	if err != nil {
		h.log.Error("presign failed", zap.String("objectKey", key), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, presignResponse{
		UploadURL: uploadURL,
		PublicURL: h.publicBase + "/" + key,
		FileName:  key,
	})
}
