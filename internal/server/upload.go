package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/records-extractor/constants"
	"github.com/joseph-ayodele/records-extractor/internal/common"
	"github.com/joseph-ayodele/records-extractor/internal/entity"
	"github.com/joseph-ayodele/records-extractor/internal/export"
	"github.com/joseph-ayodele/records-extractor/internal/pipeline"
)

const (
	msgNoFile        = "No file uploaded."
	msgFailed        = "Failed to process the file."
	msgFileTooLarge  = "File too large."
	uploadFieldName  = "file"
	formatQueryParam = "format"
)

type uploadResponse struct {
	Success bool `json:"success"`
	entity.Records
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := common.RequestIDFromContext(ctx)
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.Warn("http.upload.too_large", "req_id", reqID, "limit", tooLarge.Limit)
			_ = writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Message: msgFileTooLarge})
			return
		}
		s.logger.Warn("http.upload.no_file", "req_id", reqID, "error", err)
		_ = writeJSON(w, http.StatusBadRequest, errorResponse{Message: msgNoFile})
		return
	}
	defer file.Close()

	mimeType := uploadMIME(header)
	s.logger.Info("http.upload.received",
		"req_id", reqID,
		"filename", header.Filename,
		"mime_type", mimeType,
		"size", header.Size,
	)

	res, err := s.processor.Handle(ctx, pipeline.Incoming{
		Filename: header.Filename,
		MIMEType: mimeType,
		Body:     file,
	})
	if err != nil {
		if errors.Is(err, common.ErrNoFile) {
			_ = writeJSON(w, http.StatusBadRequest, errorResponse{Message: msgNoFile})
			return
		}
		s.logger.Error("http.upload.failed", "req_id", reqID, "filename", header.Filename, "error", err)
		_ = writeJSON(w, http.StatusInternalServerError, errorResponse{Message: msgFailed, Error: err.Error()})
		return
	}

	if strings.EqualFold(r.URL.Query().Get(formatQueryParam), "xlsx") {
		s.writeWorkbook(w, r, header.Filename, res.Records)
		return
	}

	if err := writeJSON(w, http.StatusOK, uploadResponse{Success: true, Records: res.Records}); err != nil {
		s.logger.Error("http.upload.write_failed", "req_id", reqID, "error", err)
		return
	}
	s.logger.Debug("pipeline.stage", "req_id", reqID, "stage", constants.StageResponded, "strategy", res.Strategy)
}

func (s *Server) writeWorkbook(w http.ResponseWriter, r *http.Request, filename string, recs entity.Records) {
	reqID := common.RequestIDFromContext(r.Context())
	b, err := s.exporter.RecordsXLSX(recs)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "req_id", reqID, "error", err)
		_ = writeJSON(w, http.StatusInternalServerError, errorResponse{Message: msgFailed, Error: err.Error()})
		return
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	w.Header().Set("Content-Type", export.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+"-records.xlsx"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		s.logger.Error("http.upload.write_failed", "req_id", reqID, "error", err)
		return
	}
	s.logger.Debug("pipeline.stage", "req_id", reqID, "stage", constants.StageResponded, "format", "xlsx")
}

// uploadMIME returns the part's declared content type, or "" when the client sent none.
// Classification runs on the declared type only.
func uploadMIME(h *multipart.FileHeader) string {
	return strings.TrimSpace(h.Header.Get("Content-Type"))
}
