package httpadapter

import (
	"errors"
	"net/http"
	"path"
	"strconv"

	"github.com/ishro/aura-pipeline/internal/core/domain"
	"github.com/ishro/aura-pipeline/internal/core/ports"
)

// multipartOverhead leaves room for multipart boundaries and form fields,
// which count against the body reader. The exact file-size rule belongs to
// the ingest use case.
const multipartOverhead = 1 << 20

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes+multipartOverhead)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "uploaded file exceeds the size limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(r.Context(), ports.UploadRequest{
		Filename:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		SizeBytes: fileHeader.Size,
		ClinicID:  r.FormValue("clinic_id"),
		PatientID: r.FormValue("patient_id"),
		Body:      file,
	})
	if rt.metrics != nil {
		rt.metrics.RecordUpload("api", fileHeader.Size, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"document_id": doc.ID,
		"status":      string(doc.Status),
	})
}

func (rt *Router) getDocumentLifecycle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	lifecycle, err := rt.reader.Lifecycle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lifecycle)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)
	status := domain.DocumentStatus(r.URL.Query().Get("status"))

	docs, total, err := rt.reader.List(r.Context(), page, pageSize, status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	if err := rt.ingest.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stageTriggers maps trigger path suffixes onto pipeline stages.
var stageTriggers = map[string]domain.Stage{
	"parse":     domain.StageParsing,
	"structure": domain.StageStructuring,
	"predict":   domain.StagePrediction,
}

func (rt *Router) triggerStage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	stage, ok := stageTriggers[path.Base(r.URL.Path)]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown stage trigger"})
		return
	}

	result, err := rt.runner.Run(r.Context(), id, stage)
	if rt.metrics != nil {
		rt.metrics.RecordStageRun("api", string(stage), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getStageResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	stage, err := domain.ParseStage(r.PathValue("stage"))
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := rt.reader.StageResult(r.Context(), id, stage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
