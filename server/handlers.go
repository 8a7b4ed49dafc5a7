package server

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"docsift/internal/models"
	"docsift/internal/types"
)

const maxUploadBytes = 32 << 20

type queryRequest struct {
	Query      string `json:"query"`
	DocumentID string `json:"document_id"`
}

type uploadResponse struct {
	Status     string   `json:"status"`
	DocumentID string   `json:"document_id"`
	Index      string   `json:"index"`
	Records    int      `json:"records"`
	Failed     []int    `json:"failed_records,omitempty"`
	Errors     []string `json:"record_errors,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	mode := r.FormValue("mode")
	if mode == "" {
		mode = "text"
	}

	s.logger.Debug("upload request",
		zap.String("filename", header.Filename), zap.String("mode", mode))

	var result *models.IngestResult
	switch mode {
	case "text":
		result, err = s.ingestor.IngestText(r.Context(), content, header.Filename)
	case "tabular":
		result, err = s.ingestor.IngestTabular(r.Context(), content, header.Filename)
	default:
		s.respondError(w, http.StatusBadRequest, "mode must be \"text\" or \"tabular\"")
		return
	}
	if err != nil {
		s.respondTaxonomyError(w, "ingestion failed", err)
		return
	}

	resp := uploadResponse{
		Status:     "ok",
		DocumentID: result.DocumentID,
		Index:      result.IndexName,
		Records:    result.Records,
	}
	for _, o := range result.Failed() {
		resp.Failed = append(resp.Failed, o.Record)
		resp.Errors = append(resp.Errors, o.Err.Error())
	}
	s.respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.logger.Debug("query request", zap.String("document_id", req.DocumentID))

	answer, err := s.answerer.Answer(r.Context(), req.Query, req.DocumentID)
	if err != nil {
		s.respondTaxonomyError(w, "query failed", err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"answer": answer,
	})
}

func (s *Server) handleStructuredQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.logger.Debug("structured query request", zap.String("document_id", req.DocumentID))

	result, err := s.answerer.RunStructuredQuery(r.Context(), req.Query, req.DocumentID)
	if err != nil {
		s.respondTaxonomyError(w, "structured query failed", err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"columns": result.Columns,
		"rows":    result.Rows,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondTaxonomyError maps the error taxonomy onto HTTP: input errors carry
// their own message and a 400; collaborator failures are logged with detail
// and surfaced as a generic 500.
func (s *Server) respondTaxonomyError(w http.ResponseWriter, generic string, err error) {
	if types.IsInputError(err) {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error(generic, zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, generic)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"status": "error", "error": message})
}
