package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/walis/inventory-uploader/internal/logging"
)

// Multipart form fields of the upload endpoints.
const (
	formFile          = "file"
	formColumnMapping = "column_mapping"
)

var errNoFile = errors.New("no file provided")

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Welcome to the Inventory Uploader API"})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"ping": "pong"})
}

// handleUpload ingests one multipart CSV upload of the given dataset kind.
// An optional column_mapping form field carries an explicit JSON mapping.
// The mapping-required diagnostic is a normal 200 response.
func (s *Server) handleUpload(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxSize := s.cfg.Upload.MaxFileSize
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)

		if err := r.ParseMultipartForm(maxSize); err != nil {
			s.respondError(w, r, invalidForm(err), "")
			return
		}

		file, header, err := r.FormFile(formFile)
		if err != nil {
			s.respondError(w, r, errNoFile, "")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			s.respondError(w, r, invalidForm(err), "")
			return
		}

		outcome, err := s.service.Ingest(r.Context(), kind, data, header.Filename, r.FormValue(formColumnMapping))
		if err != nil {
			s.respondError(w, r, err, "Failed to ingest data to warehouse")
			return
		}

		if outcome.NeedsMapping() {
			logging.FromContext(r.Context()).Info("upload needs column mapping",
				"kind", kind,
				"file", header.Filename,
				"missing", outcome.MappingRequired.MissingColumns,
			)
		}
		writeJSON(w, r, http.StatusOK, outcome.Body())
	}
}

func (s *Server) handleCalculateStockouts(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.CalculateStockouts(r.Context())
	if err != nil {
		s.respondError(w, r, err, "Failed to calculate stockouts")
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleGetStockouts(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.GetStockouts(r.Context())
	if err != nil {
		s.respondError(w, r, err, "Failed to retrieve stockouts")
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// invalidForm keeps a body-size violation recognisable and labels anything
// else as a malformed form.
func invalidForm(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("file too large: limit is %d bytes: %w", tooLarge.Limit, err)
	}
	return fmt.Errorf("invalid upload form: %w", err)
}
