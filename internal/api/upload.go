package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"resume-folio/internal/db"
	"resume-folio/internal/helper"
	"resume-folio/internal/models"
	"resume-folio/internal/parser"
	"resume-folio/internal/report"
)

// multipartOverhead is room for form fields and part headers on top of the file.
const multipartOverhead = 1 << 20

const unsupportedMessage = "Please upload a PDF or Word document (.pdf, .doc, .docx)"

type UploadResponse struct {
	PortfolioID   string               `json:"portfolioId,omitempty"`
	Name          string               `json:"name"`
	Profile       models.ParsedProfile `json:"profile"`
	LowConfidence bool                 `json:"lowConfidence"`
	Warnings      []string             `json:"warnings"`
	Pages         int                  `json:"pages"`
	Summary       string               `json:"summary"`
}

func handleUpload(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := hlog.FromRequest(r)
		r.Body = http.MaxBytesReader(w, r.Body, deps.MaxUploadBytes+multipartOverhead)
		defer r.Body.Close()

		if err := r.ParseMultipartForm(deps.MaxUploadBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httpError(w, http.StatusRequestEntityTooLarge, "invalid_request_error", "File size exceeds %s limit", sizeLabel(deps.MaxUploadBytes))
				return
			}
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid multipart form: %v", err)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "file is required")
			return
		}
		defer file.Close()

		if header.Size > deps.MaxUploadBytes {
			httpError(w, http.StatusRequestEntityTooLarge, "invalid_request_error", "File size exceeds %s limit", sizeLabel(deps.MaxUploadBytes))
			return
		}
		docType, ok := uploadDocType(header)
		if !ok {
			httpError(w, http.StatusUnsupportedMediaType, "invalid_request_error", unsupportedMessage)
			return
		}

		dryRun, _ := strconv.ParseBool(r.FormValue("dry_run"))
		dryRun = dryRun || deps.Store == nil
		userID := strings.TrimSpace(r.FormValue("user_id"))
		if !dryRun && userID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "user_id is required")
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "failed to read file: %v", err)
			return
		}

		result, err := deps.Parser.Parse(r.Context(), models.NewRawDocument(data, docType.MimeType(), header.Filename))
		if err != nil {
			writeParseError(w, err)
			return
		}

		name := strings.TrimSpace(r.FormValue("name"))
		if name == "" {
			name = helper.FileStem(header.Filename)
		}
		resp := UploadResponse{
			Name:          name,
			Profile:       result.Profile,
			LowConfidence: result.LowConfidence,
			Warnings:      result.Warnings,
			Pages:         result.Pages,
			Summary:       report.Summary(result),
		}
		if resp.Warnings == nil {
			resp.Warnings = []string{}
		}

		if !dryRun {
			p := &db.Portfolio{UserID: userID, Name: name, ResumeData: result.Profile}
			if err := deps.Store.CreatePortfolio(r.Context(), p); err != nil {
				logger.Error().Err(err).Msg("save portfolio")
				httpError(w, http.StatusInternalServerError, "api_error", "failed to save portfolio")
				return
			}
			resp.PortfolioID = p.ID
			indexProfile(r.Context(), deps, p)
		}

		logger.Info().
			Str("file", header.Filename).
			Str("type", string(docType)).
			Str("portfolio_id", resp.PortfolioID).
			Bool("low_confidence", result.LowConfidence).
			Msg("resume uploaded")
		writeJSON(w, http.StatusOK, resp)
	}
}

// uploadDocType trusts the part's content type when it names an accepted
// format and falls back to the file extension otherwise.
func uploadDocType(header *multipart.FileHeader) (models.DocType, bool) {
	if t, ok := models.ParseDocType(header.Header.Get("Content-Type")); ok {
		return t, true
	}
	return models.DocTypeFromFilename(header.Filename)
}

func writeParseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		httpError(w, http.StatusUnsupportedMediaType, "invalid_request_error", unsupportedMessage)
	case errors.Is(err, parser.ErrCorruptDocument):
		httpError(w, http.StatusUnprocessableEntity, "invalid_request_error", "The document could not be read: %v", err)
	case errors.Is(err, context.DeadlineExceeded):
		httpError(w, http.StatusGatewayTimeout, "api_error", "parsing timed out")
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "failed to parse resume: %v", err)
	}
}

func indexProfile(ctx context.Context, deps Deps, p *db.Portfolio) {
	if deps.Index == nil {
		return
	}
	if err := deps.Index.Add(ctx, p.ID, p.UserID, p.Name, p.ResumeData); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("portfolio_id", p.ID).Msg("index profile")
	}
}

func sizeLabel(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return strconv.FormatInt(n>>20, 10) + "MB"
	}
	return strconv.FormatInt(n>>10, 10) + "KB"
}
