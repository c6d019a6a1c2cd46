package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gabriel-vasile/mimetype"

	"github.com/sujiiiiit/collabhub-backend/internal/model"
)

// ResumeField is the only multipart file field accepted by ResumeIntake.
const ResumeField = "resume"

const pdfMIME = "application/pdf"

type resumeKey struct{}

// ResumeFromContext returns the résumé accepted by ResumeIntake, or nil when
// the request carried no file.
func ResumeFromContext(ctx context.Context) *model.Resume {
	r, _ := ctx.Value(resumeKey{}).(*model.Resume)
	return r
}

// ResumeIntake parses a multipart request and accepts at most one PDF under
// the "resume" field.
//
// A part is a PDF when its declared Content-Type is application/pdf AND its
// bytes sniff as PDF; a renamed executable with a forged header is refused.
// The whole body is capped at maxBytes and held in memory, so the handler
// can read the other form values with r.FormValue as usual.
//
// Rejections are written as {"error": "..."} and the handler never runs.
// A request without any file passes through untouched.
func ResumeIntake(maxBytes int64, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			if err := r.ParseMultipartForm(maxBytes); err != nil {
				var tooLarge *http.MaxBytesError
				switch {
				case errors.Is(err, http.ErrNotMultipart):
					next.ServeHTTP(w, r)
				case errors.As(err, &tooLarge):
					rejectUpload(w, "Resume file is too large")
				default:
					logger.Warn("malformed multipart body", slog.String("error", err.Error()))
					rejectUpload(w, "Malformed multipart body")
				}
				return
			}
			defer r.MultipartForm.RemoveAll()

			for field, files := range r.MultipartForm.File {
				if field != ResumeField || len(files) > 1 {
					rejectUpload(w, "Unexpected field")
					return
				}
			}

			files := r.MultipartForm.File[ResumeField]
			if len(files) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			fh := files[0]
			if fh.Header.Get("Content-Type") != pdfMIME {
				rejectUpload(w, "Only PDF files are allowed")
				return
			}

			f, err := fh.Open()
			if err != nil {
				logger.Error("opening uploaded resume", slog.String("error", err.Error()))
				rejectUpload(w, "Malformed multipart body")
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				logger.Error("reading uploaded resume", slog.String("error", err.Error()))
				rejectUpload(w, "Malformed multipart body")
				return
			}

			if !mimetype.Detect(data).Is(pdfMIME) {
				rejectUpload(w, "Only PDF files are allowed")
				return
			}

			resume := &model.Resume{Data: data, ContentType: pdfMIME, Filename: fh.Filename}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), resumeKey{}, resume)))
		})
	}
}

func rejectUpload(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
