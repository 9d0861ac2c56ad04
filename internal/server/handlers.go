package server

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime/types"

	"github.com/shahar-caura/plantid/internal/app"
	"github.com/shahar-caura/plantid/internal/intake"
	"github.com/shahar-caura/plantid/internal/plant"
	"github.com/shahar-caura/plantid/internal/provider/plantapi"
)

// Notices shown for locally resolved errors, keyed by the notice query value.
var notices = map[string]string{
	"too-large":    "Image too large. Maximum: 5MB.",
	"empty":        "The selected file is empty.",
	"no-selection": "Please select an image first.",
}

// maxUploadBytes bounds a /select request body. Files between the image
// limit and this bound are read and rejected as too large.
const maxUploadBytes = plant.MaxImageBytes + 1<<20

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int    `json:"uptime_seconds"`
	Model         string `json:"model,omitempty"`
}

type pageData struct {
	Description    template.HTML
	Notice         string
	Hover          bool
	PreviewVisible bool
	PreviewURL     template.URL
	Loading        bool
	ResultVisible  bool
	ScrollIntoView bool
	Result         template.HTML
	Version        uint64
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	snap := s.panes.Snapshot()
	// PreviewURL comes from intake.DataURL over sniffed content, never from input text.
	data := pageData{
		Description:    s.banner.HTML(),
		Notice:         notices[r.URL.Query().Get("notice")],
		Hover:          snap.Hover,
		PreviewVisible: snap.PreviewVisible,
		PreviewURL:     template.URL(snap.PreviewURL),
		Loading:        snap.Loading,
		ResultVisible:  snap.ResultVisible,
		ScrollIntoView: snap.Result.ScrollIntoView,
		Result:         snap.Result.HTML,
		Version:        snap.Version,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("rendering page", "err", err)
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			// Rejected before reaching the controller, so the old selection must go.
			s.controller.Remove()
			redirectNotice(w, r, "too-large")
			return
		}
		http.Error(w, "invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile(plantapi.FieldName)
	if err != nil {
		redirectNotice(w, r, "no-selection")
		return
	}
	_ = f.Close()

	var file types.File
	file.InitFromMultipart(header)
	if _, err := s.controller.Select(file); err != nil {
		switch {
		case errors.Is(err, intake.ErrTooLarge):
			redirectNotice(w, r, "too-large")
		case errors.Is(err, intake.ErrEmpty):
			redirectNotice(w, r, "empty")
		default:
			s.logger.Error("selecting upload", "err", err)
			http.Error(w, "could not read upload", http.StatusBadRequest)
		}
		return
	}
	redirectNotice(w, r, "")
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	s.controller.Remove()
	redirectNotice(w, r, "")
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	// The request outlives this handler; the page learns the result over SSE.
	if _, err := s.controller.Identify(context.WithoutCancel(r.Context())); err != nil {
		s.redirectError(w, r, err)
		return
	}
	redirectNotice(w, r, "")
}

func (s *Server) handleTestLocal(w http.ResponseWriter, r *http.Request) {
	if _, err := s.controller.TestLocal(context.WithoutCancel(r.Context())); err != nil {
		s.redirectError(w, r, err)
		return
	}
	redirectNotice(w, r, "")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, HealthResponse{
		Status:        "ok",
		Version:       s.version,
		UptimeSeconds: int(time.Since(s.startTime).Seconds()),
		Model:         s.banner.Model(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.panes.Snapshot())
}

func (s *Server) redirectError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, app.ErrNoSelection) {
		redirectNotice(w, r, "no-selection")
		return
	}
	s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func redirectNotice(w http.ResponseWriter, r *http.Request, notice string) {
	target := "/"
	if notice != "" {
		target += "?notice=" + notice
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
