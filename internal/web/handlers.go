package web

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/fileconv/internal/core"
	"github.com/JonMunkholm/fileconv/internal/web/templates"
)

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := templates.UploadPage(templates.UploadPageData{
		MaxFileSize: s.cfg.Upload.MaxFileSize,
		MaxFiles:    s.cfg.Upload.MaxFiles,
	})
	templ.Handler(page).ServeHTTP(w, r)
}

// handleUpload stores the submitted files and redirects to their batch page.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	batchID, _, err := s.storeUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/batch/"+url.PathEscape(batchID), http.StatusSeeOther)
}

// handleBatchPage evaluates every file of a batch with the options in the
// query string and renders one panel per file in upload order.
func (s *Server) handleBatchPage(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	query := r.URL.Query()

	optsByID := make(map[string]core.Options)
	optErrs := make(map[string]error)
	optionsFor := func(info core.FileInfo) core.Options {
		opts, err := optionsFromValues(query, info.ID+".")
		if err != nil {
			optErrs[info.ID] = err
		}
		optsByID[info.ID] = opts
		return opts
	}

	ctx := WithRequestMetadata(r.Context(), r)
	infos, items, err := s.service.EvaluateBatch(ctx, batchID, optionsFor)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	view := templates.BatchView{BatchID: batchID, Files: make([]templates.FileView, len(infos))}
	for i, info := range infos {
		fv := templates.FileView{Info: info, Options: optsByID[info.ID]}

		runErr := items[i].Err
		if optErr, ok := optErrs[info.ID]; ok {
			runErr = optErr
		}
		if runErr != nil {
			msg := core.MapError(runErr)
			fv.Error = &msg
		} else {
			fv.Result = items[i].Result
			fv.DownloadURL, fv.HeatmapURL, fv.BarChartURL = fileURLs(info.ID, fv.Options, fv.Result)
		}
		view.Files[i] = fv
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.BatchPage(view).Render(r.Context(), w); err != nil {
		slog.ErrorContext(r.Context(), "render batch page", "batch_id", batchID, "error", err)
	}
}

// handleHealth reports liveness with store and limiter status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":  "ok",
		"service": s.service.Status(),
	})
}

// storeUpload streams the multipart body part by part, enforcing the file
// count and per-file size limits, and stores the files as one batch.
func (s *Server) storeUpload(w http.ResponseWriter, r *http.Request) (string, []core.FileInfo, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	maxFiles := s.cfg.Upload.MaxFiles
	r.Body = http.MaxBytesReader(w, r.Body, maxSize*int64(maxFiles)+1<<20)

	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, fmt.Errorf("no files uploaded: %w", core.ErrEmptyFile)
	}

	var files []core.File
	var total int64
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("read upload: %w", err)
		}

		name := part.FileName()
		if name == "" || (part.FormName() != "files" && part.FormName() != "file") {
			part.Close()
			continue
		}
		if len(files) == maxFiles {
			part.Close()
			return "", nil, fmt.Errorf("%w: at most %d per upload", core.ErrTooManyFiles, maxFiles)
		}
		if _, err := core.FormatFromName(name); err != nil {
			part.Close()
			return "", nil, err
		}

		cr := core.NewCountingReader(io.LimitReader(part, maxSize+1))
		data, err := io.ReadAll(cr)
		part.Close()
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", name, err)
		}
		if cr.BytesRead > maxSize {
			return "", nil, fmt.Errorf("%s: %w (limit %d bytes)", name, core.ErrFileTooLarge, maxSize)
		}

		files = append(files, core.File{Name: name, Data: data})
		total += cr.BytesRead
	}

	ctx := WithRequestMetadata(r.Context(), r)
	batchID, infos, err := s.service.Upload(ctx, files)
	if err != nil {
		return "", nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveUpload(len(files), total)
	}
	return batchID, infos, nil
}

// fileURLs builds the download and chart links for a file panel. Chart
// links are empty when the corresponding view is off.
func fileURLs(fileID string, opts core.Options, res *core.Result) (download, heatmap, bar string) {
	base := "/api/files/" + url.PathEscape(fileID)
	qs := optionValues(opts).Encode()

	download = base + "/download?" + qs
	if res.Correlation != nil {
		heatmap = base + "/charts/correlation.svg?" + qs
	}
	if res.Chart != nil {
		bar = base + "/charts/bar.svg?" + qs
	}
	return download, heatmap, bar
}
