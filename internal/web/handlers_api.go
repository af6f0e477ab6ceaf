package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/fileconv/internal/charts"
	"github.com/JonMunkholm/fileconv/internal/core"
)

// UploadResponse is returned by POST /api/files.
type UploadResponse struct {
	BatchID string          `json:"batch_id"`
	Files   []core.FileInfo `json:"files"`
}

// BatchItemResponse is one file of a batch pipeline response.
type BatchItemResponse struct {
	File   core.FileInfo  `json:"file"`
	Result *core.Result   `json:"result,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// newValidator reports field errors using JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	batchID, infos, err := s.storeUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadResponse{BatchID: batchID, Files: infos})
}

func (s *Server) handleAPIBatch(w http.ResponseWriter, r *http.Request) {
	infos, err := s.service.Batch(chi.URLParam(r, "batchID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, infos)
}

// handleAPIBatchPipeline runs one set of options over every file of a batch.
// Per-file failures are reported inline.
func (s *Server) handleAPIBatchPipeline(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts.Export = false

	ctx := WithRequestMetadata(r.Context(), r)
	infos, items, err := s.service.EvaluateBatch(ctx, chi.URLParam(r, "batchID"), func(core.FileInfo) core.Options {
		return opts
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]BatchItemResponse, len(infos))
	for i, info := range infos {
		out[i] = BatchItemResponse{File: info, Result: items[i].Result}
		if items[i].Err != nil {
			msg := core.MapError(items[i].Err)
			out[i].Error = &ErrorResponse{Error: msg.Message, Message: msg.Message, Action: msg.Action, Code: msg.Code}
		}
	}
	render.JSON(w, r, out)
}

func (s *Server) handleAPIFile(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.File(chi.URLParam(r, "fileID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

func (s *Server) handleAPIDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.Context(), chi.URLParam(r, "fileID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePipeline evaluates one file with a JSON options body. The result
// carries download metadata when export is requested but never the bytes.
func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Evaluate(ctx, chi.URLParam(r, "fileID"), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

// handleDownload exports the transformed table in the requested format.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromValues(r.URL.Query(), "")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts.Export = true

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Evaluate(ctx, chi.URLParam(r, "fileID"), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	dl := res.Download
	w.Header().Set("Content-Type", dl.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	if _, err := w.Write(dl.Data); err != nil {
		slog.WarnContext(r.Context(), "write download", "file", dl.FileName, "error", err)
	}
}

// handleChart renders the bar chart or correlation heatmap of a file as SVG.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromValues(r.URL.Query(), "")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	kind := chi.URLParam(r, "chart")
	switch kind {
	case "bar":
		opts.ShowChart = true
	case "correlation":
		opts.ShowCorrelation = true
	default:
		http.NotFound(w, r)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Evaluate(ctx, chi.URLParam(r, "fileID"), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var svg []byte
	if kind == "bar" {
		svg, err = charts.BarChartSVG(res.Chart)
	} else {
		svg, err = charts.HeatmapSVG(res.Correlation)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(svg); err != nil {
		slog.WarnContext(r.Context(), "write chart", "chart", kind, "error", err)
	}
}

// decodeOptions reads and validates a JSON options body. An empty body
// selects the defaults.
func (s *Server) decodeOptions(r *http.Request) (core.Options, error) {
	var opts core.Options
	if err := render.DecodeJSON(r.Body, &opts); err != nil && !errors.Is(err, io.EOF) {
		return core.Options{}, fmt.Errorf("%w: decode body: %v", core.ErrInvalidOptions, err)
	}
	if err := s.validate.Struct(opts); err != nil {
		return core.Options{}, fmt.Errorf("%w: %v", core.ErrInvalidOptions, err)
	}
	return opts, nil
}
