package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/export"
	"github.com/ampco/intake-cli/internal/intake"
	"github.com/ampco/intake-cli/internal/model"
	"github.com/ampco/intake-cli/internal/stage"
	"github.com/ampco/intake-cli/internal/store"
)

func (h *handler) purchaseOrder(w http.ResponseWriter, r *http.Request) {
	name, pdf, ok := h.upload(w, r)
	if !ok {
		return
	}
	res, err := h.flows.PurchaseOrder(r.Context(), name, pdf, r.FormValue("salesperson"))
	respondFlow(w, res, err)
}

func (h *handler) photometric(w http.ResponseWriter, r *http.Request) {
	name, pdf, ok := h.upload(w, r)
	if !ok {
		return
	}
	res, err := h.flows.Photometric(r.Context(), name, pdf)
	respondFlow(w, res, err)
}

func (h *handler) weekly(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	res, err := h.flows.Weekly(r.Context(), req.Text)
	respondFlow(w, res, err)
}

// upload reads the multipart "file" field.
func (h *handler) upload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
			return "", nil, false
		}
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "expected multipart form")
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_FILE", "file is required")
		return "", nil, false
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FILE", "could not read file")
		return "", nil, false
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "EMPTY_FILE", "file is empty")
		return "", nil, false
	}
	return header.Filename, data, true
}

// respondFlow writes a flow result. Failed runs still carry their result so
// the caller sees the run id and failing stage.
func respondFlow(w http.ResponseWriter, res *intake.Result, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, res)
		return
	}
	status, code := stageStatus(err)
	if res == nil {
		zap.L().Error("api: flow failed before run was recorded", zap.Error(err))
		writeError(w, status, code, "internal error")
		return
	}
	writeEnvelope(w, status, Response{
		Data:  res,
		Error: &APIError{Code: code, Message: stage.Message(err)},
	})
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "run not found")
		return
	}
	if err != nil {
		zap.L().Error("api: get run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	filter, ok := runFilter(w, r)
	if !ok {
		return
	}
	runs, err := h.runs.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *handler) exportRuns(w http.ResponseWriter, r *http.Request) {
	filter, ok := runFilter(w, r)
	if !ok {
		return
	}
	runs, err := h.runs.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: export runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="runs.xlsx"`)
		err = export.WriteXLSX(w, runs)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="runs.csv"`)
		err = export.WriteCSV(w, runs)
	default:
		writeError(w, http.StatusBadRequest, "INVALID_FORMAT", "format must be xlsx or csv")
		return
	}
	if err != nil {
		zap.L().Error("api: write export", zap.Error(err))
	}
}

func runFilter(w http.ResponseWriter, r *http.Request) (store.RunFilter, bool) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Flow:   model.Flow(q.Get("flow")),
		Status: model.RunStatus(q.Get("status")),
	}
	for _, p := range []struct {
		key string
		dst *int
	}{{"limit", &filter.Limit}, {"offset", &filter.Offset}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_QUERY", p.key+" must be a non-negative integer")
			return filter, false
		}
		*p.dst = n
	}
	return filter, true
}
