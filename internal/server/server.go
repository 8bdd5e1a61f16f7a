package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/payment-plan/internal/listing"
	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/internal/session"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/output"
	"github.com/iwvelando/payment-plan/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// Options configures the handler. Zero values fall back to the defaults.
type Options struct {
	MaxUploadSize int64
	Version       string
	Store         *session.Store
	Listing       *listing.Client
	// Profile is the parsing profile for uploads that do not name one.
	Profile string
	// DefaultPlan is shown when a request does not ask for a plan.
	DefaultPlan schedule.Scenario
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	store         *session.Store
	listing       *listing.Client
	profile       string
	defaultPlan   schedule.Scenario
}

// NewHandler constructs the HTTP handler that serves the web UI and the
// payment plan API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}
	if opts.Store == nil {
		opts.Store = session.NewStore(logger)
	}
	if opts.Listing == nil {
		opts.Listing = listing.NewClient(logger, listing.Options{})
	}
	if opts.Profile == "" {
		opts.Profile = constants.ProfileAuto
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: opts.MaxUploadSize,
		version:       trimmedVersion,
		store:         opts.Store,
		listing:       opts.Listing,
		profile:       opts.Profile,
		defaultPlan:   opts.DefaultPlan,
	}

	mux := http.NewServeMux()

	// Session schedule: upload, view, edit, discard
	mux.HandleFunc("/api/schedule", h.handleSchedule)

	// Evenly split schedule from parameters
	mux.HandleFunc("/api/schedule/generate", h.handleGenerate)

	// File download of the session schedule
	mux.HandleFunc("/api/schedule/export", h.handleExport)

	// Vehicle listing lookup
	mux.HandleFunc("/api/listing", h.handleListing)

	// Plan names and labels for the plan selector
	mux.HandleFunc("/api/plans", h.handlePlans)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

type scheduleResponse struct {
	SessionID    string                         `json:"sessionId"`
	View         schedule.View                  `json:"view"`
	Dates        []projectedRow                 `json:"dates"`
	Rows         []schedule.Row                 `json:"rows"`
	Summary      string                         `json:"summary"`
	Profile      string                         `json:"profile,omitempty"`
	Warnings     []schedule.CellCoercionWarning `json:"warnings,omitempty"`
	Absent       []string                       `json:"absentColumns,omitempty"`
	MissingRatio float64                        `json:"missingRatio"`
	CSV          string                         `json:"csv"`
	Duration     string                         `json:"duration"`
}

type projectedRow struct {
	No     int               `json:"installmentNo"`
	Min    schedule.NullDate `json:"minimum"`
	OnTime schedule.NullDate `json:"onTime"`
	Max    schedule.NullDate `json:"maximum"`
}

type editRequest struct {
	Rows []schedule.Row `json:"rows"`
}

type generateRequest struct {
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	InstallmentCount int             `json:"installmentCount"`
	FirstPaymentDate string          `json:"firstPaymentDate"`
	IntervalMonths   int             `json:"intervalMonths"`
}

type listingRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleUpload(w, r)
	case http.MethodGet:
		h.handleView(w, r)
	case http.MethodPut:
		h.handleEdit(w, r)
	case http.MethodDelete:
		h.handleDiscard(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpload"
	start := time.Now()

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing payment plan file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read payment plan: %v", err), op)
		return
	}

	profile := strings.TrimSpace(r.FormValue("profile"))
	if profile == "" {
		profile = h.profile
	}
	if err := validation.ValidateProfile(profile); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	plan, err := h.plan(r.FormValue("plan"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	// A failed parse leaves the session's current schedule in place.
	res, err := schedule.Parse(buf.Bytes(), profile)
	if err != nil {
		h.respondParseError(w, err, op)
		return
	}
	schedule.LogResult(h.logger, op, res)

	id := h.ensureSession(w, r)
	h.store.Put(id, res.Schedule)

	resp, err := h.buildResponse(id, res.Schedule, plan, start)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	resp.Profile = res.Profile.Name
	resp.Warnings = res.Table.Warnings
	resp.Absent = res.Table.AbsentColumns()
	resp.MissingRatio = res.Table.MissingRatio()

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleView(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleView"
	start := time.Now()

	plan, err := h.plan(r.URL.Query().Get("plan"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	id, sched, ok := h.current(r)
	if !ok {
		h.respondErrorWithOp(w, http.StatusNotFound, "no payment plan loaded for this session", op)
		return
	}

	resp, err := h.buildResponse(id, sched, plan, start)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleEdit replaces the session's rows with the edited rows as sent. The
// metadata is kept.
func (h *handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEdit"
	start := time.Now()

	id, sched, ok := h.current(r)
	if !ok {
		h.respondErrorWithOp(w, http.StatusNotFound, "no payment plan loaded for this session", op)
		return
	}

	var payload editRequest
	if !h.decodeJSON(w, r, &payload, "rows", op) {
		return
	}

	plan, err := h.plan(r.URL.Query().Get("plan"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	sched.ReplaceRows(payload.Rows)
	h.store.Put(id, sched)

	h.logger.Info("schedule edited",
		zap.String("op", op),
		zap.Int("rows", len(payload.Rows)),
	)

	resp, err := h.buildResponse(id, sched, plan, start)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if id := sessionID(r); session.Valid(id) {
		h.store.Delete(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGenerate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	var payload generateRequest
	if !h.decodeJSON(w, r, &payload, "parameters", op) {
		return
	}

	params := schedule.GenerateParams{
		TotalAmount:      payload.TotalAmount,
		InstallmentCount: payload.InstallmentCount,
		IntervalMonths:   payload.IntervalMonths,
	}
	if strings.TrimSpace(payload.FirstPaymentDate) != "" {
		first, err := datetime.ParseDate(payload.FirstPaymentDate)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest,
				fmt.Sprintf("invalid first payment date: %v", err), op)
			return
		}
		params.FirstPaymentDate = first
	}

	sched, err := schedule.Generate(params)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	id := h.ensureSession(w, r)
	h.store.Put(id, sched)

	h.logger.Info("schedule generated",
		zap.String("op", op),
		zap.Int("installments", params.InstallmentCount),
		zap.Int("intervalMonths", params.IntervalMonths),
	)

	resp, err := h.buildResponse(id, sched, schedule.OnTime, start)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = constants.OutputFormatCSV
	}
	if err := validation.ValidateExportFormat(format); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	_, sched, ok := h.current(r)
	if !ok {
		h.respondErrorWithOp(w, http.StatusNotFound, "no payment plan loaded for this session", op)
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	var err error
	if format == constants.OutputFormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = output.WriteXLSX(&buf, sched)
	} else {
		err = output.WriteCSV(&buf, sched)
	}
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to export payment plan: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payment-plan.%s"`, format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write export", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleListing(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListing"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload listingRequest
	if !h.decodeJSON(w, r, &payload, "request", op) {
		return
	}

	l, err := h.listing.Fetch(r.Context(), payload.URL)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, listing.ErrInvalidURL) {
			status = http.StatusBadRequest
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, l)
}

type planOption struct {
	Name  schedule.Scenario `json:"name"`
	Label string            `json:"label"`
}

func (h *handler) handlePlans(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	plans := make([]planOption, 0, len(schedule.Scenarios()))
	for _, sc := range schedule.Scenarios() {
		plans = append(plans, planOption{Name: sc, Label: sc.Label()})
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"plans":   plans,
		"default": h.defaultPlan,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) buildResponse(id string, sched *schedule.Schedule, plan schedule.Scenario, start time.Time) (scheduleResponse, error) {
	csvText, err := output.CsvString(sched)
	if err != nil {
		return scheduleResponse{}, fmt.Errorf("failed to render csv: %w", err)
	}

	view := schedule.Select(sched, plan)
	projected := schedule.Project(sched)
	dates := make([]projectedRow, len(projected))
	for i, p := range projected {
		dates[i] = projectedRow{No: sched.Rows[i].No, Min: p.Min, OnTime: p.OnTime, Max: p.Max}
	}

	return scheduleResponse{
		SessionID: id,
		View:      view,
		Dates:     dates,
		Rows:      sched.Rows,
		Summary:   view.Summary(),
		CSV:       csvText,
		Duration:  time.Since(start).String(),
	}, nil
}

func (h *handler) plan(value string) (schedule.Scenario, error) {
	if strings.TrimSpace(value) == "" {
		return h.defaultPlan, nil
	}
	return schedule.ParseScenario(value)
}

// current returns the session's schedule, if any.
func (h *handler) current(r *http.Request) (string, *schedule.Schedule, bool) {
	id := sessionID(r)
	if !session.Valid(id) {
		return "", nil, false
	}
	sched, ok := h.store.Get(id)
	return id, sched, ok
}

// ensureSession returns the request's session id, opening a new session when
// it has none, and echoes the id back in a header and a cookie.
func (h *handler) ensureSession(w http.ResponseWriter, r *http.Request) string {
	id := sessionID(r)
	if !session.Valid(id) {
		id = h.store.Create()
	}
	w.Header().Set(constants.SessionHeader, id)
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(constants.SessionHeader)); id != "" {
		return id
	}
	if c, err := r.Cookie(constants.SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func (h *handler) respondParseError(w http.ResponseWriter, err error, op string) {
	var headerErr *schedule.MalformedHeaderError
	var tableErr *schedule.MalformedTableError
	if errors.As(err, &headerErr) || errors.As(err, &tableErr) {
		h.logger.Error("payment plan rejected",
			zap.String("op", op),
			zap.Int("status", http.StatusUnprocessableEntity),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Hint: schedule.FormatHint})
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
}

// decodeJSON reads a JSON request body no larger than the upload limit. It
// writes the error response and returns false when the body is unusable.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, what, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxUploadSize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode %s: %v", what, err), op)
		return false
	}
	return true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("payment plan request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
