package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eugenenazirov/tuition-quoter/internal/calculator"
	"github.com/eugenenazirov/tuition-quoter/internal/proposal"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	formatJSON = "json"
	formatText = "text"
	formatXLSX = "xlsx"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler wires the calculator and proposal builder into HTTP handlers.
type Handler struct {
	calculator calculator.Calculator
	proposals  *proposal.Builder

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies. A nil builder
// is replaced by one over calc.
func NewHandler(calc calculator.Calculator, builder *proposal.Builder, opts ...HandlerOption) *Handler {
	if builder == nil {
		builder = proposal.NewBuilder(calc)
	}
	h := &Handler{
		calculator: calc,
		proposals:  builder,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListPackages(w http.ResponseWriter, r *http.Request) {
	_ = r
	packages := h.calculator.Packages()
	resp := packagesResponse{
		Packages:   make([]packageResponse, 0, len(packages)),
		ServiceFee: newMoney(h.calculator.ServiceFee()),
	}
	for _, p := range packages {
		resp.Packages = append(resp.Packages, newPackageResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	pkg := calculator.PackageType(chi.URLParam(r, "type"))
	info, ok := h.calculator.PackageDetails(pkg)
	if !ok {
		writeError(w, http.StatusNotFound, "Package not found", fmt.Sprintf("package %q does not exist", pkg))
		return
	}
	writeJSON(w, http.StatusOK, newPackageResponse(info))
}

func (h *Handler) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	_ = r
	known := proposal.KnownSubjects()
	resp := subjectsResponse{Subjects: make([]knownSubjectResponse, 0, len(known))}
	for _, s := range known {
		resp.Subjects = append(resp.Subjects, knownSubjectResponse{Key: s.Key, Name: s.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	result := h.calculator.ValidatePackage(toSubjects(req.Subjects), calculator.PackageType(req.PackageType))
	writeJSON(w, http.StatusOK, newValidationResponse(result))
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if !req.SessionHours.IsPositive() {
		writeError(w, http.StatusBadRequest, "Invalid request", "sessionHours must be greater than zero")
		return
	}
	if req.SessionHours.GreaterThan(proposal.MaxSessionHours) {
		writeError(w, http.StatusBadRequest, "Invalid request", fmt.Sprintf("sessionHours must not exceed %s", proposal.MaxSessionHours))
		return
	}

	pkg := calculator.PackageType(req.PackageType)
	subjects := toSubjects(req.Subjects)
	validation := h.calculator.ValidatePackage(subjects, pkg)

	breakdown, err := h.calculator.CalculatePackageCost(pkg, subjects, req.SessionHours)
	if err != nil {
		switch {
		case errors.Is(err, calculator.ErrUnknownPackage):
			writeError(w, http.StatusBadRequest, "Invalid package", err.Error(), "Use GET /api/packages to list available packages")
		case errors.Is(err, calculator.ErrInvalidSessionHours), errors.Is(err, calculator.ErrInvalidDaysPerWeek):
			writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}

	resp := quoteResponse{
		Validation: newValidationResponse(validation),
		Breakdown:  newBreakdownResponse(breakdown),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = formatJSON
	}
	if format != formatJSON && format != formatText && format != formatXLSX {
		writeError(w, http.StatusBadRequest, "Invalid format", fmt.Sprintf("format %q is not supported", format), "Use json, text or xlsx")
		return
	}

	var req proposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	domainReq, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	p, err := h.proposals.Build(domainReq)
	if err != nil {
		var verr *proposal.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:  "Invalid proposal",
				Errors: verr.Errors,
			})
		case errors.Is(err, calculator.ErrUnknownPackage):
			writeError(w, http.StatusBadRequest, "Invalid package", err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}

	switch format {
	case formatText:
		var buf bytes.Buffer
		if err := proposal.WriteText(&buf, p); err != nil {
			writeInternalError(w, err)
			return
		}
		writeAttachment(w, "text/plain; charset=utf-8", proposalFilename(p, "txt"), buf.Bytes())
	case formatXLSX:
		var buf bytes.Buffer
		if err := proposal.WriteXLSX(&buf, p); err != nil {
			writeInternalError(w, err)
			return
		}
		writeAttachment(w, xlsxContentType, proposalFilename(p, "xlsx"), buf.Bytes())
	default:
		writeJSON(w, http.StatusCreated, newProposalResponse(p))
	}
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found", fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed", fmt.Sprintf("%s is not supported on %s", r.Method, r.URL.Path))
}

func proposalFilename(p proposal.Proposal, ext string) string {
	name := strings.Join(strings.Fields(p.Request.StudentName), "_")
	if name == "" {
		name = p.ID
	}
	return fmt.Sprintf("Tuition_Proposal_%s.%s", name, ext)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
