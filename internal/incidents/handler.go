package incidents

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bissquit/incident-feed/internal/domain"
	"github.com/bissquit/incident-feed/internal/pkg/ctxlog"
	"github.com/bissquit/incident-feed/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for the incidents API.
type Handler struct {
	service       *Service
	excerptLength int
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service, excerptLength int) *Handler {
	if excerptLength <= 0 {
		excerptLength = DefaultExcerptLength
	}
	return &Handler{
		service:       service,
		excerptLength: excerptLength,
	}
}

// RegisterRoutes registers incident API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", h.ListIncidents)
		r.Post("/", h.CreateIncident)
		r.Get("/{id}", h.GetIncident)
		r.Delete("/{id}", h.DeleteIncident)
		r.Post("/{id}/resolve", h.ResolveIncident)
	})
	r.Get("/stats", h.GetStats)
}

// IncidentResponse is the API representation of an incident.
type IncidentResponse struct {
	ID                int             `json:"id"`
	DisplayID         string          `json:"display_id"`
	AuthorID          int             `json:"author_id"`
	Author            string          `json:"author"`
	Title             string          `json:"title"`
	Body              string          `json:"body"`
	Excerpt           string          `json:"excerpt"`
	Severity          domain.Severity `json:"severity"`
	Status            domain.Status   `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	CreatedAtDisplay  string          `json:"created_at_display"`
	CreatedAtRelative string          `json:"created_at_relative"`
}

// NewIncidentResponse builds the API representation with formatted fields.
func NewIncidentResponse(inc domain.Incident, now time.Time, excerptLength int) IncidentResponse {
	return IncidentResponse{
		ID:                inc.ID,
		DisplayID:         DisplayID(inc.ID),
		AuthorID:          inc.AuthorID,
		Author:            AuthorLabel(inc.AuthorID),
		Title:             inc.Title,
		Body:              inc.Body,
		Excerpt:           Truncate(inc.Body, excerptLength),
		Severity:          inc.Severity,
		Status:            inc.Status,
		CreatedAt:         inc.CreatedAt,
		CreatedAtDisplay:  FormatAbsolute(inc.CreatedAt),
		CreatedAtRelative: FormatRelative(inc.CreatedAt, now),
	}
}

// QueryResponse echoes the list query.
type QueryResponse struct {
	Q        string `json:"q"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
}

// ListResponse is the response body of GET /incidents.
type ListResponse struct {
	Incidents    []IncidentResponse    `json:"incidents"`
	Stats        domain.DashboardStats `json:"stats"`
	Query        QueryResponse         `json:"query"`
	EmptyMessage string                `json:"empty_message,omitempty"`
}

// CreateIncidentRequest represents the request body for submitting an incident.
type CreateIncidentRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
}

// ToDomain converts the request to form data, applying default selections.
func (r *CreateIncidentRequest) ToDomain() domain.IncidentFormData {
	form := domain.NewIncidentFormData()
	form.Title = r.Title
	form.Body = r.Body
	if r.Severity != "" {
		form.Severity = domain.Severity(r.Severity)
	}
	if r.Status != "" {
		form.Status = domain.Status(r.Status)
	}
	return form
}

// ListIncidents handles GET /incidents.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	query, err := ParseViewQuery(r)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.service.Dashboard(r.Context(), query)
	if err != nil {
		h.handleServiceError(r.Context(), w, err)
		return
	}

	now := h.service.Now()
	items := make([]IncidentResponse, 0, len(view.Displayed))
	for _, inc := range view.Displayed {
		items = append(items, NewIncidentResponse(inc, now, h.excerptLength))
	}

	httputil.Success(w, http.StatusOK, ListResponse{
		Incidents: items,
		Stats:     view.Stats,
		Query: QueryResponse{
			Q:        query.Query,
			Severity: string(query.Severity),
			Status:   string(query.Status),
		},
		EmptyMessage: view.EmptyMessage,
	})
}

// GetIncident handles GET /incidents/{id}.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIncidentID(w, r)
	if !ok {
		return
	}

	incident, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, NewIncidentResponse(incident, h.service.Now(), h.excerptLength))
}

// GetStats handles GET /stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.handleServiceError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, stats)
}

// CreateIncident handles POST /incidents.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	receipt, err := h.service.Create(r.Context(), req.ToDomain())
	if err != nil {
		h.handleServiceError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusAccepted, receipt)
}

// ResolveIncident handles POST /incidents/{id}/resolve.
func (h *Handler) ResolveIncident(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIncidentID(w, r)
	if !ok {
		return
	}

	ctx := ctxlog.With(r.Context(), "incident_id", id)
	receipt, err := h.service.Resolve(ctx, id)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, receipt)
}

// DeleteIncident handles DELETE /incidents/{id}.
func (h *Handler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIncidentID(w, r)
	if !ok {
		return
	}

	ctx := ctxlog.With(r.Context(), "incident_id", id)
	receipt, err := h.service.Delete(ctx, id)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, receipt)
}

// ParseViewQuery reads q, severity and status from the request query string.
func ParseViewQuery(r *http.Request) (ViewQuery, error) {
	values := r.URL.Query()
	query := ViewQuery{Query: values.Get("q")}

	if v := values.Get("severity"); v != "" {
		sev, err := domain.ParseSeverity(v)
		if err != nil {
			return ViewQuery{}, err
		}
		query.Severity = sev
	}

	if v := values.Get("status"); v != "" {
		st, err := domain.ParseStatus(v)
		if err != nil {
			return ViewQuery{}, err
		}
		query.Status = st
	}

	return query, nil
}

func parseIncidentID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid incident id")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		httputil.ValidationError(w, validationErr.Fields)
		return
	}

	httputil.HandleError(ctx, w, err, []httputil.ErrorMapping{
		{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
		{Error: ErrActionInProgress, Status: http.StatusConflict},
		{Error: ErrAlreadyResolved, Status: http.StatusConflict},
		{Error: ErrFetchFailed, Status: http.StatusBadGateway, Message: ErrFetchFailed.Error()},
		{Error: context.DeadlineExceeded, Status: http.StatusGatewayTimeout, Message: "request timed out"},
	})
}
