// Package dashboard serves the server-rendered incident dashboard.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/bissquit/incident-feed/internal/domain"
	"github.com/bissquit/incident-feed/internal/incidents"
	"github.com/bissquit/incident-feed/internal/pkg/ctxlog"
	"github.com/bissquit/incident-feed/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler serves dashboard pages.
type Handler struct {
	service       *incidents.Service
	renderer      *Renderer
	excerptLength int
}

// NewHandler creates a new dashboard handler.
func NewHandler(service *incidents.Service, renderer *Renderer, excerptLength int) *Handler {
	if excerptLength <= 0 {
		excerptLength = incidents.DefaultExcerptLength
	}
	return &Handler{
		service:       service,
		renderer:      renderer,
		excerptLength: excerptLength,
	}
}

// RegisterRoutes registers dashboard routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/incidents/new", h.NewForm)
	r.Post("/incidents/new", h.SubmitForm)
	r.Get("/incidents/{id}", h.Detail)
	r.Post("/incidents/{id}/resolve", h.Resolve)
	r.Post("/incidents/{id}/delete", h.Delete)
}

// Card is the display form of an incident.
type Card struct {
	ID        int
	DisplayID string
	Title     string
	Excerpt   string
	Author    string
	Relative  string
	Severity  domain.Severity
	Status    domain.Status
}

type listPage struct {
	PageTitle       string
	Notice          string
	Stats           domain.DashboardStats
	Query           incidents.ViewQuery
	Cards           []Card
	Empty           bool
	EmptyTitle      string
	EmptyMessage    string
	SeverityOptions []Option
	StatusOptions   []Option
	ClearSearchURL  string
}

type detailPage struct {
	PageTitle  string
	Notice     string
	Card       Card
	Body       string
	CreatedAt  string
	Busy       bool
	CanResolve bool
}

type newPage struct {
	PageTitle       string
	Form            *incidents.FormState
	BodyLength      int
	SeverityOptions []Option
	StatusOptions   []Option
}

type errorPage struct {
	PageTitle string
	Title     string
	Message   string
}

func (h *Handler) card(inc domain.Incident) Card {
	return Card{
		ID:        inc.ID,
		DisplayID: incidents.DisplayID(inc.ID),
		Title:     inc.Title,
		Excerpt:   incidents.Truncate(inc.Body, h.excerptLength),
		Author:    incidents.AuthorLabel(inc.AuthorID),
		Relative:  incidents.FormatRelative(inc.CreatedAt, h.service.Now()),
		Severity:  inc.Severity,
		Status:    inc.Status,
	}
}

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query, err := incidents.ParseViewQuery(r)
	if err != nil {
		h.renderError(r.Context(), w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}

	view, err := h.service.Dashboard(r.Context(), query)
	if err != nil {
		h.handleServiceError(r.Context(), w, err)
		return
	}

	cards := make([]Card, 0, len(view.Displayed))
	for _, inc := range view.Displayed {
		cards = append(cards, h.card(inc))
	}

	h.render(r.Context(), w, http.StatusOK, PageList, listPage{
		PageTitle:       "Dashboard",
		Notice:          listNotice(r.URL.Query()),
		Stats:           view.Stats,
		Query:           query,
		Cards:           cards,
		Empty:           view.IsEmpty(),
		EmptyTitle:      view.EmptyTitle,
		EmptyMessage:    view.EmptyMessage,
		SeverityOptions: severityOptions(query.Severity),
		StatusOptions:   statusOptions(query.Status),
		ClearSearchURL:  clearSearchURL(query),
	})
}

// Detail handles GET /incidents/{id}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	inc, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(r.Context(), w, err)
		return
	}

	busy := h.service.IsBusy(id)

	var notice string
	if r.URL.Query().Get("resolved") != "" {
		notice = "Incident marked as resolved!"
	}

	h.render(r.Context(), w, http.StatusOK, PageDetail, detailPage{
		PageTitle:  incidents.DisplayID(id),
		Notice:     notice,
		Card:       h.card(inc),
		Body:       inc.Body,
		CreatedAt:  incidents.FormatAbsolute(inc.CreatedAt),
		Busy:       busy,
		CanResolve: !busy && inc.Status != domain.StatusResolved,
	})
}

// NewForm handles GET /incidents/new.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(r.Context(), w, http.StatusOK, incidents.NewFormState())
}

// SubmitForm handles POST /incidents/new.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(r.Context(), w, http.StatusBadRequest, "Invalid form", "The submitted form could not be read.")
		return
	}

	form := incidents.NewFormState()
	for _, field := range []string{incidents.FieldTitle, incidents.FieldBody, incidents.FieldSeverity, incidents.FieldStatus} {
		if err := form.Edit(field, r.PostForm.Get(field)); err != nil {
			h.renderError(r.Context(), w, http.StatusBadRequest, "Invalid form", err.Error())
			return
		}
	}

	if !form.Submit() {
		h.renderForm(r.Context(), w, http.StatusUnprocessableEntity, form)
		return
	}

	receipt, err := h.service.Create(r.Context(), form.Data)
	if err != nil {
		var validationErr *incidents.ValidationError
		if errors.As(err, &validationErr) {
			form.Errors = validationErr.Fields
			h.renderForm(r.Context(), w, http.StatusUnprocessableEntity, form)
			return
		}
		h.handleServiceError(r.Context(), w, err)
		return
	}

	http.Redirect(w, r, "/?created="+url.QueryEscape(receipt.ID), http.StatusSeeOther)
}

// Resolve handles POST /incidents/{id}/resolve.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx := ctxlog.With(r.Context(), "incident_id", id)
	receipt, err := h.service.Resolve(ctx, id)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/incidents/%d?resolved=%s", id, url.QueryEscape(receipt.ID)), http.StatusSeeOther)
}

// Delete handles POST /incidents/{id}/delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx := ctxlog.With(r.Context(), "incident_id", id)
	receipt, err := h.service.Delete(ctx, id)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	http.Redirect(w, r, "/?deleted="+url.QueryEscape(receipt.ID), http.StatusSeeOther)
}

func (h *Handler) renderForm(ctx context.Context, w http.ResponseWriter, status int, form *incidents.FormState) {
	h.render(ctx, w, status, PageNew, newPage{
		PageTitle:       "Report New Incident",
		Form:            form,
		BodyLength:      utf8.RuneCountInString(form.Data.Body),
		SeverityOptions: severityOptions(form.Data.Severity),
		StatusOptions:   statusOptions(form.Data.Status),
	})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(r.Context(), w, http.StatusBadRequest, "Invalid incident", "Incident ids are numeric.")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, incidents.ErrIncidentNotFound):
		h.renderError(ctx, w, http.StatusNotFound, "Incident not found", "The requested incident does not exist.")
	case errors.Is(err, incidents.ErrActionInProgress):
		h.renderError(ctx, w, http.StatusConflict, "Action in progress", err.Error())
	case errors.Is(err, incidents.ErrAlreadyResolved):
		h.renderError(ctx, w, http.StatusConflict, "Already resolved", err.Error())
	case errors.Is(err, incidents.ErrFetchFailed):
		h.renderError(ctx, w, http.StatusBadGateway, "Error", "Failed to fetch incidents")
	case errors.Is(err, context.DeadlineExceeded):
		h.renderError(ctx, w, http.StatusGatewayTimeout, "Error", "Loading incidents timed out")
	default:
		ctxlog.FromContext(ctx).Error("internal error", "error", err)
		h.renderError(ctx, w, http.StatusInternalServerError, "Error", "Something went wrong")
	}
}

func (h *Handler) renderError(ctx context.Context, w http.ResponseWriter, status int, title, message string) {
	h.render(ctx, w, status, PageError, errorPage{
		PageTitle: title,
		Title:     title,
		Message:   message,
	})
}

func (h *Handler) render(ctx context.Context, w http.ResponseWriter, status int, page string, data any) {
	body, err := h.renderer.Render(page, data)
	if err != nil {
		ctxlog.FromContext(ctx).Error("render page", "page", page, "error", err)
		httputil.Text(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.HTML(w, status, body)
}

func listNotice(values url.Values) string {
	switch {
	case values.Get("created") != "":
		return "Incident submitted successfully."
	case values.Get("deleted") != "":
		return "Incident deleted!"
	default:
		return ""
	}
}

// clearSearchURL drops the free-text query but keeps the other filters.
func clearSearchURL(q incidents.ViewQuery) string {
	values := url.Values{}
	if q.Severity != "" {
		values.Set("severity", string(q.Severity))
	}
	if q.Status != "" {
		values.Set("status", string(q.Status))
	}
	if len(values) == 0 {
		return "/"
	}
	return "/?" + values.Encode()
}
