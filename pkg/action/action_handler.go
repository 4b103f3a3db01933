package action

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/qmpulse/qmpulse/internal/rest"
)

type ActionDTO struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	ProjectID             *string  `json:"projectId"`
	ProjectName           *string  `json:"projectName"`
	ChampionID            *string  `json:"championId"`
	Category              string   `json:"category"`
	Status                string   `json:"status"`
	WorkCenter            string   `json:"workCenter"`
	RelatedWorkCenters    string   `json:"relatedWorkCenters"`
	ImpactAspects         string   `json:"impactAspects"`
	Created               string   `json:"createdAt"`
	Closed                *string  `json:"closedAt"`
	Due                   *string  `json:"dueDate"`
	ManualSavingsAmount   *float64 `json:"manualSavingsAmount"`
	ManualSavingsCurrency *string  `json:"manualSavingsCurrency"`
}

type WorkCenterSuggestionsDTO struct {
	Suggestions []string `json:"suggestions"`
}

// WorkCenterProvider supplies the known work-center labels used to rank
// suggestions. Wired to the production service so suggestions stay in sync
// with the telemetry the plant actually reports.
type WorkCenterProvider func(ctx context.Context) ([]string, error)

type Handler struct {
	service     Service
	workCenters WorkCenterProvider
}

func NewHandler(service Service, workCenters WorkCenterProvider) *Handler {
	return &Handler{service: service, workCenters: workCenters}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto ActionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	toCreate, err := dtoToAction(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", "dates must be in YYYY-MM-DD format")
		return
	}
	created, err := h.service.Create(r.Context(), toCreate)
	if errors.Is(err, ErrTitleRequired) {
		writeError(w, http.StatusBadRequest, "Action title is required", "")
		return
	}
	if errors.Is(err, ErrInvalidStatus) {
		writeError(w, http.StatusBadRequest, "Invalid action status", "status must be one of open, in_progress, done, cancelled")
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(actionToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.Get(r.Context(), mux.Vars(r)["actionId"])
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Action not found", "")
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, actionToDTO(found))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter RankingFilter
	if raw := query.Get("projectId"); raw != "" {
		filter.ProjectID = &raw
	}
	if raw := query.Get("category"); raw != "" {
		filter.Category = &raw
	}
	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", "from must be in YYYY-MM-DD format")
			return
		}
		filter.DateFrom = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", "to must be in YYYY-MM-DD format")
			return
		}
		filter.DateTo = &to
	}

	actions, err := h.service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]ActionDTO, 0, len(actions))
	for _, found := range actions {
		dtos = append(dtos, actionToDTO(found))
	}
	writeJSON(w, dtos)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	closed, err := h.service.Close(r.Context(), mux.Vars(r)["actionId"])
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Action not found", "")
		return
	}
	if errors.Is(err, ErrAlreadyClosed) {
		writeError(w, http.StatusConflict, "Action is already closed", "the original closure date is kept")
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, actionToDTO(closed))
}

// Suggest returns the work centers closest to the typed-in label, for the
// action form's autocomplete. The candidate pool comes from the production
// telemetry, so only labels the plant actually reports are suggested.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("workCenter")
	if strings.TrimSpace(target) == "" {
		writeError(w, http.StatusBadRequest, "Missing work center", "workCenter query parameter is required")
		return
	}
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	candidates, err := h.workCenters(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	suggestions := SuggestWorkCenters(target, candidates, limit)
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, WorkCenterSuggestionsDTO{Suggestions: suggestions})
}

func actionToDTO(action Action) ActionDTO {
	dto := ActionDTO{
		ID:                    action.ID,
		Title:                 action.Title,
		ProjectID:             action.ProjectID,
		ProjectName:           action.ProjectName,
		ChampionID:            action.ChampionID,
		Category:              action.Category,
		Status:                action.Status,
		WorkCenter:            action.WorkCenter,
		RelatedWorkCenters:    action.RelatedWorkCenters,
		ImpactAspects:         action.ImpactAspects,
		Created:               action.Created.Format("2006-01-02"),
		ManualSavingsAmount:   action.ManualSavingsAmount,
		ManualSavingsCurrency: action.ManualSavingsCurrency,
	}
	if action.Closed != nil {
		closed := action.Closed.Format("2006-01-02")
		dto.Closed = &closed
	}
	if action.Due != nil {
		due := action.Due.Format("2006-01-02")
		dto.Due = &due
	}
	return dto
}

func dtoToAction(dto ActionDTO) (Action, error) {
	action := Action{
		ID:                    dto.ID,
		Title:                 dto.Title,
		ProjectID:             dto.ProjectID,
		ProjectName:           dto.ProjectName,
		ChampionID:            dto.ChampionID,
		Category:              dto.Category,
		Status:                dto.Status,
		WorkCenter:            dto.WorkCenter,
		RelatedWorkCenters:    dto.RelatedWorkCenters,
		ImpactAspects:         dto.ImpactAspects,
		ManualSavingsAmount:   dto.ManualSavingsAmount,
		ManualSavingsCurrency: dto.ManualSavingsCurrency,
	}
	if dto.Due != nil && *dto.Due != "" {
		due, err := time.Parse("2006-01-02", *dto.Due)
		if err != nil {
			return Action{}, err
		}
		action.Due = &due
	}
	return action, nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
