package champion

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/qmpulse/qmpulse/internal/rest"
)

type ChampionDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    *string `json:"email"`
	Team     *string `json:"team"`
	Position *string `json:"position"`
	Active   bool    `json:"active"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto ChampionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), dtoToChampion(dto))
	if errors.Is(err, ErrNameRequired) {
		writeError(w, http.StatusBadRequest, "Champion name is required", "")
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(championToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.Get(r.Context(), mux.Vars(r)["championId"])
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Champion not found", "")
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, championToDTO(found))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("activeOnly") == "true"
	champions, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]ChampionDTO, 0, len(champions))
	for _, found := range champions {
		dtos = append(dtos, championToDTO(found))
	}
	writeJSON(w, dtos)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto ChampionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	dto.ID = mux.Vars(r)["championId"]
	updated, err := h.service.Update(r.Context(), dtoToChampion(dto))
	if errors.Is(err, ErrNameRequired) {
		writeError(w, http.StatusBadRequest, "Champion name is required", "")
		return
	}
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Champion not found", "")
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, championToDTO(updated))
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	err := h.service.Deactivate(r.Context(), mux.Vars(r)["championId"])
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Champion not found", "")
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func championToDTO(champion Champion) ChampionDTO {
	return ChampionDTO{
		ID:       champion.ID,
		Name:     champion.Name,
		Email:    champion.Email,
		Team:     champion.Team,
		Position: champion.Position,
		Active:   champion.Active,
	}
}

func dtoToChampion(dto ChampionDTO) Champion {
	return Champion{
		ID:       dto.ID,
		Name:     dto.Name,
		Email:    dto.Email,
		Team:     dto.Team,
		Position: dto.Position,
		Active:   dto.Active,
	}
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
