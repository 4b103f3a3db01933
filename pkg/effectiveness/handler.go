package effectiveness

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/qmpulse/qmpulse/internal/rest"
)

type ResultDTO struct {
	Metric       string   `json:"metric"`
	BaselineFrom string   `json:"baselineFrom"`
	BaselineTo   string   `json:"baselineTo"`
	AfterFrom    string   `json:"afterFrom"`
	AfterTo      string   `json:"afterTo"`
	BaselineDays int      `json:"baselineDays"`
	AfterDays    int      `json:"afterDays"`
	BaselineAvg  *float64 `json:"baselineAvg"`
	AfterAvg     *float64 `json:"afterAvg"`
	Delta        *float64 `json:"delta"`
	PctChange    *float64 `json:"pctChange"`
	Class        string   `json:"classification"`
	ComputedAt   string   `json:"computedAt"`
}

type RecomputeAllDTO struct {
	Recomputed int `json:"recomputed"`
}

type DeltaDTO struct {
	Current   *float64 `json:"current"`
	Baseline  *float64 `json:"baseline"`
	DeltaAbs  *float64 `json:"deltaAbs,omitempty"`
	DeltaPct  *float64 `json:"deltaPct,omitempty"`
	DeltaPP   *float64 `json:"deltaPp,omitempty"`
	Direction string   `json:"direction"`
}

type WindowsReportDTO struct {
	Status       string   `json:"status"`
	BaselineFrom string   `json:"baselineFrom,omitempty"`
	BaselineTo   string   `json:"baselineTo,omitempty"`
	CurrentFrom  string   `json:"currentFrom,omitempty"`
	CurrentTo    string   `json:"currentTo,omitempty"`
	BaselineDays int      `json:"baselineDays"`
	CurrentDays  int      `json:"currentDays"`
	ScrapQty     DeltaDTO `json:"scrapQty"`
	ScrapCost    DeltaDTO `json:"scrapCost"`
	Oee          DeltaDTO `json:"oee"`
	Performance  DeltaDTO `json:"performance"`
}

type RangeOutcomeDTO struct {
	BaselineFrom string             `json:"baselineFrom"`
	BaselineTo   string             `json:"baselineTo"`
	AfterFrom    string             `json:"afterFrom"`
	AfterTo      string             `json:"afterTo"`
	UsedHalves   bool               `json:"usedHalves"`
	ScrapQty     DeltaDTO           `json:"scrapQty"`
	ScrapCost    DeltaDTO           `json:"scrapCost"`
	Oee          DeltaDTO           `json:"oee"`
	Performance  DeltaDTO           `json:"performance"`
	Excluded     map[string]float64 `json:"excludedCurrencies"`
}

type Handler struct {
	service        Service
	windowDefaults WindowsOptions
}

func NewHandler(service Service, windowDefaults WindowsOptions) *Handler {
	return &Handler{service: service, windowDefaults: windowDefaults}
}

func (h *Handler) GetLatest(w http.ResponseWriter, r *http.Request) {
	actionID := mux.Vars(r)["actionId"]
	result, err := h.service.LatestForAction(r.Context(), actionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "No effectiveness result", "action has no computed effectiveness yet")
		return
	}
	writeJSON(w, resultToDTO(*result))
}

func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	actionID := mux.Vars(r)["actionId"]
	result, err := h.service.ComputeForAction(r.Context(), actionID)
	if errors.Is(err, ErrActionNotFound) {
		writeError(w, http.StatusNotFound, "Action not found", "")
		return
	}
	if errors.Is(err, ErrActionNotClosed) {
		writeError(w, http.StatusBadRequest, "Action not closed", "effectiveness is computed from the closure date")
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resultToDTO(result))
}

func (h *Handler) RecomputeAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.RecomputeAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, RecomputeAllDTO{Recomputed: count})
}

func (h *Handler) GetProjectWindows(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := h.windowDefaults
	opts.RemoveSaturdays = query.Get("removeSaturdays") == "true"
	opts.RemoveSundays = query.Get("removeSundays") == "true"
	report, err := h.service.ProjectWindows(r.Context(), splitParam(query.Get("workCenters")), opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, windowsReportToDTO(report))
}

func (h *Handler) GetRangeOutcome(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, err := time.Parse("2006-01-02", query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", "from must be in YYYY-MM-DD format")
		return
	}
	to, err := time.Parse("2006-01-02", query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", "to must be in YYYY-MM-DD format")
		return
	}
	removeSat := query.Get("removeSaturdays") == "true"
	removeSun := query.Get("removeSundays") == "true"

	outcome, err := h.service.RangeOutcome(r.Context(), splitParam(query.Get("workCenters")), from, to, removeSat, removeSun)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rangeOutcomeToDTO(outcome))
}

func resultToDTO(result Result) ResultDTO {
	return ResultDTO{
		Metric:       result.Metric,
		BaselineFrom: result.BaselineFrom.Format("2006-01-02"),
		BaselineTo:   result.BaselineTo.Format("2006-01-02"),
		AfterFrom:    result.AfterFrom.Format("2006-01-02"),
		AfterTo:      result.AfterTo.Format("2006-01-02"),
		BaselineDays: result.BaselineDays,
		AfterDays:    result.AfterDays,
		BaselineAvg:  result.BaselineAvg,
		AfterAvg:     result.AfterAvg,
		Delta:        result.Delta,
		PctChange:    result.PctChange,
		Class:        string(result.Class),
		ComputedAt:   result.ComputedAt.Format(time.RFC3339),
	}
}

func windowsReportToDTO(report WindowsReport) WindowsReportDTO {
	dto := WindowsReportDTO{
		Status:      string(report.Status),
		ScrapQty:    deltaToDTO(report.ScrapQty),
		ScrapCost:   deltaToDTO(report.ScrapCost),
		Oee:         deltaToDTO(report.Oee),
		Performance: deltaToDTO(report.Performance),
	}
	if report.Window.IsValid() {
		dto.BaselineFrom = report.Window.BaselineFrom.Format("2006-01-02")
		dto.BaselineTo = report.Window.BaselineTo.Format("2006-01-02")
		dto.CurrentFrom = report.Window.CurrentFrom.Format("2006-01-02")
		dto.CurrentTo = report.Window.CurrentTo.Format("2006-01-02")
		dto.BaselineDays = len(report.Window.BaselineDays)
		dto.CurrentDays = len(report.Window.CurrentDays)
	}
	return dto
}

func rangeOutcomeToDTO(outcome RangeOutcome) RangeOutcomeDTO {
	return RangeOutcomeDTO{
		BaselineFrom: outcome.Range.BaselineFrom.Format("2006-01-02"),
		BaselineTo:   outcome.Range.BaselineTo.Format("2006-01-02"),
		AfterFrom:    outcome.Range.AfterFrom.Format("2006-01-02"),
		AfterTo:      outcome.Range.AfterTo.Format("2006-01-02"),
		UsedHalves:   outcome.Range.UsedHalves,
		ScrapQty:     deltaToDTO(outcome.ScrapQty),
		ScrapCost:    deltaToDTO(outcome.ScrapCost),
		Oee:          deltaToDTO(outcome.Oee),
		Performance:  deltaToDTO(outcome.Performance),
		Excluded:     outcome.Excluded,
	}
}

func deltaToDTO(delta Delta) DeltaDTO {
	return DeltaDTO{
		Current:   delta.Current,
		Baseline:  delta.Baseline,
		DeltaAbs:  delta.DeltaAbs,
		DeltaPct:  delta.DeltaPct,
		DeltaPP:   delta.DeltaPP,
		Direction: string(delta.Direction),
	}
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
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
