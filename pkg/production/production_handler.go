package production

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/qmpulse/qmpulse/internal/rest"
	"github.com/qmpulse/qmpulse/pkg/workcenter"
)

type DailyMetricPointDTO struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type DailyReportDTO struct {
	ScrapQty           []DailyMetricPointDTO `json:"scrapQty"`
	ScrapCost          []DailyMetricPointDTO `json:"scrapCost"`
	Oee                []DailyMetricPointDTO `json:"oee"`
	Performance        []DailyMetricPointDTO `json:"performance"`
	Availability       []DailyMetricPointDTO `json:"availability"`
	Quality            []DailyMetricPointDTO `json:"quality"`
	ExcludedCurrencies map[string]float64    `json:"excludedCurrencies"`
	ScaleCorrected     int                   `json:"scaleCorrected"`
	ScaleRejected      int                   `json:"scaleRejected"`
	Fingerprint        string                `json:"fingerprint"`
}

type WorkCenterListDTO struct {
	WorkCenters       []string `json:"workCenters"`
	InjectionMachines []string `json:"injectionMachines"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, err := time.Parse("2006-01-02", query.Get("from"))
	if err != nil {
		writeBadRequest(w, "Invalid from date", "from must be in YYYY-MM-DD format")
		return
	}
	to, err := time.Parse("2006-01-02", query.Get("to"))
	if err != nil {
		writeBadRequest(w, "Invalid to date", "to must be in YYYY-MM-DD format")
		return
	}
	var workCenters []string
	if raw := query.Get("workCenters"); raw != "" {
		workCenters = strings.Split(raw, ",")
	}
	removeSat := query.Get("removeSaturdays") == "true"
	removeSun := query.Get("removeSundays") == "true"

	report, err := h.service.DailyReport(r.Context(), workCenters, from, to, removeSat, removeSun)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(dailyReportToDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetWorkCenters(w http.ResponseWriter, r *http.Request) {
	var areas map[workcenter.Area]bool
	if raw := r.URL.Query().Get("area"); raw != "" {
		parsed, ok := workcenter.ParseAreaFilter(raw)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown area %q", raw), http.StatusBadRequest)
			return
		}
		areas = parsed
	}
	list, err := h.service.WorkCenters(r.Context(), areas)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(WorkCenterListDTO{
		WorkCenters:       list.WorkCenters,
		InjectionMachines: list.InjectionMachines,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func dailyReportToDTO(report DailyReport) DailyReportDTO {
	return DailyReportDTO{
		ScrapQty:           seriesToDTO(report.Scrap.Qty),
		ScrapCost:          seriesToDTO(report.Scrap.Cost),
		Oee:                seriesToDTO(report.KPI.Oee),
		Performance:        seriesToDTO(report.KPI.Performance),
		Availability:       seriesToDTO(report.KPI.Availability),
		Quality:            seriesToDTO(report.KPI.Quality),
		ExcludedCurrencies: report.Scrap.Excluded,
		ScaleCorrected:     report.KPI.Scale.Corrected,
		ScaleRejected:      report.KPI.Scale.Rejected,
		Fingerprint:        report.Fingerprint,
	}
}

func seriesToDTO(series DailySeries) []DailyMetricPointDTO {
	points := make([]DailyMetricPointDTO, 0, len(series))
	for _, point := range series.Points() {
		points = append(points, DailyMetricPointDTO{
			Date:  point.Date.Format("2006-01-02"),
			Value: point.Value,
		})
	}
	return points
}

func writeBadRequest(w http.ResponseWriter, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
