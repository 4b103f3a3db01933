package ranking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qmpulse/qmpulse/internal/rest"
)

type LeaderboardRowDTO struct {
	Rank           int      `json:"rank"`
	ChampionID     string   `json:"championId"`
	ChampionName   string   `json:"championName"`
	OpenNow        int      `json:"openNow"`
	OverdueNow     int      `json:"overdueNow"`
	ClosedInWindow int      `json:"closedInWindow"`
	OnTimeRate     *float64 `json:"onTimeRate"`
	MedianTTCDays  *float64 `json:"medianTtcDays"`
	ImpactPLN      float64  `json:"impactPln"`
	ImpactEUR      float64  `json:"impactEur"`
	MissingManual  int      `json:"missingManual"`
	MissingScope   int      `json:"missingScope"`
	DeliveryScore  float64  `json:"deliveryScore"`
	ImpactScore    float64  `json:"impactScore"`
	TotalScore     float64  `json:"totalScore"`
}

type SummaryDTO struct {
	OpenNow        int      `json:"openNow"`
	OverdueNow     int      `json:"overdueNow"`
	ClosedInWindow int      `json:"closedInWindow"`
	OnTimeRate     *float64 `json:"onTimeRate"`
	MedianTTCDays  *float64 `json:"medianTtcDays"`
	ImpactPLN      float64  `json:"impactPln"`
	ImpactEUR      float64  `json:"impactEur"`
}

type ReportDTO struct {
	Timeframe string              `json:"timeframe"`
	From      *string             `json:"from"`
	To        *string             `json:"to"`
	Rows      []LeaderboardRowDTO `json:"rows"`
	Summary   SummaryDTO          `json:"summary"`
}

type Handler struct {
	service     Service
	csvRenderer Renderer
}

func NewHandler(service Service, csvRenderer Renderer) *Handler {
	return &Handler{service: service, csvRenderer: csvRenderer}
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	timeframe, err := ParseTimeframe(query.Get("timeframe"))
	if errors.Is(err, ErrInvalidTimeframe) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid timeframe",
			Details: "timeframe must be one of 90d, 180d, 365d, total",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	var projectID, category *string
	if raw := query.Get("projectId"); raw != "" {
		projectID = &raw
	}
	if raw := query.Get("category"); raw != "" {
		category = &raw
	}

	report, err := h.service.Leaderboard(r.Context(), Query{
		Timeframe:         timeframe,
		ProjectID:         projectID,
		Category:          category,
		IncludeUnassigned: query.Get("includeUnassigned") == "true",
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		csv, err := h.csvRenderer.RenderReport(report)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reportToDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func reportToDTO(report Report) ReportDTO {
	rows := make([]LeaderboardRowDTO, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, LeaderboardRowDTO{
			Rank:           row.Rank,
			ChampionID:     row.ChampionID,
			ChampionName:   row.ChampionName,
			OpenNow:        row.OpenNow,
			OverdueNow:     row.OverdueNow,
			ClosedInWindow: row.ClosedInWindow,
			OnTimeRate:     row.OnTimeRate,
			MedianTTCDays:  row.MedianTTCDays,
			ImpactPLN:      row.ImpactPLN,
			ImpactEUR:      row.ImpactEUR,
			MissingManual:  row.MissingManual,
			MissingScope:   row.MissingScope,
			DeliveryScore:  row.DeliveryScore,
			ImpactScore:    row.ImpactScore,
			TotalScore:     row.TotalScore,
		})
	}
	dto := ReportDTO{
		Timeframe: string(report.Timeframe),
		Rows:      rows,
		Summary: SummaryDTO{
			OpenNow:        report.Summary.OpenNow,
			OverdueNow:     report.Summary.OverdueNow,
			ClosedInWindow: report.Summary.ClosedInWindow,
			OnTimeRate:     report.Summary.OnTimeRate,
			MedianTTCDays:  report.Summary.MedianTTCDays,
			ImpactPLN:      report.Summary.ImpactPLN,
			ImpactEUR:      report.Summary.ImpactEUR,
		},
	}
	if report.From != nil {
		from := report.From.Format("2006-01-02")
		dto.From = &from
	}
	if report.To != nil {
		to := report.To.Format("2006-01-02")
		dto.To = &to
	}
	return dto
}
