package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Production telemetry
	r.HandleFunc("/api/production/workcenters", deps.ProductionHandler.GetWorkCenters).Methods("GET")
	r.HandleFunc("/api/production/daily", deps.ProductionHandler.GetDailyReport).Methods("GET")
	r.HandleFunc("/api/production/kpiwindows", deps.EffectivenessHandler.GetProjectWindows).Methods("GET")
	r.HandleFunc("/api/production/outcome", deps.EffectivenessHandler.GetRangeOutcome).Methods("GET")

	// Actions
	r.HandleFunc("/api/action", deps.ActionHandler.List).Methods("GET")
	r.HandleFunc("/api/action", deps.ActionHandler.Create).Methods("POST")
	// Registered before the {actionId} routes so mux does not swallow it.
	r.HandleFunc("/api/action/workcenter-suggestions", deps.ActionHandler.Suggest).Methods("GET")
	r.HandleFunc("/api/action/{actionId}", deps.ActionHandler.Get).Methods("GET")
	r.HandleFunc("/api/action/{actionId}/close", deps.ActionHandler.Close).Methods("POST")

	// Action effectiveness
	r.HandleFunc("/api/effectiveness/action/{actionId}", deps.EffectivenessHandler.GetLatest).Methods("GET")
	r.HandleFunc("/api/effectiveness/action/{actionId}/recompute", deps.EffectivenessHandler.Recompute).Methods("POST")
	r.HandleFunc("/api/effectiveness/recompute", deps.EffectivenessHandler.RecomputeAll).Methods("POST")

	// Champions
	r.HandleFunc("/api/champion", deps.ChampionHandler.List).Methods("GET")
	r.HandleFunc("/api/champion", deps.ChampionHandler.Create).Methods("POST")
	r.HandleFunc("/api/champion/{championId}", deps.ChampionHandler.Get).Methods("GET")
	r.HandleFunc("/api/champion/{championId}", deps.ChampionHandler.Update).Methods("PUT")
	r.HandleFunc("/api/champion/{championId}", deps.ChampionHandler.Deactivate).Methods("DELETE")

	// Ranking
	r.HandleFunc("/api/ranking", deps.RankingHandler.GetLeaderboard).Methods("GET")
}
