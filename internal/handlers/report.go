package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/report"
	"github.com/avancea/ritmo/internal/request"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/timeline"
)

// ReportHandler builds reports, memoized in Redis for a short TTL since
// a report over a fixed window is stable between generations.
type ReportHandler struct {
	store    storage.Store
	redis    *redis.Client
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewReportHandler creates a new report handler. redisClient may be nil
// to disable caching.
func NewReportHandler(store storage.Store, redisClient *redis.Client, cacheTTL time.Duration, log *zap.Logger) *ReportHandler {
	return &ReportHandler{store: store, redis: redisClient, cacheTTL: cacheTTL, log: log}
}

// RegisterRoutes registers the report route on the given router.
// The router should already have the /report prefix.
func (h *ReportHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.RunReport).Methods("POST")
}

// ReportRequest represents a report run request
type ReportRequest struct {
	Period              timeline.Period          `json:"period"`
	RightNow            *string                  `json:"right_now,omitempty"`
	BreakdownPeriod     *timeline.Period         `json:"breakdown_period,omitempty"`
	Breakdowns          []report.Breakdown       `json:"breakdowns,omitempty"`
	FilterProjectRefIDs []uuid.UUID              `json:"filter_project_ref_ids,omitempty"`
	FilterHabitRefIDs   []uuid.UUID              `json:"filter_habit_ref_ids,omitempty"`
	FilterChoreRefIDs   []uuid.UUID              `json:"filter_chore_ref_ids,omitempty"`
	FilterBigPlanRefIDs []uuid.UUID              `json:"filter_big_plan_ref_ids,omitempty"`
	FilterSources       []models.InboxTaskSource `json:"filter_sources,omitempty"`
	ShowArchived        bool                     `json:"show_archived,omitempty"`
}

// RunReport builds the report for the requested window
func (h *ReportHandler) RunReport(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var req ReportRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	var rightNow *time.Time
	if req.RightNow != nil && *req.RightNow != "" {
		parsed, err := time.Parse(time.RFC3339, *req.RightNow)
		if err != nil {
			parsed, err = parseDate("right_now", *req.RightNow)
			if err != nil {
				respondModelError(w, err)
				return
			}
		}
		rightNow = &parsed
	}

	cacheKey := h.cacheKey(workspace.RefID, &req)
	if h.redis != nil {
		if cached, err := h.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var result report.Result
			if err := json.Unmarshal(cached, &result); err == nil {
				respondJSON(w, http.StatusOK, &result)
				return
			}
		} else if err != redis.Nil {
			h.log.Warn("report_cache_read_failed", zap.Error(err))
		}
	}

	engine := report.New(h.store, h.log)
	result, err := engine.Run(ctx, report.Args{
		WorkspaceRefID:      workspace.RefID,
		RightNow:            rightNow,
		Period:              req.Period,
		BreakdownPeriod:     req.BreakdownPeriod,
		Breakdowns:          req.Breakdowns,
		FilterProjectRefIDs: req.FilterProjectRefIDs,
		FilterHabitRefIDs:   req.FilterHabitRefIDs,
		FilterChoreRefIDs:   req.FilterChoreRefIDs,
		FilterBigPlanRefIDs: req.FilterBigPlanRefIDs,
		FilterSources:       req.FilterSources,
		ShowArchived:        req.ShowArchived,
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	if h.redis != nil {
		if encoded, err := json.Marshal(result); err == nil {
			if err := h.redis.Set(ctx, cacheKey, encoded, h.cacheTTL).Err(); err != nil {
				h.log.Warn("report_cache_write_failed", zap.Error(err))
			}
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// cacheKey hashes the full request so every distinct argument set gets
// its own cache slot.
func (h *ReportHandler) cacheKey(workspaceRefID uuid.UUID, req *ReportRequest) string {
	encoded, _ := json.Marshal(req)
	digest := sha256.Sum256(encoded)
	return fmt.Sprintf("ritmo:report:%s:%s", workspaceRefID, hex.EncodeToString(digest[:]))
}
