package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"matchflix/internal/errs"
	"matchflix/internal/middleware"
	"matchflix/internal/models"
	"matchflix/internal/services"
)

// MatchHandler handles like, pass, match listing and unmatch requests.
type MatchHandler struct {
	matchService services.MatchService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// LikePayload defines the expected JSON body for POST /api/likes.
type LikePayload struct {
	LikedUserID string `json:"likedUserId"`
}

// PassPayload defines the expected JSON body for POST /api/passes.
type PassPayload struct {
	PassedUserID string `json:"passedUserId"`
}

// LikeResponse is the body returned for a like.
type LikeResponse struct {
	Success bool          `json:"success"`
	IsMatch bool          `json:"isMatch"`
	Match   *models.Match `json:"match,omitempty"`
	Message string        `json:"message"`
}

// MatchListResponse is the body of GET /api/matches.
type MatchListResponse struct {
	Matches    []*services.MatchSummary `json:"matches"`
	NextCursor string                   `json:"nextCursor,omitempty"`
	HasMore    bool                     `json:"hasMore"`
}

// LikeHandler handles POST /api/likes
func (h *MatchHandler) LikeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	var payload LikePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "invalid request body"))
		return
	}
	defer r.Body.Close()

	h.like(w, r, userID, payload.LikedUserID)
}

// LegacyLikeHandler handles POST /api/matches/like/{userId}
func (h *MatchHandler) LegacyLikeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}
	h.like(w, r, userID, mux.Vars(r)["userId"])
}

func (h *MatchHandler) like(w http.ResponseWriter, r *http.Request, userID, targetID string) {
	result, err := h.matchService.Like(r.Context(), userID, targetID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	resp := &LikeResponse{Success: true, IsMatch: result.IsMatch, Match: result.Match}
	switch {
	case !result.NewlyLiked:
		resp.Message = "Already liked"
	case result.IsMatch:
		resp.Message = "It's a match!"
	default:
		resp.Message = "Like recorded"
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// PassHandler handles POST /api/passes
func (h *MatchHandler) PassHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	var payload PassPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "invalid request body"))
		return
	}
	defer r.Body.Close()

	h.pass(w, r, userID, payload.PassedUserID)
}

// LegacyPassHandler handles POST /api/matches/pass/{userId}
func (h *MatchHandler) LegacyPassHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}
	h.pass(w, r, userID, mux.Vars(r)["userId"])
}

func (h *MatchHandler) pass(w http.ResponseWriter, r *http.Request, userID, targetID string) {
	if err := h.matchService.Pass(r.Context(), userID, targetID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Pass recorded",
	})
}

// ListMatchesHandler handles GET /api/matches
func (h *MatchHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	cursor, limit := pageParams(r)
	matches, nextCursor, hasMore, err := h.matchService.ListMatches(r.Context(), userID, cursor, limit)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if matches == nil {
		matches = []*services.MatchSummary{}
	}
	writeJSONResponse(w, http.StatusOK, &MatchListResponse{
		Matches:    matches,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}

// ListAdmirersHandler handles GET /api/likes/received
func (h *MatchHandler) ListAdmirersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	profiles, err := h.matchService.ListAdmirers(r.Context(), userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []*models.PublicProfile{}
	}
	writeJSONResponse(w, http.StatusOK, profiles)
}

// UnmatchHandler handles DELETE /api/matches/{userId}
func (h *MatchHandler) UnmatchHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	if err := h.matchService.Unmatch(r.Context(), userID, mux.Vars(r)["userId"]); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Unmatched",
	})
}
