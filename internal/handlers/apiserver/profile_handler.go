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

// ProfileHandler handles profile reads, updates and the discovery feed.
type ProfileHandler struct {
	profileService   services.ProfileService
	discoveryService services.DiscoveryService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService services.ProfileService, discoveryService services.DiscoveryService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, discoveryService: discoveryService}
}

// GetOwnProfileHandler handles GET /api/profile
func (h *ProfileHandler) GetOwnProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	profile, err := h.profileService.GetOwn(r.Context(), userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, profile.Public())
}

// UpdateProfileHandler handles PUT /api/profile
func (h *ProfileHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	var update models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "invalid request body"))
		return
	}
	defer r.Body.Close()

	profile, err := h.profileService.Update(r.Context(), userID, &update)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, profile.Public())
}

// GetUserProfileHandler handles GET /api/users/{userId}/profile
func (h *ProfileHandler) GetUserProfileHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	profile, err := h.profileService.GetPublic(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, profile)
}

// DiscoverHandler handles GET /api/discover
func (h *ProfileHandler) DiscoverHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "authentication required"))
		return
	}

	_, limit := pageParams(r)
	profiles, err := h.discoveryService.Discover(r.Context(), userID, limit)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []*models.PublicProfile{}
	}
	writeJSONResponse(w, http.StatusOK, profiles)
}
