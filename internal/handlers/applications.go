package handlers

import (
	"net/http"

	"charity/internal/models"
)

type applicationRequest struct {
	VulnerableName       string             `json:"vulnerable_name"`
	Images               models.Attachments `json:"images"`
	ActivePhone          string             `json:"active_phone"`
	AltPhone             string             `json:"alt_phone"`
	GuardianName         string             `json:"guardian_name"`
	Country              string             `json:"country"`
	District             string             `json:"district"`
	County               string             `json:"county"`
	SubCounty            string             `json:"sub_county"`
	Parish               string             `json:"parish"`
	Village              string             `json:"village"`
	ChairpersonName      string             `json:"chairperson_name"`
	ChairpersonPhone     string             `json:"chairperson_phone"`
	RecommendationLetter models.Attachment  `json:"recommendation_letter"`
}

// Apply is public: anyone may submit an aid application to a branch.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	branchID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	var req applicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	app, err := h.applications.Apply(r.Context(), models.DonationApplication{
		BranchID:             &branchID,
		VulnerableName:       req.VulnerableName,
		Images:               req.Images,
		ActivePhone:          req.ActivePhone,
		AltPhone:             req.AltPhone,
		GuardianName:         req.GuardianName,
		Country:              req.Country,
		District:             req.District,
		County:               req.County,
		SubCounty:            req.SubCounty,
		Parish:               req.Parish,
		Village:              req.Village,
		ChairpersonName:      req.ChairpersonName,
		ChairpersonPhone:     req.ChairpersonPhone,
		RecommendationLetter: req.RecommendationLetter,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, map[string]any{"application": app})
}

func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	branchID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	apps, err := h.applications.ListForBranch(r.Context(), actor, branchID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"applications": apps})
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid application id")
		return
	}
	app, err := h.applications.Get(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"application": app})
}

func (h *Handler) ReplyApplication(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid application id")
		return
	}
	var req struct {
		Reply string `json:"reply"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	app, err := h.applications.Reply(r.Context(), actor, id, req.Reply)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"application": app})
}

func (h *Handler) ForwardApplication(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid application id")
		return
	}
	app, err := h.applications.Forward(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"application": app})
}

func (h *Handler) SetApplicationStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid application id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	app, err := h.applications.SetStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"application": app})
}
