package handlers

import (
	"encoding/json"
	"net/http"

	"charity/internal/models"
	"charity/internal/services"
)

func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.directory.ListBranches(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"branches": branches})
}

func (h *Handler) GetBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	branch, err := h.directory.GetBranch(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"branch": branch})
}

func (h *Handler) UpdateOfficerProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	var req services.OfficerProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	branch, err := h.directory.UpdateOfficerProfile(r.Context(), actor, id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"branch": branch})
}

// Activities

func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	branchID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	var req services.ActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	activity, err := h.directory.CreateActivity(r.Context(), actor, branchID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, map[string]any{"activity": activity})
}

func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid activity id")
		return
	}
	var req services.ActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	activity, err := h.directory.UpdateActivity(r.Context(), actor, id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"activity": activity})
}

func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid activity id")
		return
	}
	if err := h.directory.DeleteActivity(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, nil)
}

// Resources

func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	branchID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	var req services.ResourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resource, err := h.directory.CreateResource(r.Context(), actor, branchID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, map[string]any{"resource": resource})
}

func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid resource id")
		return
	}
	if err := h.directory.DeleteResource(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, nil)
}

// Regional donations and requests

type donationRequest struct {
	DonorName   string      `json:"donor_name"`
	Amount      json.Number `json:"amount"`
	Message     string      `json:"message"`
	IsAnonymous bool        `json:"is_anonymous"`
}

// decodeDonation writes the error response itself on failure.
func decodeDonation(w http.ResponseWriter, r *http.Request) (services.DonationRequest, bool) {
	var req donationRequest
	if !decodeJSON(w, r, &req) {
		return services.DonationRequest{}, false
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": "amount"})
		return services.DonationRequest{}, false
	}
	return services.DonationRequest{
		DonorName:   req.DonorName,
		Amount:      amount,
		Message:     req.Message,
		IsAnonymous: req.IsAnonymous,
	}, true
}

func (h *Handler) BranchDonations(w http.ResponseWriter, r *http.Request) {
	branchID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	donations, err := h.directory.BranchDonations(r.Context(), branchID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"donations": donations})
}

func (h *Handler) DonateToBranch(w http.ResponseWriter, r *http.Request) {
	branchID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	req, ok := decodeDonation(w, r)
	if !ok {
		return
	}
	donation, err := h.directory.DonateToBranch(r.Context(), branchID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, map[string]any{"donation": donation})
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	branchID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	var req services.RegionalRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	request, err := h.directory.CreateRequest(r.Context(), branchID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, map[string]any{"request": request})
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	branchID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	requests, err := h.directory.ListRequests(r.Context(), actor, branchID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	var req struct {
		Status models.RequestStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	request, err := h.directory.UpdateRequestStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"request": request})
}
