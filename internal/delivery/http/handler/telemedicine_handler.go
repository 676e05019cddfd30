package handler

import (
	"encoding/json"
	"net/http"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/usecase"
	"clinic-scheduler/pkg/response"
	"clinic-scheduler/pkg/validator"
)

type TelemedicineHandler struct {
	telemedicineUsecase usecase.TelemedicineUsecase
	validator           *validator.CustomValidator
}

func NewTelemedicineHandler(telemedicineUsecase usecase.TelemedicineUsecase, validator *validator.CustomValidator) *TelemedicineHandler {
	return &TelemedicineHandler{
		telemedicineUsecase: telemedicineUsecase,
		validator:           validator,
	}
}

// CreateSession godoc
// @Summary Open the telemedicine session of an appointment
// @Tags Telemedicine
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments/{id}/telemedicine [post]
func (h *TelemedicineHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	session, err := h.telemedicineUsecase.CreateSession(r.Context(), principal, appointmentID)
	if err != nil {
		writeError(w, err, "Failed to create telemedicine session")
		return
	}

	response.Success(w, http.StatusCreated, "Telemedicine session created successfully", session)
}

// UpdateSession godoc
// @Summary Update a telemedicine session
// @Tags Telemedicine
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.UpdateTelemedicineSessionRequest true "Update Session Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /telemedicine/{id} [patch]
func (h *TelemedicineHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(w, r, "id", "session")
	if !ok {
		return
	}

	var req dto.UpdateTelemedicineSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	session, err := h.telemedicineUsecase.UpdateSession(r.Context(), principal, sessionID, &req)
	if err != nil {
		writeError(w, err, "Failed to update telemedicine session")
		return
	}

	response.Success(w, http.StatusOK, "Telemedicine session updated successfully", session)
}
