package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/carepulse-appointments/internal/appointment"
)

type handlers struct {
	svc        *appointment.Service
	queries    *appointment.Queries
	physicians *appointment.Roster
	log        *logrus.Logger
}

func (h *handlers) createAppointment(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
		return
	}

	var req AppointmentFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	patient, err := h.queries.GetPatient(r.Context(), userID)
	if err != nil {
		h.handleReadError(w, r, err)
		return
	}

	sig := h.svc.Submit(r.Context(), appointment.Submission{
		Intent:    appointment.IntentCreate,
		PatientID: patient.ID,
		UserID:    userID,
		Raw:       req.Raw(),
	}, h.sink(r))

	h.writeSignal(w, sig, http.StatusCreated, func(a *appointment.Appointment) SubmissionResponse {
		return SubmissionResponse{
			Appointment: toAppointmentResponse(a),
			NextPath:    successPath(userID, a.ID),
		}
	})
}

// updateAppointment serves the schedule and cancel intents. The caller must
// own the appointment; otherwise it is reported as not found.
func (h *handlers) updateAppointment(intent appointment.Intent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req AppointmentFormRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
			return
		}

		existing, err := h.queries.GetAppointment(r.Context(), id)
		if err != nil {
			h.handleReadError(w, r, err)
			return
		}
		if existing.UserID != userID {
			writeError(w, http.StatusNotFound, "appointment_not_found", appointment.ErrAppointmentNotFound.Error())
			return
		}

		sig := h.svc.Submit(r.Context(), appointment.Submission{
			Intent:    intent,
			PatientID: existing.PatientID,
			UserID:    userID,
			Raw:       req.Raw(),
			Existing:  existing,
		}, h.sink(r))

		h.writeSignal(w, sig, http.StatusOK, func(a *appointment.Appointment) SubmissionResponse {
			return SubmissionResponse{
				Appointment: toAppointmentResponse(a),
				Close:       true,
			}
		})
	}
}

func (h *handlers) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return
	}

	appt, err := h.queries.GetAppointment(r.Context(), id)
	if err != nil {
		h.handleReadError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *handlers) listAppointments(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
		return
	}

	limit, offset := appointment.ClampPage(queryInt(r, "limit", 20), queryInt(r, "offset", 0))

	list, err := h.queries.ListAppointmentsByUser(r.Context(), userID, limit, offset)
	if err != nil {
		h.handleReadError(w, r, err)
		return
	}

	resp := AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(list)),
		Limit:        limit,
		Offset:       offset,
	}
	for i := range list {
		resp.Appointments = append(resp.Appointments, toAppointmentResponse(&list[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) getPatient(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
		return
	}

	p, err := h.queries.GetPatient(r.Context(), userID)
	if err != nil {
		h.handleReadError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PatientResponse{
		ID:     p.ID,
		UserID: p.UserID,
		Name:   p.Name,
		Email:  p.Email,
	})
}

func (h *handlers) listPhysicians(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PhysicianListResponse{Physicians: h.physicians.Names()})
}

func (h *handlers) getRuleset(w http.ResponseWriter, r *http.Request) {
	intent := appointment.Intent(chi.URLParam(r, "intent"))

	rs, err := appointment.SelectRuleset(intent)
	if err != nil {
		writeError(w, http.StatusNotFound, "unsupported_intent", err.Error())
		return
	}

	resp := RulesetResponse{Intent: string(intent), Label: intent.Label()}
	for _, f := range appointment.Fields {
		rule := rs.Rule(f)
		resp.Fields = append(resp.Fields, FieldRuleResponse{
			Field:    string(f),
			Presence: rule.Presence.String(),
			MinLen:   rule.MinLen,
			MaxLen:   rule.MaxLen,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) sink(r *http.Request) appointment.SignalSink {
	requestID := GetRequestID(r.Context())
	return appointment.SignalFunc(func(sig appointment.Signal) {
		h.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"signal":     sig.Kind,
		}).Debug("submission signal")
	})
}

func (h *handlers) writeSignal(w http.ResponseWriter, sig appointment.Signal, okStatus int, render func(*appointment.Appointment) SubmissionResponse) {
	switch sig.Kind {
	case appointment.SignalSuccess:
		writeJSON(w, okStatus, render(sig.Appointment))
	case appointment.SignalValidationFailed:
		writeFieldErrors(w, sig.FieldErrors.Messages())
	default:
		handlePersistenceError(w, sig.Err)
	}
}

func handlePersistenceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentBusy):
		writeError(w, http.StatusConflict, "appointment_busy", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "persistence_failed", "the appointment could not be saved")
	}
}

func (h *handlers) handleReadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, appointment.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	default:
		h.log.WithError(err).WithField("request_id", GetRequestID(r.Context())).Error("read failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func successPath(userID, appointmentID uuid.UUID) string {
	q := url.Values{"appointmentId": {appointmentID.String()}}
	return fmt.Sprintf("/patients/%s/new-appointment/success?%s", userID, q.Encode())
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
