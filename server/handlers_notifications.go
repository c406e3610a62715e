package server

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "github.com/varsityhq/varsity-server/internal/errors"
	"github.com/varsityhq/varsity-server/notifications"
)

const targetDateLayout = "2006-01-02"

type createNotificationRequest struct {
	EventID      string   `json:"eventId"`
	TargetDate   string   `json:"targetDate"` // YYYY-MM-DD
	DeviceTokens []string `json:"deviceTokens"`
}

type notificationResponse struct {
	ID           string   `json:"notificationId"`
	TargetDate   string   `json:"targetDate"`
	EventID      string   `json:"eventId"`
	DeviceTokens []string `json:"deviceTokens"`
	Active       bool     `json:"active"`
}

func toNotificationResponse(n *notifications.Notification) notificationResponse {
	return notificationResponse{
		ID:           n.ID,
		TargetDate:   n.TargetDate.Format(targetDateLayout),
		EventID:      n.EventID,
		DeviceTokens: n.DeviceTokens,
		Active:       n.Active,
	}
}

func (s *Server) CreateNotificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())

		var req createNotificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == "" || len(req.DeviceTokens) == 0 {
			writeError(w, RouteNotifications, http.StatusBadRequest, CodeBadRequest, "eventId, targetDate and deviceTokens are required")
			return
		}
		targetDate, err := time.Parse(targetDateLayout, req.TargetDate)
		if err != nil {
			writeError(w, RouteNotifications, http.StatusBadRequest, CodeBadRequest, "targetDate must be YYYY-MM-DD")
			return
		}

		n, err := s.notifications.Create(r.Context(), claims.SubjectID, req.EventID, targetDate, req.DeviceTokens)
		switch {
		case err == nil:
			writeJSON(w, RouteNotifications, http.StatusOK, toNotificationResponse(n))
		case apperrors.Is(err, apperrors.ErrMemberNotFound):
			writeError(w, RouteNotifications, http.StatusNotFound, CodeMemberNotFound, "member not found")
		case apperrors.Is(err, apperrors.ErrEventNotFound):
			writeError(w, RouteNotifications, http.StatusNotFound, CodeEventNotFound, "calendar event not found")
		default:
			s.log.Error().Err(err).Msg("notification creation failed")
			writeError(w, RouteNotifications, http.StatusInternalServerError, CodeInternalError, "notification creation failed")
		}
	}
}

func (s *Server) ListNotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())

		listed, err := s.notifications.ListForMember(r.Context(), claims.SubjectID)
		switch {
		case err == nil:
			responses := make([]notificationResponse, 0, len(listed))
			for _, n := range listed {
				responses = append(responses, toNotificationResponse(n))
			}
			writeJSON(w, RouteNotifications, http.StatusOK, responses)
		case apperrors.Is(err, apperrors.ErrMemberNotFound):
			writeError(w, RouteNotifications, http.StatusNotFound, CodeMemberNotFound, "member not found")
		default:
			s.log.Error().Err(err).Msg("notification listing failed")
			writeError(w, RouteNotifications, http.StatusInternalServerError, CodeInternalError, "notification listing failed")
		}
	}
}

func (s *Server) DeleteNotificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		id := r.PathValue("id")

		err := s.notifications.Delete(r.Context(), claims.SubjectID, id)
		switch {
		case err == nil:
			writeJSON(w, RouteNotificationByID, http.StatusOK, map[string]string{"message": "notification deleted"})
		case apperrors.Is(err, apperrors.ErrMemberNotFound):
			writeError(w, RouteNotificationByID, http.StatusNotFound, CodeMemberNotFound, "member not found")
		case apperrors.Is(err, apperrors.ErrNotificationNotFound):
			writeError(w, RouteNotificationByID, http.StatusNotFound, CodeNotificationNotFound, "notification not found")
		default:
			s.log.Error().Err(err).Msg("notification deletion failed")
			writeError(w, RouteNotificationByID, http.StatusInternalServerError, CodeInternalError, "notification deletion failed")
		}
	}
}
