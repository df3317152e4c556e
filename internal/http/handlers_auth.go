package http

import (
	"log/slog"
	"net/http"
)

// PIN checks return ok=false rather than an HTTP error so clients can
// distinguish a wrong PIN from a broken backend.

func (s *Server) handleVerifyAdminPIN(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		PIN string `json:"pin"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	ok, err := s.svc.VerifyAdminPIN(r.Context(), req.PIN)
	if err != nil {
		respondError(w, err)
		return
	}
	if !ok {
		slog.WarnContext(r.Context(), "Rejected admin PIN attempt",
			"client_ip", extractClientIP(r))
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

func (s *Server) handleVerifyRoomPIN(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		RoomID string `json:"roomId"`
		PIN    string `json:"pin"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	ok, err := s.svc.VerifyRoomPIN(r.Context(), req.RoomID, req.PIN)
	if err != nil {
		respondError(w, err)
		return
	}
	if !ok {
		slog.WarnContext(r.Context(), "Rejected room PIN attempt",
			"room_id", req.RoomID,
			"client_ip", extractClientIP(r))
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}
