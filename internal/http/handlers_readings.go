package http

import (
	"net/http"
	"strings"

	"rentledger/internal/core"
)

type readingJSON struct {
	RoomID           string `json:"roomId"`
	Period           string `json:"period"`
	PrevElectricity  int64  `json:"prevElectricity"`
	CurrElectricity  int64  `json:"currElectricity"`
	ElectricityUsage int64  `json:"electricityUsage"`
	PrevWater        int64  `json:"prevWater"`
	CurrWater        int64  `json:"currWater"`
	WaterUsage       int64  `json:"waterUsage"`
	OtherFees        int64  `json:"otherFees"`
	Paid             bool   `json:"paid"`
	ReceiptImage     string `json:"receiptImage,omitempty"`
}

func readingToJSON(r core.Reading) readingJSON {
	return readingJSON{
		RoomID:           r.RoomID,
		Period:           string(r.Period),
		PrevElectricity:  r.PrevElectricity,
		CurrElectricity:  r.CurrElectricity,
		ElectricityUsage: r.ElectricityUsage(),
		PrevWater:        r.PrevWater,
		CurrWater:        r.CurrWater,
		WaterUsage:       r.WaterUsage(),
		OtherFees:        r.OtherFees.Amount,
		Paid:             r.Paid,
		ReceiptImage:     r.ReceiptImage,
	}
}

// handleOpenPeriod seeds billing records for a period across all rooms.
// Opening an already-open period is a no-op for the rooms that have
// records.
func (s *Server) handleOpenPeriod(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Period string `json:"period"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	period := core.Period(strings.TrimSpace(req.Period))
	if period == "" {
		period = core.CurrentPeriod()
	}

	created, err := s.svc.OpenPeriod(r.Context(), period)
	if err != nil {
		respondError(w, err)
		return
	}
	s.invalidatePeriodCaches(period)
	respondJSON(w, http.StatusOK, map[string]any{
		"period":  string(period),
		"created": created,
	})
}

// handleReadings returns one record when the room query parameter is
// set, otherwise all records for the period.
func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	period, err := periodFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if roomID := strings.TrimSpace(r.URL.Query().Get("room")); roomID != "" {
		reading, err := s.svc.Reading(r.Context(), roomID, period)
		if err != nil {
			respondError(w, err)
			return
		}
		if reading == nil {
			respondError(w, core.ErrReadingNotFound)
			return
		}
		respondJSON(w, http.StatusOK, readingToJSON(*reading))
		return
	}

	readings, err := s.svc.ReadingsForPeriod(r.Context(), period)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]readingJSON, 0, len(readings))
	for _, reading := range readings {
		out = append(out, readingToJSON(reading))
	}
	respondJSON(w, http.StatusOK, out)
}

type mutationKey struct {
	RoomID string `json:"roomId"`
	Period string `json:"period"`
}

func (k mutationKey) period() core.Period {
	return core.Period(strings.TrimSpace(k.Period))
}

// respondMutated re-reads the record after a mutation so the client sees
// the stored state, propagation included.
func (s *Server) respondMutated(w http.ResponseWriter, r *http.Request, roomID string, period core.Period) {
	reading, err := s.svc.Reading(r.Context(), roomID, period)
	if err != nil {
		respondError(w, err)
		return
	}
	if reading == nil {
		respondError(w, core.ErrReadingNotFound)
		return
	}
	respondJSON(w, http.StatusOK, readingToJSON(*reading))
}

func (s *Server) handleSetMeter(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		mutationKey
		Meter string `json:"meter"`
		Value int64  `json:"value"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	period := req.period()
	meter := core.MeterKind(req.Meter)
	if err := s.svc.SetMeterReading(r.Context(), req.RoomID, period, meter, req.Value); err != nil {
		respondError(w, err)
		return
	}
	// A correction may have rewritten the next period's starting value.
	s.invalidatePeriodCaches(period)
	s.invalidatePeriodCaches(period.Next())
	s.respondMutated(w, r, req.RoomID, period)
}

func (s *Server) handleSetFees(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		mutationKey
		OtherFees int64 `json:"otherFees"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	period := req.period()
	if err := s.svc.SetOtherFees(r.Context(), req.RoomID, period, core.Money{Amount: req.OtherFees}); err != nil {
		respondError(w, err)
		return
	}
	s.invalidatePeriodCaches(period)
	s.respondMutated(w, r, req.RoomID, period)
}

func (s *Server) handleSetPaid(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		mutationKey
		Paid bool `json:"paid"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	period := req.period()
	if err := s.svc.SetPaid(r.Context(), req.RoomID, period, req.Paid); err != nil {
		respondError(w, err)
		return
	}
	s.invalidatePeriodCaches(period)
	s.respondMutated(w, r, req.RoomID, period)
}

func (s *Server) handleSetReceipt(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		mutationKey
		ReceiptImage string `json:"receiptImage"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	period := req.period()
	if err := s.svc.SetReceiptEvidence(r.Context(), req.RoomID, period, req.ReceiptImage); err != nil {
		respondError(w, err)
		return
	}
	s.respondMutated(w, r, req.RoomID, period)
}
