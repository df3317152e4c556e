package http

import (
	"net/http"

	"rentledger/internal/core"
)

type roomJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BaseRent int64  `json:"baseRent"`
}

type roomUpdateJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BaseRent int64  `json:"baseRent"`
	PIN      string `json:"pin"`
}

type settingsJSON struct {
	AdminPIN           string `json:"adminPin,omitempty"`
	ElectricityRate    int64  `json:"globalElecRate"`
	WaterRate          int64  `json:"globalWaterRate"`
	ServiceFee         int64  `json:"globalServiceFee"`
	OtherFee           int64  `json:"globalOtherFee"`
	PaymentQRCode      string `json:"paymentQrCode"`
	PaymentDescription string `json:"paymentDescription"`
	CloudAPIURL        string `json:"cloudApiUrl"`
}

// handleRooms lists rooms on GET and updates one room on PUT. PINs never
// appear in list responses.
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rooms, err := s.svc.Rooms(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		out := make([]roomJSON, 0, len(rooms))
		for _, room := range rooms {
			out = append(out, roomJSON{
				ID:       room.ID,
				Name:     room.Name,
				BaseRent: room.BaseRent.Amount,
			})
		}
		respondJSON(w, http.StatusOK, out)

	case http.MethodPut:
		var req roomUpdateJSON
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, "invalid request body")
			return
		}
		existing, err := s.svc.Room(r.Context(), req.ID)
		if err != nil {
			respondError(w, err)
			return
		}
		room := core.Room{
			ID:       req.ID,
			Name:     req.Name,
			BaseRent: core.Money{Amount: req.BaseRent},
			PIN:      req.PIN,
		}
		// An omitted PIN keeps the current one.
		if room.PIN == "" {
			room.PIN = existing.PIN
		}
		if err := s.svc.UpdateRoom(r.Context(), room); err != nil {
			respondError(w, err)
			return
		}
		// A base-rent change alters every cached total.
		s.flushPeriodCaches()
		respondJSON(w, http.StatusOK, roomJSON{
			ID:       room.ID,
			Name:     room.Name,
			BaseRent: room.BaseRent.Amount,
		})

	default:
		w.Header().Set("Allow", "GET, PUT")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleSettings reads and writes the admin configuration. The admin PIN
// is accepted on PUT but never echoed back.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.svc.Settings(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, settingsToJSON(settings))

	case http.MethodPut:
		var req settingsJSON
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, "invalid request body")
			return
		}
		current, err := s.svc.Settings(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		next := core.Settings{
			AdminPIN: req.AdminPIN,
			Rates: core.GlobalRates{
				ElectricityRate: core.Money{Amount: req.ElectricityRate},
				WaterRate:       core.Money{Amount: req.WaterRate},
				ServiceFee:      core.Money{Amount: req.ServiceFee},
				OtherFee:        core.Money{Amount: req.OtherFee},
			},
			PaymentQRCode:      req.PaymentQRCode,
			PaymentDescription: req.PaymentDescription,
			CloudAPIURL:        req.CloudAPIURL,
		}
		if next.AdminPIN == "" {
			next.AdminPIN = current.AdminPIN
		}
		if err := s.svc.UpdateSettings(r.Context(), next); err != nil {
			respondError(w, err)
			return
		}
		// Rate changes alter every computed total.
		s.flushPeriodCaches()
		respondJSON(w, http.StatusOK, settingsToJSON(next))

	default:
		w.Header().Set("Allow", "GET, PUT")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func settingsToJSON(s core.Settings) settingsJSON {
	return settingsJSON{
		ElectricityRate:    s.Rates.ElectricityRate.Amount,
		WaterRate:          s.Rates.WaterRate.Amount,
		ServiceFee:         s.Rates.ServiceFee.Amount,
		OtherFee:           s.Rates.OtherFee.Amount,
		PaymentQRCode:      s.PaymentQRCode,
		PaymentDescription: s.PaymentDescription,
		CloudAPIURL:        s.CloudAPIURL,
	}
}
