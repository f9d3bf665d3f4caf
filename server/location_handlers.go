package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/lastseenhq/lastseen/location"
)

const updateBodyLimit = 1 << 16

type locationUpdateRequest struct {
	APIKey    string  `json:"api_key"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

type locationUpdateResponse struct {
	Time int64 `json:"time"`
}

// LocationGetHandler returns a client's last observation. A client that
// has never reported yields the zero sentinel, not an error.
func (s *Server) LocationGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, s.locations.Get(id))
	}
}

// LocationListHandler returns the roster of clients ever seen, in
// first-seen order.
func (s *Server) LocationListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.locations.ListKnown())
	}
}

// LocationUpdateHandler records a client observation. Reporting clients
// authenticate with their API key in the body; no session is involved.
func (s *Server) LocationUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req locationUpdateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, updateBodyLimit)).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		info, err := s.directory.LookupClientByKey(r.Context(), req.APIKey)
		if err != nil {
			log.Debug().Err(err).Msg("location update: api key rejected")
			forbidden(w)
			return
		}

		stamp := s.locations.Update(
			location.Client{ID: info.ID, Name: info.Name},
			req.Latitude, req.Longitude, req.Accuracy,
		)

		writeJSON(w, http.StatusOK, locationUpdateResponse{Time: stamp})
	}
}
