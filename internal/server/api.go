package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samber/lo"

	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/sorting"
)

// maxBodySize bounds control request bodies.
const maxBodySize = 4 << 10

// StateResponse is the body of GET /api/state.
type StateResponse struct {
	Run        run.Info `json:"run"`
	Algorithm  string   `json:"algorithm"`
	Algorithms []string `json:"algorithms"`
	Titles     []string `json:"titles"`
	Muted      bool     `json:"muted"`
	Values     []int    `json:"values"`
	Version    uint64   `json:"version"`
	MaxValue   int      `json:"max_value"`
	Auth       bool     `json:"auth"`
}

type algorithmRequest struct {
	Algorithm string `json:"algorithm"`
}

type muteRequest struct {
	Muted *bool `json:"muted"`
}

type errorResponse struct {
	Error string    `json:"error"`
	Run   *run.Info `json:"run,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	current := s.ctrl.Store().Current()
	titles := lo.Map(sorting.Algorithms(), func(a sorting.Algorithm, _ int) string {
		return a.Title()
	})

	writeJSON(w, http.StatusOK, StateResponse{
		Run:        s.ctrl.Info(),
		Algorithm:  s.ctrl.Algorithm().String(),
		Algorithms: sorting.Names(),
		Titles:     titles,
		Muted:      s.mute.Muted(),
		Values:     current.Values,
		Version:    current.Version,
		MaxValue:   s.ctrl.Store().MaxValue(),
		Auth:       s.AuthEnabled(),
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req algorithmRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var alg sorting.Algorithm
	if req.Algorithm != "" {
		parsed, err := sorting.Parse(req.Algorithm)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		alg = parsed
	}

	info, err := s.ctrl.Start(alg)
	if err != nil {
		if errors.Is(err, run.ErrRunActive) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Run: &info})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.log.Info("run started via api", "run", info.ID, "algorithm", info.Algorithm, "ip", extractIP(r))
	writeJSON(w, http.StatusAccepted, info)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"stopped": s.ctrl.Stop()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.ctrl.Reset()
	current := s.ctrl.Store().Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"version": current.Version,
		"values":  current.Values,
	})
}

func (s *Server) handleAlgorithm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req algorithmRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	alg, err := sorting.Parse(req.Algorithm)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.ctrl.SetAlgorithm(alg); err != nil {
		if errors.Is(err, run.ErrRunActive) {
			info := s.ctrl.Info()
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Run: &info})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"algorithm": alg.String()})
}

// handleMute sets the mute flag, or toggles it when the body omits "muted".
func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req muteRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	muted := false
	if req.Muted == nil {
		muted = s.mute.Toggle()
	} else {
		s.mute.Set(*req.Muted)
		muted = *req.Muted
	}
	writeJSON(w, http.StatusOK, map[string]bool{"muted": muted})
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
