package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/udisondev/sarsim/internal/command"
	"github.com/udisondev/sarsim/internal/comms"
	"github.com/udisondev/sarsim/internal/coverage"
	"github.com/udisondev/sarsim/internal/model"
	"github.com/udisondev/sarsim/internal/world"
)

const maxBodyBytes = 1 << 16

type commandRequest struct {
	AgentID string         `json:"agent_id"`
	Command string         `json:"command"`
	Params  command.Params `json:"params"`
}

type victimRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type messageRequest struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, command.KindBadParams, err)
		return
	}
	if req.AgentID == "" || req.Command == "" {
		writeError(w, http.StatusBadRequest, command.KindBadParams, errors.New("agent_id and command are required"))
		return
	}

	res := s.dispatcher.Execute(req.AgentID, req.Command, req.Params)
	writeJSON(w, resultStatus(res), res)
}

func resultStatus(res command.Result) int {
	if res.OK() {
		return http.StatusOK
	}
	switch res.Kind {
	case command.KindAgentNotFound:
		return http.StatusNotFound
	case command.KindUnknownCommand, command.KindBadParams:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleAgents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Snapshot())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Stats())
}

func (s *Server) handleVictims(w http.ResponseWriter, r *http.Request) {
	var (
		filter world.VictimFilter
		err    error
	)
	q := r.URL.Query()
	if filter.Active, err = boolParam(q.Get("active")); err != nil {
		writeError(w, http.StatusBadRequest, command.KindBadParams, fmt.Errorf("active: %w", err))
		return
	}
	if filter.Discovered, err = boolParam(q.Get("discovered")); err != nil {
		writeError(w, http.StatusBadRequest, command.KindBadParams, fmt.Errorf("discovered: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, s.world.Victims(filter))
}

// boolParam parses an optional query flag; empty means false.
func boolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func (s *Server) handleAddVictim(w http.ResponseWriter, r *http.Request) {
	var req victimRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, command.KindBadParams, err)
		return
	}

	var (
		view world.VictimView
		err  error
	)
	switch {
	case req.X == nil && req.Y == nil:
		view, err = s.world.AddVictim()
	case req.X != nil && req.Y != nil:
		view, err = s.world.AddVictimAt(model.NewPosition(*req.X, *req.Y))
	default:
		writeError(w, http.StatusBadRequest, command.KindBadParams, errors.New("x and y must be given together"))
		return
	}

	switch {
	case errors.Is(err, world.ErrOutOfRegion):
		writeError(w, http.StatusBadRequest, command.KindBadParams, err)
	case errors.Is(err, world.ErrRegionSaturated):
		writeError(w, http.StatusConflict, command.KindInternal, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, command.KindInternal, err)
	default:
		writeJSON(w, http.StatusCreated, view)
	}
}

func (s *Server) handleRemoveVictim(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, command.KindBadParams, errors.New("numeric x and y query parameters are required"))
		return
	}

	view, ok := s.world.RemoveNearestVictim(model.NewPosition(x, y))
	if !ok {
		writeError(w, http.StatusNotFound, command.KindBadParams, errors.New("no active victims"))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePatterns(w http.ResponseWriter, _ *http.Request) {
	fc := coverage.FeatureCollection(s.world.Rules().Region, s.world.ScanPatterns())
	w.Header().Set("Content-Type", "application/geo+json")
	data, err := fc.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, command.KindInternal, err)
		return
	}
	_, _ = w.Write(data)
}

func (s *Server) handleCommunicate(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, command.KindBadParams, err)
		return
	}

	if _, err := s.board.Add(req.Sender, req.Receiver, req.Content); err != nil {
		if errors.Is(err, comms.ErrInvalidMessage) {
			writeError(w, http.StatusBadRequest, command.KindBadParams, err)
			return
		}
		writeError(w, http.StatusInternalServerError, command.KindInternal, err)
		return
	}
	writeJSON(w, http.StatusOK, command.Result{Status: command.StatusSuccess})
}

func (s *Server) handleMessages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Active())
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, kind command.Kind, err error) {
	writeJSON(w, status, command.Result{
		Status:  command.StatusError,
		Kind:    kind,
		Message: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "err", err)
	}
}
