package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/example/staycal/internal/domain/calendar"
	"github.com/example/staycal/internal/domain/conflict"
	"github.com/example/staycal/internal/domain/reservation"
	"github.com/example/staycal/internal/domain/timeline"
	"github.com/example/staycal/internal/internaltypes"
)

type MonthService interface {
	Get(ctx context.Context, propertyID string, ref civil.Date) (timeline.MonthLayout, error)
}

type errorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, internaltypes.ErrInvalidInput):
		status, msg = http.StatusBadRequest, "invalid input"
	case errors.Is(err, internaltypes.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, internaltypes.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "unauthorized"
	}
	if status == http.StatusInternalServerError {
		s.Log.Error("request failed", zap.Error(err))
		writeJSON(w, status, errorResponse{Message: msg})
		return
	}
	writeJSON(w, status, errorResponse{Message: msg, Details: err.Error()})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeErr(w, fmt.Errorf("%w: %v", internaltypes.ErrInvalidInput, err))
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.writeErr(w, fmt.Errorf("%w: %v", internaltypes.ErrInvalidInput, err))
			return
		}
		req = loginRequest{Username: r.FormValue("username"), Password: r.FormValue("password")}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	id, err := s.Auth.Authenticate(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, internaltypes.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "invalid username or password"})
			return
		}
		s.writeErr(w, err)
		return
	}
	if err := s.Auth.SetSession(w, r, id); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"userId": id})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) monthFor(r *http.Request) (timeline.MonthLayout, error) {
	ref, err := s.ref(r)
	if err != nil {
		return timeline.MonthLayout{}, err
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	return s.Months.Get(ctx, r.PathValue("property"), ref)
}

func (s *Server) ref(r *http.Request) (civil.Date, error) {
	q := strings.TrimSpace(r.URL.Query().Get("date"))
	if q == "" {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		return civil.DateOf(now()), nil
	}
	d, err := calendar.ParseRef(q)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %v", internaltypes.ErrInvalidInput, err)
	}
	return d, nil
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	l, err := s.monthFor(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type conflictsResponse struct {
	Month     string             `json:"month"`
	Conflicts conflict.IDSet     `json:"conflicts"`
	Pairs     []conflict.Pair    `json:"pairs"`
	Matches   []conflict.Match   `json:"matches"`
	Skipped   []reservation.Skip `json:"skipped"`
}

func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	l, err := s.monthFor(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conflictsResponse{
		Month:     fmt.Sprintf("%04d-%02d", l.Month.Ref.Year, int(l.Month.Ref.Month)),
		Conflicts: l.Conflicts,
		Pairs:     l.Pairs,
		Matches:   l.Matches,
		Skipped:   l.Diagnostics.Skipped,
	})
}
