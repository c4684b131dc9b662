package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/export"
	"github.com/jonathan/jobcraft/internal/refdata"
	"github.com/jonathan/jobcraft/internal/server/middleware"
	"github.com/jonathan/jobcraft/internal/types"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// CreateProfileResponse is returned by POST /profiles.
type CreateProfileResponse struct {
	ID       uuid.UUID         `json:"id"`
	Profile  *types.JobProfile `json:"profile"`
	Attempts int               `json:"attempts"`
	Warnings []string          `json:"warnings,omitempty"`
}

// ListProfilesResponse is returned by GET /profiles.
type ListProfilesResponse struct {
	Profiles []*types.StoredProfile `json:"profiles"`
	Count    int                    `json:"count"`
}

// handleCreateProfile runs one generation for the authenticated operator.
func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req types.GenerationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)})
		return
	}

	// Empty when auth is disabled; the log records it as N/A.
	operator, _ := middleware.GetOperator(r)

	res, err := s.deps.Generator.Generate(r.Context(), req, operator)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	resp := CreateProfileResponse{ID: res.ID, Profile: res.Profile, Attempts: res.Attempts}
	if res.SaveErr != nil {
		resp.Warnings = append(resp.Warnings, "profile was not saved: "+res.SaveErr.Error())
	} else {
		w.Header().Set("Location", "/profiles/"+res.ID.String())
	}
	if res.LogErr != nil {
		resp.Warnings = append(resp.Warnings, "generation log was not updated: "+res.LogErr.Error())
	}
	s.jsonResponse(w, http.StatusCreated, resp)
}

// handleListProfiles returns the most recent profiles, newest first.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			s.errorResponse(w, r, &ErrValidation{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", maxListLimit)})
			return
		}
		limit = n
	}

	profiles, err := s.deps.Store.ListProfiles(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []*types.StoredProfile{}
	}
	s.jsonResponse(w, http.StatusOK, ListProfilesResponse{Profiles: profiles, Count: len(profiles)})
}

func (s *Server) lookupProfile(r *http.Request) (*types.StoredProfile, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	sp, err := s.deps.Store.GetProfile(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, &ErrNotFound{Resource: "profile", ID: raw}
	}
	return sp, nil
}

// handleGetProfile returns one stored profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sp, err := s.lookupProfile(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sp)
}

// handleExportProfile renders a stored profile as a downloadable file.
func (s *Server) handleExportProfile(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "format", Message: err.Error()})
		return
	}
	sp, err := s.lookupProfile(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	data, err := s.deps.Exporter.Render(r.Context(), format, sp.Profile)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(sp.Profile, format)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write export", zap.String("format", string(format)), zap.Error(err))
	}
}

// handleCompetencies returns the competency dictionary.
func (s *Server) handleCompetencies(w http.ResponseWriter, r *http.Request) {
	entries, err := fetchTable(r.Context(), refdata.TableCompetencies, s.deps.Reference.Competencies)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"competencies": entries, "count": len(entries)})
}

// handleCatalog returns the official title catalog.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := fetchTable(r.Context(), refdata.TableCatalog, s.deps.Reference.Catalog)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"catalog": entries, "count": len(entries)})
}

func fetchTable[T any](ctx context.Context, table string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	entries, err := fetch(ctx)
	if err != nil {
		return nil, &refdata.ReferenceDataError{Table: table, Cause: err}
	}
	if entries == nil {
		entries = []T{}
	}
	return entries, nil
}
