package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/Nomadcxx/coverflow/internal/catalog"
	"github.com/Nomadcxx/coverflow/internal/library"
	"github.com/Nomadcxx/coverflow/internal/search"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type title struct {
	Key            string   `json:"key"`
	Title          string   `json:"title"`
	Year           string   `json:"year,omitempty"`
	Display        string   `json:"display"`
	CollectionRoot string   `json:"collection_root"`
	FileCount      int      `json:"file_count"`
	HasCover       bool     `json:"has_cover"`
	Files          []string `json:"files,omitempty"`
	CoverPath      string   `json:"cover_path,omitempty"`
}

type titleList struct {
	Query  string  `json:"query"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
	Titles []title `json:"titles"`
}

func (s *Server) summary(e *catalog.Entry) title {
	return title{
		Key:            e.Key(),
		Title:          e.Title(),
		Year:           e.YearOrEmpty(),
		Display:        e.Display(),
		CollectionRoot: e.CollectionRoot(),
		FileCount:      e.FileCount(),
		HasCover:       s.lib.Resolver().HasCover(e),
	}
}

func (s *Server) handleListTitles(w http.ResponseWriter, r *http.Request) {
	offset, err := intParam(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "invalid_offset", "offset must be a non-negative integer")
		return
	}
	limit, err := intParam(r, "limit", defaultLimit)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	query := r.URL.Query().Get("q")
	view := s.lib.Search(query)
	list := titleList{
		Query:  query,
		Count:  view.Len(),
		Offset: offset,
		Limit:  limit,
		Titles: []title{},
	}
	for i := offset; i < view.Len() && i < offset+limit; i++ {
		list.Titles = append(list.Titles, s.summary(view.At(i)))
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTitle(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lib.Lookup(chi.URLParam(r, "key"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "title not found")
		return
	}
	t := s.summary(e)
	t.Files = e.FilePaths()
	t.CoverPath = s.lib.Resolver().CoverCachePath(e)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleGetCover(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lib.Lookup(chi.URLParam(r, "key"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "title not found")
		return
	}
	path, ok := s.lib.Resolver().CoverOf(e)
	if !ok {
		writeError(w, http.StatusNotFound, "no_cover", "no cover cached for this title")
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	c := r.URL.Query().Get("c")
	if utf8.RuneCountInString(c) != 1 {
		writeError(w, http.StatusBadRequest, "invalid_letter", "c must be a single character")
		return
	}
	letter, _ := utf8.DecodeRuneInString(c)

	view := s.lib.Search(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]int{
		"index": search.JumpIndex(view, letter),
		"count": view.Len(),
	})
}

type statsResponse struct {
	Entries   int            `json:"entries"`
	Populated bool           `json:"populated"`
	Last      *library.Stats `json:"last_populate,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{Entries: s.lib.Catalog().Len()}
	if st, ok := s.lib.LastStats(); ok {
		resp.Populated = true
		resp.Last = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	stats, err := s.lib.Populate(r.Context())
	if errors.Is(err, library.ErrNoRoots) {
		writeError(w, http.StatusConflict, "no_roots", err.Error())
		return
	}
	if err != nil {
		s.logger.Error("api", "Rescan failed", err)
		writeError(w, http.StatusInternalServerError, "rescan_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
	})
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
