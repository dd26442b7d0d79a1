package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/japaniel/wordweave/pkg/dictionary"
	"github.com/japaniel/wordweave/pkg/fetch"
	"github.com/japaniel/wordweave/pkg/history"
	"github.com/japaniel/wordweave/pkg/lists"
	"github.com/japaniel/wordweave/pkg/page"
)

const (
	headerStatus      = "X-Wordweave-Status"
	headerAnnotations = "X-Wordweave-Annotations"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	reader, _ := strconv.ParseBool(r.URL.Query().Get("reader"))

	p, err := s.fetcher.Fetch(r.Context(), target)
	if err != nil {
		s.logger.Warn("fetch failed", zap.String("url", target), zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, fetch.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}
	if reader {
		if rp, err := fetch.ReaderMode(p); err != nil {
			s.logger.Warn("reader mode failed, using full page", zap.String("url", target), zap.Error(err))
		} else {
			p = rp
		}
	}

	doc, err := page.Parse(bytes.NewReader(p.HTML))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	doc.SetBase(p.URL.String())

	if !s.manager.Allowed(p.Host()) {
		w.Header().Set(headerStatus, "blocked")
		s.writePage(w, doc)
		return
	}
	eng := s.manager.Current()
	if eng == nil {
		writeError(w, http.StatusServiceUnavailable, "dictionary not loaded")
		return
	}

	anns := doc.Annotate(eng.Fork())
	doc.InjectAssets()
	if s.recorder != nil {
		title := p.Title
		if title == "" {
			title = doc.Title()
		}
		info := history.PageInfo{URL: p.URL.String(), Title: title, SiteName: p.SiteName}
		if err := s.recorder.Record(info, anns); err != nil {
			s.logger.Warn("history not recorded", zap.String("url", target), zap.Error(err))
		}
	}

	w.Header().Set(headerStatus, "annotated")
	w.Header().Set(headerAnnotations, strconv.Itoa(len(anns)))
	s.writePage(w, doc)
}

func (s *Server) writePage(w http.ResponseWriter, doc *page.Document) {
	out, err := doc.HTML()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results := dictionary.Search(s.searchCorpus(r.Context()), q, limit)
	if results == nil {
		results = []dictionary.Record{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil {
		writeError(w, http.StatusNotFound, "history disabled")
		return
	}
	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	exposures, err := s.recorder.Exposures(target)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	type item struct {
		ScriptForm   string `json:"hanzi"`
		PhoneticForm string `json:"pinyin"`
		Original     string `json:"original"`
		Meaning      string `json:"meaning"`
		Context      string `json:"context,omitempty"`
		Count        int    `json:"count"`
	}
	out := make([]item, 0, len(exposures))
	for _, x := range exposures {
		out = append(out, item{x.ScriptForm, x.PhoneticForm, x.OriginalText, x.Meaning, x.ContextSentence, x.OccurrenceCount})
	}
	writeJSON(w, http.StatusOK, out)
}

type listsBody struct {
	Available []string `json:"available,omitempty"`
	Selected  []string `json:"selected"`
}

func (s *Server) handleGetLists(w http.ResponseWriter, r *http.Request) {
	selected, err := s.store.SelectedLists(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if selected == nil {
		selected = []string{}
	}
	available := append(s.manager.Catalog.IDs(), lists.PersonalID)
	writeJSON(w, http.StatusOK, listsBody{Available: available, Selected: selected})
}

func (s *Server) handlePutLists(w http.ResponseWriter, r *http.Request) {
	var body listsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	known := append(s.manager.Catalog.IDs(), lists.PersonalID)
	for _, id := range body.Selected {
		if !slices.Contains(known, id) {
			writeError(w, http.StatusBadRequest, "unknown list: "+id)
			return
		}
	}
	if err := s.store.SetSelectedLists(r.Context(), body.Selected); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPersonal(w http.ResponseWriter, r *http.Request) {
	words, err := s.store.PersonalWords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if words == nil {
		words = []dictionary.Record{}
	}
	writeJSON(w, http.StatusOK, words)
}

func (s *Server) handleAddPersonal(w http.ResponseWriter, r *http.Request) {
	var rec dictionary.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(rec.ScriptForm) == "" || len(rec.Translations) == 0 {
		writeError(w, http.StatusBadRequest, "hanzi and translations are required")
		return
	}
	added, err := s.store.AddPersonalWord(r.Context(), rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]bool{"added": added})
}

func (s *Server) handleRemovePersonal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	removed, err := s.store.RemovePersonalWord(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "word not in personal list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearPersonal(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearPersonalWords(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
