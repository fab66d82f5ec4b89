package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scoresheet/internal/db"
	"scoresheet/internal/schemas"
	"scoresheet/internal/scores"
	"scoresheet/internal/sheet"
	"scoresheet/internal/worker"
)

const multipartMemory = 8 << 20

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadMB<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, schemas.ErrorOut{Error: "read upload: " + err.Error()})
		return
	}
	defer r.MultipartForm.RemoveAll()

	meta := scores.Meta{
		Tester: strings.TrimSpace(r.FormValue("tester")),
		User:   strings.TrimSpace(r.FormValue("user")),
		Model:  strings.TrimSpace(r.FormValue("model")),
	}
	if missing := meta.Missing(); len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, schemas.ErrorOut{
			Error:   "Fill in " + strings.Join(missing, ", ") + " before uploading",
			Missing: missing,
		})
		return
	}
	base := s.cfg.SaveDir
	if dir := strings.TrimSpace(r.FormValue("save_dir")); dir != "" {
		if !s.cfg.AllowCustomSaveDir {
			writeJSON(w, http.StatusBadRequest, schemas.ErrorOut{Error: "custom save directory is disabled"})
			return
		}
		base = dir
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, schemas.ErrorOut{Error: "Please upload a file first"})
		return
	}
	defer file.Close()

	tmp, err := spool(file)
	if err != nil {
		s.log.Error("spool upload", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, schemas.ErrorOut{Error: "Error reading file: " + err.Error()})
		return
	}
	defer os.Remove(tmp)

	ds, err := s.loader.Load(tmp, hdr.Filename, scores.LoadOptions{Meta: meta, BaseDir: base})
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	sess := s.sessionFor(r.FormValue("session_id"))
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.meta = meta
	sess.baseDir = base
	sess.dataset = ds
	sess.records = ds.Records
	sess.saved = nil
	sess.state = schemas.StateLoaded
	sess.status = fmt.Sprintf("Loaded %d rows from %s", len(ds.Records), ds.Filename)
	if ds.Merged > 0 {
		sess.status += fmt.Sprintf(", restored %d saved scores", ds.Merged)
	}
	sess.updated = time.Now()

	writeJSON(w, http.StatusOK, s.sessionOut(sess))
}

// sessionFor returns the session to load into: the named one when it
// exists, otherwise a new one.
func (s *Server) sessionFor(id string) *session {
	if id != "" {
		if sess, ok := s.sessions.get(id); ok {
			return sess
		}
	}
	return s.sessions.create()
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	var mce *scores.MissingColumnsError
	switch {
	case errors.As(err, &mce):
		writeJSON(w, http.StatusUnprocessableEntity, schemas.ErrorOut{Error: capitalize(err.Error()), Missing: mce.Missing})
	case errors.Is(err, sheet.ErrUnsupportedFormat):
		writeJSON(w, http.StatusUnsupportedMediaType, schemas.ErrorOut{Error: "Error reading file: " + err.Error()})
	default:
		s.log.Warn("load failed", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, schemas.ErrorOut{Error: "Error reading file: " + err.Error()})
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, schemas.ErrorOut{Error: "session not found"})
		return nil, false
	}
	return sess, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, s.sessionOut(sess))
}

// edit applies grid changes without saving.
func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req schemas.EditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, schemas.ErrorOut{Error: err.Error()})
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.dataset == nil {
		writeJSON(w, http.StatusConflict, schemas.ErrorOut{Error: "Please upload a file first"})
		return
	}
	updated, stats := scores.ApplyEdits(sess.records, editsOf(req))
	sess.records = updated
	if stats.Updated+stats.Cleared > 0 {
		sess.state = schemas.StateDirty
		sess.status = fmt.Sprintf("%d unsaved changes", stats.Updated+stats.Cleared)
		sess.updated = time.Now()
	}
	writeJSON(w, http.StatusOK, schemas.EditOut{SessionOut: s.sessionOut(sess), Edits: stats})
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req schemas.EditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, schemas.ErrorOut{Error: err.Error()})
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.dataset == nil {
		writeJSON(w, http.StatusConflict, schemas.ErrorOut{Error: "Please upload a file first"})
		return
	}

	updated, stats := scores.ApplyEdits(sess.records, editsOf(req))
	res, err := s.persister.Save(sess.baseDir, sess.meta, sess.dataset.Filename, updated)
	if errors.Is(err, scores.ErrNoRecords) {
		sess.status = "No data to save"
		writeJSON(w, http.StatusBadRequest, schemas.ErrorOut{Error: sess.status})
		return
	}
	if err != nil {
		// the in-memory records stay as they were before this request
		sess.status = "Save failed: " + err.Error()
		writeJSON(w, http.StatusInternalServerError, schemas.ErrorOut{Error: sess.status})
		return
	}

	sess.records = updated
	sess.saved = res
	sess.state = schemas.StateSaved
	sess.status = res.Message
	sess.updated = time.Now()

	out := schemas.SaveOut{Saved: res, Edits: stats}
	entry := &db.SaveEntry{
		SessionID:   sess.id,
		Tester:      sess.meta.Tester,
		User:        sess.meta.User,
		Model:       sess.meta.Model,
		Filename:    sess.dataset.Filename,
		Path:        res.Path,
		RowCount:    int64(res.Rows),
		ScoredCount: int64(res.Scored),
	}
	if s.ledger != nil {
		if err := s.ledger.Record(r.Context(), entry); err != nil {
			s.log.Error("record save", zap.String("path", res.Path), zap.Error(err))
			sess.status += " (history not updated)"
			entry.ID = ""
		}
	}
	if s.mirror != nil {
		p := worker.MirrorPayload{SaveID: entry.ID, Path: res.Path, Relative: res.Relative}
		if err := s.mirror.EnqueueMirror(r.Context(), p); err != nil {
			s.log.Error("enqueue mirror", zap.String("path", res.Path), zap.Error(err))
			out.Mirror = "failed"
		} else {
			out.Mirror = "queued"
		}
	}

	out.SessionOut = s.sessionOut(sess)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	saved := sess.saved
	sess.mu.Unlock()
	if saved == nil {
		writeJSON(w, http.StatusNotFound, schemas.ErrorOut{Error: "nothing saved yet"})
		return
	}

	f, err := os.Open(saved.Path)
	if err != nil {
		s.log.Error("open saved file", zap.String("path", saved.Path), zap.Error(err))
		writeJSON(w, http.StatusNotFound, schemas.ErrorOut{Error: "saved file is gone"})
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, schemas.ErrorOut{Error: err.Error()})
		return
	}

	name := filepath.Base(saved.Path)
	if format, err := sheet.FormatOf(name); err == nil {
		w.Header().Set("Content-Type", format.ContentType())
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, st.ModTime(), f)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeJSON(w, http.StatusServiceUnavailable, schemas.ErrorOut{Error: "history is not configured"})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, schemas.ErrorOut{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, 500)
	}
	saves, err := s.ledger.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("list history", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, schemas.ErrorOut{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, schemas.HistoryOut{Saves: saves})
}

// sessionOut snapshots sess. Callers hold sess.mu.
func (s *Server) sessionOut(sess *session) schemas.SessionOut {
	out := schemas.SessionOut{
		SessionID:  sess.id,
		State:      sess.state,
		Status:     sess.status,
		Meta:       sess.meta,
		Grid:       scores.ToDisplay(sess.records),
		OutputHTML: make([]string, len(sess.records)),
		UpdatedAt:  sess.updated,
	}
	for i, rec := range sess.records {
		out.OutputHTML[i] = renderMarkdown(rec.Output)
	}
	if ds := sess.dataset; ds != nil {
		out.Filename = ds.Filename
		out.MinID = ds.MinID
		out.MaxID = ds.MaxID
		out.Merged = ds.Merged
		out.OutputPath = scores.OutputPath(sess.baseDir, sess.meta, ds.Filename)
	}
	if sess.saved != nil {
		out.OutputPath = sess.saved.Path
		out.DownloadURL = "/sessions/" + sess.id + "/download"
	}
	return out
}

func editsOf(req schemas.EditRequest) []scores.RowEdit {
	return append(scores.EditsFromGrid(req.Grid), scores.ClearEdits(req.Clear)...)
}

// spool copies an uploaded file to a temp file so the spreadsheet readers
// can open it by path.
func spool(src multipart.File) (string, error) {
	tmp, err := os.CreateTemp("", "scoresheet-upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
