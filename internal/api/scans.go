package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/codewithboateng/codesafe/internal/model"
	"github.com/codewithboateng/codesafe/internal/rules"
	"github.com/codewithboateng/codesafe/internal/source"
	"github.com/codewithboateng/codesafe/internal/storage"
)

type scanCreateReq struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"`
}

type scanCreateResp struct {
	Scan       model.Scan `json:"scan"`
	Suppressed int        `json:"suppressed"`
}

// handleCreateScan accepts JSON {file_name, content} or a multipart upload
// with a "file" field, scans it and records the result in history.
func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes+64<<10)

	in, err := s.readUpload(r)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.err(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		s.err(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.FileName) == "" {
		s.err(w, http.StatusBadRequest, "file_name required")
		return
	}
	if int64(len(in.Content)) > s.MaxUploadBytes {
		s.err(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}

	ctx := r.Context()
	file := source.FromString(in.FileName, in.Content)
	findings := s.Scanner.Scan(file.Content, file.Ext)

	sups, err := s.DB.ListSuppressions(ctx, true)
	if err != nil {
		s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	kept, suppressed := rules.ApplySuppressions(findings, file.Name, sups)

	sc, err := s.DB.Save(ctx, file.Name, file.Ext, kept)
	if err != nil {
		s.Logger.Error("save scan", "file", file.Name, "err", err)
		s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	u, _ := userFromCtx(ctx)
	_ = s.UserStore.LogAudit(ctx, u.Username, "scan:saved", sc.ID, map[string]any{
		"file_name": sc.FileName, "language": sc.Language,
		"findings": len(sc.Findings), "suppressed": suppressed,
	})
	s.Logger.Info("scan complete", "scan", sc.ID, "file", sc.FileName, "findings", len(sc.Findings), "suppressed", suppressed)
	writeJSON(w, http.StatusCreated, scanCreateResp{Scan: sc, Suppressed: suppressed})
}

func (s *Server) readUpload(r *http.Request) (scanCreateReq, error) {
	var in scanCreateReq
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return in, err
			}
			return in, errors.New("multipart field \"file\" required")
		}
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			return in, err
		}
		in.FileName = hdr.Filename
		in.Content = string(b)
		return in, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return in, err
		}
		return in, errors.New("invalid json")
	}
	return in, nil
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := clamp(parseInt(q.Get("limit"), 20), 1, 200)
	offset := parseInt(q.Get("offset"), 0)

	var (
		rows []storage.ScanRow
		err  error
	)
	if name := q.Get("file_name"); name != "" {
		rows, err = s.DB.ListByFile(r.Context(), name, limit)
	} else {
		rows, err = s.DB.List(r.Context(), limit, offset)
	}
	if err != nil {
		s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": rows, "limit": limit, "offset": offset,
	})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	sc, err := s.DB.LoadScan(r.Context(), r.PathValue("id"))
	if err != nil {
		s.notFoundOr500(w, err, "scan not found")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	sc, err := s.DB.LoadLatest(r.Context(), r.URL.Query().Get("file_name"))
	if err != nil {
		s.notFoundOr500(w, err, "no scans")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// handleListFindings applies the severity filter. ?severity=high,medium;
// absent means all severities, "none" means the empty set.
func (s *Server) handleListFindings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	raw := strings.TrimSpace(r.URL.Query().Get("severity"))
	enabled := model.SeveritySet{}
	if raw != "none" {
		set, err := model.ParseSeveritySet(raw)
		if err != nil {
			s.err(w, http.StatusBadRequest, err.Error())
			return
		}
		enabled = set
	}
	sc, err := s.DB.LoadScan(r.Context(), id)
	if err != nil {
		s.notFoundOr500(w, err, "scan not found")
		return
	}
	items := model.Filter(sc.Findings, enabled)
	writeJSON(w, http.StatusOK, map[string]any{
		"scan_id": id, "items": items, "count": len(items),
	})
}

func (s *Server) notFoundOr500(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, storage.ErrNotFound) {
		s.err(w, http.StatusNotFound, msg)
		return
	}
	s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
}
