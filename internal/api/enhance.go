package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/codewithboateng/codesafe/internal/enhance"
	"github.com/codewithboateng/codesafe/internal/model"
)

type enhanceReq struct {
	Code     string `json:"code"`
	FileName string `json:"file_name"`
	Model    string `json:"model,omitempty"`
	// ScanID attaches that scan's findings to the request as context.
	ScanID string `json:"scan_id,omitempty"`
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	if s.Enhancer == nil {
		s.err(w, http.StatusServiceUnavailable, "enhancement not configured on server")
		return
	}
	var in enhanceReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.MaxUploadBytes+64<<10)).Decode(&in); err != nil {
		s.err(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(in.Code) == "" {
		s.err(w, http.StatusBadRequest, "code required")
		return
	}

	var findings []model.Finding
	if in.ScanID != "" {
		sc, err := s.DB.LoadScan(r.Context(), in.ScanID)
		if err != nil {
			s.notFoundOr500(w, err, "scan not found")
			return
		}
		findings = sc.Findings
	}

	out, err := s.Enhancer.Enhance(r.Context(), enhance.Request{
		Code: in.Code, FileName: in.FileName, Findings: findings, Model: in.Model,
	})
	if err != nil {
		s.Logger.Warn("enhance failed", "file", in.FileName, "err", err)
		s.err(w, http.StatusBadGateway, "enhancement failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"file_name": in.FileName, "enhanced_code": out})
}
