package http

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"scoresheet/internal/scores"
)

//go:embed web/index.html
var webFS embed.FS

var indexTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

type indexData struct {
	Labels             []string
	AllowCustomSaveDir bool
	SaveDir            string
	MaxUploadMB        int64
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTmpl.Execute(w, indexData{
		Labels:             scores.Labels,
		AllowCustomSaveDir: s.cfg.AllowCustomSaveDir,
		SaveDir:            s.cfg.SaveDir,
		MaxUploadMB:        s.cfg.MaxUploadMB,
	})
	if err != nil {
		s.log.Error("render index", zap.Error(err))
	}
}
