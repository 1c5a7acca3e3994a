package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const layoutTemplate = "layout.html"

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page together with the shared layout from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

// pageData is what every page template receives.
type pageData struct {
	AppName  string
	Company  string
	SignedIn bool
	UserName string
	Error    string
	Page     any
}

// renderPage executes a page into a buffer first so a template failure
// never leaves a half written page behind.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		log.Err(err).Str("template", name).Msg("failed to parse page template")
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}

	data.AppName = s.config.GetAppName()
	data.Company = s.config.GetCompanyName()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		log.Err(err).Str("template", name).Str("path", r.URL.Path).Msg("failed to render page")
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		log.Err(err).Str("template", name).Msg("failed to write page")
	}
}
