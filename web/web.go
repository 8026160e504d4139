// Package web holds the server-rendered HTML templates.
package web

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// MediaPrefix is the route that streams stored objects.
const MediaPrefix = "/media/"

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"media": func(key string) string {
			if key == "" {
				return ""
			}
			return MediaPrefix + strings.TrimPrefix(key, "/")
		},
		"date": func(t time.Time) string {
			return t.Format("02 Jan 2006 15:04")
		},
	}
}

// Templates parses every page and partial into one set keyed by file name.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

func MustTemplates() *template.Template {
	return template.Must(Templates())
}
