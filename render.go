package main

import (
	"html/template"
	"net/http"

	"github.com/gomarkdown/markdown"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// renderTemplate is a wrapper around template.ExecuteTemplate.
// It writes into a pooled buffer before writing to the http.ResponseWriter
// to catch any errors resulting from populating the template. webdata is
// built fresh per request; handlers never share one map.
func renderTemplate(w http.ResponseWriter, r *http.Request, deps *Dependencies, sublog zerolog.Logger, tmplname string, webdata map[string]interface{}) error {
	tmpl := deps.templates

	buf := deps.bufpool.Get()
	defer deps.bufpool.Put(buf)

	err := tmpl.ExecuteTemplate(buf, tmplname, webdata)
	if err != nil {
		sublog.Error().Err(err).Str("template", tmplname).Msg("failed to execute template")
		http.NotFound(w, r)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
	return nil
}

// renderTemplateToString renders a template for contexts that aren't an
// http.ResponseWriter, like the email body.
func renderTemplateToString(deps *Dependencies, tmplname string, data interface{}) (string, error) {
	tmpl := deps.templates
	sublog := deps.logger

	buf := deps.bufpool.Get()
	defer deps.bufpool.Put(buf)

	err := tmpl.ExecuteTemplate(buf, tmplname, data)
	if err != nil {
		sublog.Error().Err(err).Str("template", tmplname).Msg("failed to execute template")
		return "", err
	}
	return buf.String(), nil
}

// renderSummaryHTML turns the model-written markdown summary into HTML we
// trust enough to inline. Everything goes through bluemonday since the text
// comes from an external service.
func renderSummaryHTML(summary string) template.HTML {
	if summary == "" {
		return ""
	}
	unsafe := markdown.ToHTML([]byte(summary), nil, nil)
	safe := bluemonday.UGCPolicy().SanitizeBytes(unsafe)
	return template.HTML(safe)
}
