// Package swagger serves the API reference UI and the OpenAPI document.
package swagger

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	apicontract "github.com/awardrobe/pricetracker/api-contract"
)

const (
	docsPath     = "/docs"
	specYAMLPath = "/docs/openapi.yml"
	specJSONPath = "/docs/openapi.json"

	uiVersion = "5.29.3"
)

var page = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@{{.UIVersion}}/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@{{.UIVersion}}/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({ url: {{.SpecURL}}, dom_id: '#swagger-ui', deepLinking: true });
  };
</script>
</body>
</html>
`))

// Register mounts the UI and both renderings of the document. The document
// is parsed once so a broken contract fails at startup.
func Register(r chi.Router, doc *openapi3.T) error {
	specJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal openapi document: %w", err)
	}

	title := "API reference"
	if doc.Info != nil && doc.Info.Title != "" {
		title = doc.Info.Title
	}

	var html strings.Builder
	if err := page.Execute(&html, map[string]string{
		"Title":     title,
		"UIVersion": uiVersion,
		"SpecURL":   specYAMLPath,
	}); err != nil {
		return fmt.Errorf("render swagger page: %w", err)
	}
	pageBytes := []byte(html.String())

	r.Get(docsPath, serve("text/html; charset=utf-8", pageBytes))
	r.Get(specYAMLPath, serve("application/yaml", apicontract.GetSpecBytes()))
	r.Get(specJSONPath, serve("application/json", specJSON))

	return nil
}

func serve(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(body)
	}
}
