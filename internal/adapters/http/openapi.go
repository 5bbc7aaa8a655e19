package httpadapter

import (
	_ "embed"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed api/openapi.yaml
var openAPISpecYAML []byte

var validateSpecOnce = sync.OnceValue(func() error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpecYAML)
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
})

// openAPISpec serves the embedded contract. The document is validated once
// so a malformed spec fails loudly instead of shipping silently.
func (rt *Router) openAPISpec(w http.ResponseWriter, _ *http.Request) {
	if err := validateSpecOnce(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "openapi spec is invalid"})
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpecYAML)
}
