package page

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/minihttp/minitpl/pkg/minitpl"
	"github.com/minihttp/minitpl/pkg/minitpl/model"
)

// modelExtensions are tried in order when looking for a template's model.
var modelExtensions = []string{".yaml", ".yml", ".json"}

// Handler serves the *.html templates under root. A request for
// /users/profile.html renders root/users/profile.html with the model read
// from the sibling profile.yaml, profile.yml or profile.json, if any.
// Directory requests render their index.html.
func Handler(renderer Renderer, root string) http.Handler {
	return Endpoint(func(r *http.Request) Result {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			return &statusResult{status: http.StatusMethodNotAllowed}
		}

		name := path.Clean("/" + r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/") || name == "/" {
			name = path.Join(name, "index.html")
		}
		if path.Ext(name) != ".html" {
			return &statusResult{status: http.StatusNotFound}
		}

		file := filepath.Join(root, filepath.FromSlash(name))
		data, err := loadSidecarModel(file)
		if err != nil {
			minitpl.WithFields(minitpl.Fields{
				"template": file,
				"path":     r.URL.Path,
			}).Warn("model not loaded: %v", err)
			return &statusResult{status: http.StatusInternalServerError}
		}
		return Page(renderer, file, data, http.StatusOK)
	})
}

// loadSidecarModel returns the model stored next to templateFile, or nil
// when there is none.
func loadSidecarModel(templateFile string) (any, error) {
	base := strings.TrimSuffix(templateFile, filepath.Ext(templateFile))
	for _, ext := range modelExtensions {
		v, err := model.LoadFile(base + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, nil
}

type statusResult struct {
	status int
}

func (s *statusResult) Execute(w http.ResponseWriter, _ *http.Request) error {
	return writeHTML(w, s.status, "<html><body>"+
		http.StatusText(s.status)+"</body></html>")
}
