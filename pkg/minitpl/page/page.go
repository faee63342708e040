package page

import (
	"context"
	"html"
	"net/http"
	"strconv"

	"github.com/minihttp/minitpl/pkg/minitpl"
	"github.com/ohler55/ojg/oj"
)

// Result writes a complete HTTP response.
type Result interface {
	Execute(w http.ResponseWriter, r *http.Request) error
}

// Renderer renders a template file against a model. *minitpl.Engine
// satisfies it.
type Renderer interface {
	RenderFileContext(ctx context.Context, path string, data any) (string, error)
}

// Endpoint adapts a function returning a Result to http.Handler. Errors
// returned by the result are logged through the global logger; by then the
// response has been written. Missing templates are logged as warnings.
type Endpoint func(r *http.Request) Result

func (e Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	minitpl.Debug("%s %s", r.Method, r.URL.Path)
	result := e(r)
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := result.Execute(w, r); err != nil {
		if minitpl.IsNotFound(err) {
			minitpl.Warn("%s %s: %v", r.Method, r.URL.Path, err)
			return
		}
		minitpl.Error("%s %s: request failed: %v", r.Method, r.URL.Path, err)
	}
}

type pageResult struct {
	renderer Renderer
	path     string
	model    any
	status   int
}

// Page returns a result that renders the template file at path with model
// and writes it as HTML. A status of 0 means 200. When the template file
// does not exist the response is 404; any other render failure is a 500
// with a generic body. In both cases Execute returns the render error.
func Page(renderer Renderer, path string, model any, status int) Result {
	if status == 0 {
		status = http.StatusOK
	}
	return &pageResult{renderer: renderer, path: path, model: model, status: status}
}

func (p *pageResult) Execute(w http.ResponseWriter, r *http.Request) error {
	out, err := p.renderer.RenderFileContext(r.Context(), p.path, p.model)
	if err != nil {
		if minitpl.IsNotFound(err) {
			writeHTML(w, http.StatusNotFound, "<html><body>404 - Not Found</body></html>")
		} else {
			writeHTML(w, http.StatusInternalServerError, "<html><body>500 - Internal Server Error</body></html>")
		}
		return err
	}
	return writeHTML(w, p.status, out)
}

type jsonResult struct {
	data   any
	status int
}

// JSON returns a result that encodes v as JSON. A status of 0 means 200.
func JSON(v any, status int) Result {
	if status == 0 {
		status = http.StatusOK
	}
	return &jsonResult{data: v, status: status}
}

func (j *jsonResult) Execute(w http.ResponseWriter, _ *http.Request) error {
	body, err := oj.Marshal(j.data)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}
	return write(w, j.status, "application/json; charset=utf-8", body)
}

type redirectResult struct {
	url string
}

// Redirect returns a 302 Found result pointing at url.
func Redirect(url string) Result {
	return &redirectResult{url: url}
}

func (rd *redirectResult) Execute(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Location", rd.url)
	escaped := html.EscapeString(rd.url)
	return writeHTML(w, http.StatusFound,
		`<html><body>Redirecting to <a href="`+escaped+`">`+escaped+`</a></body></html>`)
}

func writeHTML(w http.ResponseWriter, status int, body string) error {
	return write(w, status, "text/html; charset=utf-8", []byte(body))
}

func write(w http.ResponseWriter, status int, contentType string, body []byte) error {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}
