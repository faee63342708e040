// Package page turns rendered templates into HTTP responses.
//
// The template engine knows nothing about HTTP; this package maps its
// results onto status codes. A missing template file answers 404, any
// other render failure answers 500, and successful renders are written as
// text/html with an explicit Content-Length.
//
//	engine := minitpl.New()
//	mux.Handle("/profile", page.Endpoint(func(r *http.Request) page.Result {
//	    return page.Page(engine, "views/profile.html", user, 0)
//	}))
//
// Handler serves a whole directory of templates, each paired with an
// optional YAML or JSON model file. The minitpl CLI uses it for previews.
package page
