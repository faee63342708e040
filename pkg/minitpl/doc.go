// Package minitpl renders HTML pages from templates with a small directive
// language.
//
// # Quick Start
//
// The simplest way to use minitpl is through the package-level functions:
//
//	html, err := minitpl.RenderFile("views/profile.html", user)
//	if err != nil {
//	    if minitpl.IsNotFound(err) {
//	        // answer 404
//	    }
//	    log.Fatal(err)
//	}
//
// # Template Syntax
//
// Interpolation:
//
//	${Name}                   - member of the current data node
//	${Group.Name}             - nested member access
//
// Conditionals:
//
//	$if(IsAdmin) ... $endif
//	$if(IsAdmin) ... $else ... $endif
//
// Iteration:
//
//	$foreach(var item in Items) ${item.Name} $endfor
//
// Inside a loop body the current data node is the element, so ${Name} and
// ${item.Name} both read the element's Name. Directives nest freely.
//
// # Values
//
// Models are converted to model.Value once per render. Paths that do not
// resolve render as the empty string and never fail. Conditions are true
// for true, non-empty lists, non-blank strings other than "false", and any
// other present value.
//
// # Whitespace
//
// Rendered output has every run of whitespace collapsed to a single space
// and is trimmed at both ends.
//
// # Malformed Templates
//
// An opener without its closer is rendered, together with everything after
// it, as literal text. Stray $else, $endif and $endfor directives are kept
// as text too. Each problem is recorded as a *ParseError on the template
// and logged; with Config.StrictMode the engine returns them as errors.
//
// # Configuration
//
// Engines read their defaults from the global configuration, which is
// loaded from MINITPL_* environment variables:
//
//	MINITPL_CACHE_MAX_SIZE   parsed template cache size (0 disables)
//	MINITPL_CACHE_TTL        cache entry lifetime, e.g. "10m"
//	MINITPL_LOG_LEVEL        debug, info, warn, error or off
//	MINITPL_LOG_FORMAT       text or json
//	MINITPL_STRICT_MODE      reject malformed templates
//
// LoadConfigFile reads the same settings from YAML; Validate checks them
// once any overrides are applied.
package minitpl
