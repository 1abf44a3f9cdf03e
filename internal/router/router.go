// Package router resolves browser paths against the role-gated route
// table. The table is declarative: public routes plus one route set per
// role, evaluated in declaration order, with a catch-all redirect home
// for anything that does not match under the current role.
package router

import "strings"

// HomePath is where unmatched or role-invalid paths redirect.
const HomePath = "/"

// Route is one declaration in the table. Role "" marks a public route.
// Pattern segments starting with ':' capture path parameters.
type Route struct {
	Pattern string
	Role    string
	View    string
}

// Match is a successful resolution.
type Match struct {
	View   string
	Params map[string]string
}

// Table holds routes in declaration order. When two patterns cover the
// same path, the first declaration is authoritative.
type Table struct {
	routes []Route
}

// New builds a table from declarations, kept in the given order.
func New(routes []Route) *Table {
	return &Table{routes: routes}
}

// Routes returns the declarations in order.
func (t *Table) Routes() []Route {
	return t.routes
}

// Resolve returns the first route visible under role that matches path,
// or nil when the path should redirect home. Role gating and unknown
// paths are indistinguishable on purpose: both yield the redirect.
func (t *Table) Resolve(path, role string) *Match {
	segments := split(path)

	for _, r := range t.routes {
		if r.Role != "" && r.Role != role {
			continue
		}
		if params, ok := match(split(r.Pattern), segments); ok {
			return &Match{View: r.View, Params: params}
		}
	}
	return nil
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func match(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[p[1:]] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	return params, true
}
