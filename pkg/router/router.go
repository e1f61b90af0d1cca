// Package router is a thin named-routes layer over chi. Routes get a
// stable name ("orders.show") so the route:list command and URL
// generation do not depend on path literals scattered through the app.
package router

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// RouteInfo describes one named route, for route listings.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Router mounts named routes on a chi mux. Group derives a child router
// whose prefix and middleware apply to everything registered through it;
// every router in the tree shares the same mux and name table.
type Router struct {
	mux    chi.Router
	names  *nameTable
	prefix string
	stack  []Middleware
}

func New() *Router {
	return &Router{
		mux:   chi.NewRouter(),
		names: &nameTable{paths: make(map[string]string)},
	}
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

// Use installs middleware on the mux itself, applying to every route.
// Call it before mounting anything.
func (r *Router) Use(middlewares ...Middleware) {
	for _, mw := range middlewares {
		r.mux.Use(mw)
	}
}

// Group derives a router scoped to prefix. The given middleware stacks on
// top of the parent's and wraps every route the group registers.
func (r *Router) Group(prefix string, middlewares ...Middleware) *Router {
	child := *r
	child.prefix = join(r.prefix, prefix)
	child.stack = concat(r.stack, middlewares)
	return &child
}

func (r *Router) Get(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handle(http.MethodGet, path, name, handler, middlewares)
}

func (r *Router) Post(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handle(http.MethodPost, path, name, handler, middlewares)
}

func (r *Router) Put(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handle(http.MethodPut, path, name, handler, middlewares)
}

func (r *Router) Delete(path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handle(http.MethodDelete, path, name, handler, middlewares)
}

func (r *Router) handle(method, path, name string, handler http.Handler, middlewares []Middleware) {
	full := join(r.prefix, path)
	for stack := concat(r.stack, middlewares); len(stack) > 0; stack = stack[:len(stack)-1] {
		handler = stack[len(stack)-1](handler)
	}
	r.mux.Method(method, full, handler)
	if name != "" {
		r.names.add(RouteInfo{Method: method, Path: full, Name: name})
	}
}

// Routes returns every named route in registration order.
func (r *Router) Routes() []RouteInfo {
	r.names.mu.RLock()
	defer r.names.mu.RUnlock()
	return append([]RouteInfo(nil), r.names.infos...)
}

// Path returns the registered path of a named route.
func (r *Router) Path(name string) (string, bool) {
	r.names.mu.RLock()
	defer r.names.mu.RUnlock()
	path, ok := r.names.paths[name]
	return path, ok
}

// URL builds a concrete URL for a named route, substituting params into
// its {placeholders}.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	path, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("route %q not found", name)
	}
	for key, value := range params {
		path = strings.ReplaceAll(path, "{"+key+"}", value)
	}
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("missing parameters for route %q", name)
	}
	return path, nil
}

type nameTable struct {
	mu    sync.RWMutex
	paths map[string]string
	infos []RouteInfo
}

func (t *nameTable) add(info RouteInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths[info.Name] = info.Path
	t.infos = append(t.infos, info)
}

func concat(a, b []Middleware) []Middleware {
	if len(b) == 0 {
		return a
	}
	return append(append([]Middleware(nil), a...), b...)
}

// join glues path segments into a clean "/a/b/c" form; empty segments
// collapse so Group("") works as a pure middleware scope.
func join(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		if part = strings.Trim(part, "/"); part != "" {
			b.WriteByte('/')
			b.WriteString(part)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}
