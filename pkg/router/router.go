package router

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

// Middleware wraps every routed handler
type Middleware func(HandlerFunc) HandlerFunc

type route struct {
	method  string
	pattern string
	handler HandlerFunc
}

// Router matches METHOD + path patterns in registration order. A "*" segment
// matches one path segment; a trailing "*" matches the rest of the path.
type Router struct {
	routes     []route
	middleware []Middleware
}

// New creates an empty router
func New() *Router {
	return &Router{}
}

// Use appends middleware; it applies to routes registered before or after
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

func (r *Router) register(method, pattern string, handler HandlerFunc) {
	r.routes = append(r.routes, route{method: method, pattern: pattern, handler: handler})
}

func (r *Router) GET(path string, handler HandlerFunc)    { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)   { r.register(http.MethodPost, path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)    { r.register(http.MethodPut, path, handler) }
func (r *Router) PATCH(path string, handler HandlerFunc)  { r.register(http.MethodPatch, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) { r.register(http.MethodDelete, path, handler) }

// ServeHTTP dispatches to the first matching route and logs the access line
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	h, pathKnown := r.match(req.Method, req.URL.Path)
	switch {
	case h != nil:
		for i := len(r.middleware) - 1; i >= 0; i-- {
			h = r.middleware[i](h)
		}
		h(lrw, req)
	case pathKnown:
		http.Error(lrw, "Method Not Allowed", http.StatusMethodNotAllowed)
	default:
		http.Error(lrw, "Not Found", http.StatusNotFound)
	}

	log.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
		colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
		methodColor(req.Method), req.Method, colorReset,
		req.URL.Path,
		statusColor(lrw.statusCode), lrw.statusCode, colorReset,
		colorBlue, time.Since(start), colorReset,
	)
}

func (r *Router) match(method, path string) (HandlerFunc, bool) {
	pathKnown := false
	for _, rt := range r.routes {
		if !matchWildcardRoute(path, rt.pattern) {
			continue
		}
		if rt.method == method {
			return rt.handler, true
		}
		pathKnown = true
	}
	return nil, pathKnown
}

// matchWildcardRoute checks if a request path matches a route pattern
func matchWildcardRoute(requestPath, routePattern string) bool {
	requestSegments := strings.Split(strings.Trim(requestPath, "/"), "/")
	routeSegments := strings.Split(strings.Trim(routePattern, "/"), "/")

	// trailing wildcard swallows the remaining segments
	if n := len(routeSegments); n > 1 && routeSegments[n-1] == "*" {
		if len(requestSegments) < n {
			return false
		}
		return segmentsMatch(requestSegments[:n-1], routeSegments[:n-1])
	}

	if len(requestSegments) != len(routeSegments) {
		return false
	}
	return segmentsMatch(requestSegments, routeSegments)
}

func segmentsMatch(request, pattern []string) bool {
	for i, seg := range pattern {
		if seg == "*" {
			if request[i] == "" {
				return false
			}
			continue
		}
		if request[i] != seg {
			return false
		}
	}
	return true
}

// Segment returns the i-th path segment of the request, or "" when absent
func Segment(req *http.Request, i int) string {
	segments := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	if i < 0 || i >= len(segments) {
		return ""
	}
	return segments[i]
}

// Server builds an http.Server for addr serving this router
func (r *Router) Server(addr string) *http.Server {
	log.Printf("🚀 Server listening on %shttp://%s%s", colorGreen, addr, colorReset)
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodPut, http.MethodPatch:
		return colorYellow
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}
