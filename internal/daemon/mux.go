package daemon

import (
	"net/http"
	"strings"
)

// ServeMux registers patterns relative to BaseURL. A pattern is either a
// path or a method followed by a path, as accepted by http.ServeMux.
type ServeMux struct {
	httpServeMux http.ServeMux
	BaseURL      string

	routes []string
}

func NewServeMux(baseURL string) *ServeMux {
	return &ServeMux{
		httpServeMux: http.ServeMux{},
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
	}
}

func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.httpServeMux.ServeHTTP(w, r)
}

func (m *ServeMux) HandleFunc(
	pattern string,
	handler func(http.ResponseWriter, *http.Request),
) {
	p := m.withBaseURL(pattern)

	m.httpServeMux.HandleFunc(p, handler)
	m.routes = append(m.routes, p)
}

// Routes returns the registered patterns in registration order.
func (m *ServeMux) Routes() []string {
	return append([]string(nil), m.routes...)
}

func (m *ServeMux) withBaseURL(pattern string) string {
	method, path, found := strings.Cut(pattern, " ")
	if !found {
		return m.BaseURL + pattern
	}

	return method + " " + m.BaseURL + strings.TrimSpace(path)
}
