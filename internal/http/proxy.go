package http

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/tomek7667/nasdash/internal/backend"
)

// AddProxyRoutes forwards media and download requests to the NAS backend so
// the page can use same-origin URLs for previews.
func (s *Server) AddProxyRoutes(target *url.URL) {
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.log.Warn().Err(err).Str("path", r.URL.Path).Msg("backend proxy")
			http.Error(w, "NAS backend unavailable", http.StatusBadGateway)
		},
	}
	for _, prefix := range []string{backend.PrefixFile, backend.PrefixDownload} {
		s.r.Method(http.MethodGet, prefix+"*", proxy)
		s.r.Method(http.MethodHead, prefix+"*", proxy)
	}
}
