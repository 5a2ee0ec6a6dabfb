package http

import (
	"github.com/tomek7667/nasdash/internal/nas"
)

func (s *Server) AddNASRoutes(h *nas.Handler) {
	h.Mount(s.r)
}
