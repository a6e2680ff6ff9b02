package web

import "net/http"

type errorView struct {
	Status  int
	Code    string
	Message string
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.render(w, r, status, "error", http.StatusText(status), errorView{Status: status, Code: code, Message: message})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusNotFound, "NOT_FOUND", "Diese Seite existiert nicht.")
}
