package server

import (
	_ "embed"
	"net/http"
)

//go:embed home.html
var homePage []byte

func home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(homePage)
}
