package api

import (
	_ "embed"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed welcome.html
var welcomePage []byte

// newStaticHandler returns a handler serving the project's static files
// from dir. The root path maps to index.html; until the project has an
// index.html an embedded welcome page is served instead. Directories
// are served through their index.html and never listed, and paths
// outside dir are rejected with 404.
func newStaticHandler(dir string) http.Handler {
	if dir == "" {
		dir = "web"
	}

	fsys := os.DirFS(dir)
	fileServer := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean(r.URL.Path)
		name := strings.TrimPrefix(p, "/")
		if name == "" || name == "." {
			name = "index.html"
		}

		// fs.ValidPath rejects anything that escapes dir, so a failed
		// Open covers both missing files and traversal attempts.
		f, err := fsys.Open(name)
		if err == nil {
			stat, statErr := f.Stat()
			f.Close()
			if statErr == nil {
				if !stat.IsDir() {
					fileServer.ServeHTTP(w, r)
					return
				}
				// Directories pass through only when they have an
				// index.html of their own.
				if idx, idxErr := fsys.Open(path.Join(name, "index.html")); idxErr == nil {
					idx.Close()
					fileServer.ServeHTTP(w, r)
					return
				}
			}
		}

		if name == "index.html" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(welcomePage)
			return
		}

		http.NotFound(w, r)
	})
}
