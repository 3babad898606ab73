package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
)

// ArchiveServer is an in-memory stand-in for the remote data archive. Paths
// ending in "/" render an HTML directory listing (with a parent link and
// column-sort links, like the real server); other paths serve raw file
// bytes. Every file GET is counted so tests can assert download idempotence.
type ArchiveServer struct {
	mu       sync.Mutex
	server   *httptest.Server
	dirs     map[string][]string
	files    map[string][]byte
	statuses map[string]int
	fileHits map[string]int
	listHits map[string]int
}

// NewArchiveServer starts an empty fake archive. Callers must Close it.
func NewArchiveServer() *ArchiveServer {
	s := &ArchiveServer{
		dirs:     map[string][]string{"/": {}},
		files:    make(map[string][]byte),
		statuses: make(map[string]int),
		fileHits: make(map[string]int),
		listHits: make(map[string]int),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))

	return s
}

// Close shuts the server down.
func (s *ArchiveServer) Close() {
	s.server.Close()
}

// URL returns the archive base URL with a trailing slash.
func (s *ArchiveServer) URL() string {
	return s.server.URL + "/"
}

// AddFile registers a file at an absolute path, creating every ancestor
// directory entry on the way. Listing order is insertion order.
func (s *ArchiveServer) AddFile(filePath string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath = "/" + strings.TrimPrefix(filePath, "/")
	s.files[filePath] = data

	dir, name := path.Split(filePath)
	s.ensureDir(dir)
	s.addEntry(dir, name)
}

// AddDir registers an (empty) directory at an absolute path ending in "/".
func (s *ArchiveServer) AddDir(dirPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirPath = "/" + strings.TrimPrefix(dirPath, "/")
	if !strings.HasSuffix(dirPath, "/") {
		dirPath += "/"
	}
	s.ensureDir(dirPath)
}

// ForceStatus makes the server answer a path with a fixed status code and
// no body, e.g. to simulate a redirect or a server error.
func (s *ArchiveServer) ForceStatus(p string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses["/"+strings.TrimPrefix(p, "/")] = status
}

// FileHits reports how many times a file path was fetched.
func (s *ArchiveServer) FileHits(p string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fileHits["/"+strings.TrimPrefix(p, "/")]
}

// TotalFileHits reports the total number of file fetches served.
func (s *ArchiveServer) TotalFileHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.fileHits {
		total += n
	}

	return total
}

// ListHits reports how many times a directory listing was requested.
func (s *ArchiveServer) ListHits(p string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = "/" + strings.TrimPrefix(p, "/")
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}

	return s.listHits[p]
}

// ensureDir creates dir and threads it into its ancestors. Caller holds mu.
func (s *ArchiveServer) ensureDir(dir string) {
	for dir != "/" {
		if _, ok := s.dirs[dir]; !ok {
			s.dirs[dir] = []string{}
		}

		parent, name := path.Split(strings.TrimSuffix(dir, "/"))
		if parent == "" {
			parent = "/"
		}
		if _, ok := s.dirs[parent]; !ok {
			s.dirs[parent] = []string{}
		}
		s.addEntry(parent, name+"/")

		dir = parent
	}
}

// addEntry appends an entry to a directory if absent. Caller holds mu.
func (s *ArchiveServer) addEntry(dir, name string) {
	for _, existing := range s.dirs[dir] {
		if existing == name {
			return
		}
	}
	s.dirs[dir] = append(s.dirs[dir], name)
}

func (s *ArchiveServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := r.URL.Path

	if status, ok := s.statuses[p]; ok {
		if status >= 300 && status < 400 {
			w.Header().Set("Location", "/moved"+p)
		}
		w.WriteHeader(status)
		fmt.Fprintf(w, "<html><body>forced status %d</body></html>", status)

		return
	}

	if strings.HasSuffix(p, "/") {
		entries, ok := s.dirs[p]
		if !ok {
			http.NotFound(w, r)
			return
		}

		s.listHits[p]++
		w.Header().Set("Content-Type", "text/html")
		renderListing(w, p, entries)

		return
	}

	data, ok := s.files[p]
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.fileHits[p]++
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

// renderListing mimics an Apache mod_autoindex page: column-sort links, a
// parent-directory link, then one anchor per entry.
func renderListing(w http.ResponseWriter, dir string, entries []string) {
	fmt.Fprintf(w, "<html><head><title>Index of %s</title></head><body>\n", dir)
	fmt.Fprintf(w, "<h1>Index of %s</h1><table>\n", dir)
	fmt.Fprint(w, `<tr><th><a href="?C=N;O=D">Name</a></th><th><a href="?C=M;O=A">Last modified</a></th></tr>`+"\n")
	fmt.Fprint(w, `<tr><td><a href="../">Parent Directory</a></td><td></td></tr>`+"\n")

	for _, name := range entries {
		fmt.Fprintf(w, `<tr><td><a href="%s">%s</a></td><td>-</td></tr>`+"\n", name, name)
	}

	fmt.Fprint(w, "</table></body></html>\n")
}
