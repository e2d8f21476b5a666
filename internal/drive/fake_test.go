package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
)

// fakeDrive is a minimal in-memory stand-in for the Drive v3 REST API.
type fakeDrive struct {
	mu          sync.Mutex
	files       map[string]*drive.File
	content     map[string][]byte
	perms       map[string][]*drive.Permission
	drives      []*drive.Drive
	ignoreRange bool
	deny        map[string]bool
	queries     []string
	ranges      []string
	nextID      int
}

var nameInParents = regexp.MustCompile(`^name = '((?:[^'\\]|\\.)*)' and '([^']*)' in parents`)

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		files: map[string]*drive.File{
			"root-id": {Id: "root-id", Name: "My Drive", MimeType: FolderMimeType},
		},
		content: map[string][]byte{},
		perms:   map[string][]*drive.Permission{},
		deny:    map[string]bool{},
	}
}

func (f *fakeDrive) addFile(file *drive.File, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if content != nil {
		file.Size = int64(len(content))
		f.content[file.Id] = content
	}
	f.files[file.Id] = file
}

func (f *fakeDrive) contentOf(id string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content[id]
}

// newTestClient starts the fake and returns a client talking to it.
func newTestClient(t *testing.T, fake *fakeDrive, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	opts.HTTPClient = srv.Client()
	opts.Endpoint = srv.URL + "/"
	if opts.SourceClient == nil {
		opts.SourceClient = srv.Client()
	}
	c, err := NewClient(context.Background(), opts)
	require.NoError(t, err)
	return c
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.URL.Path == "/about":
		writeJSON(w, &drive.About{
			User:         &drive.User{DisplayName: "Ada", EmailAddress: "ada@example.com"},
			StorageQuota: &drive.AboutStorageQuota{Limit: 1000, Usage: 250, UsageInDrive: 200},
		})

	case r.URL.Path == "/drives":
		writeJSON(w, &drive.DriveList{Drives: f.drives})

	case r.URL.Path == "/files" && r.Method == http.MethodGet:
		f.listFiles(w, r)

	case r.URL.Path == "/files" && r.Method == http.MethodPost:
		var file drive.File
		if err := json.NewDecoder(r.Body).Decode(&file); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.create(w, &file, nil)

	case r.URL.Path == "/upload/drive/v3/files" && r.Method == http.MethodPost:
		f.upload(w, r)

	case len(parts) == 2 && parts[0] == "files":
		f.fileByID(w, r, parts[1])

	case len(parts) >= 3 && parts[0] == "files" && parts[2] == "permissions":
		f.permissions(w, r, parts[1], parts[3:])

	default:
		writeError(w, http.StatusNotFound, "unknown path "+r.URL.Path)
	}
}

func (f *fakeDrive) listFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	f.queries = append(f.queries, q)

	var out []*drive.File
	if m := nameInParents.FindStringSubmatch(q); m != nil {
		name := strings.NewReplacer(`\'`, `'`, `\\`, `\`).Replace(m[1])
		parent := m[2]
		if parent == "root" {
			parent = "root-id"
		}
		for _, file := range f.files {
			if file.Name != name {
				continue
			}
			for _, p := range file.Parents {
				if p == parent {
					out = append(out, file)
				}
			}
		}
	} else {
		for id, file := range f.files {
			if id != "root-id" {
				out = append(out, file)
			}
		}
	}
	writeJSON(w, &drive.FileList{Files: out})
}

func (f *fakeDrive) create(w http.ResponseWriter, file *drive.File, content []byte) {
	f.nextID++
	file.Id = fmt.Sprintf("new-%d", f.nextID)
	for i, p := range file.Parents {
		if p == "root" {
			file.Parents[i] = "root-id"
		}
	}
	if content != nil {
		file.Size = int64(len(content))
		f.content[file.Id] = content
	}
	f.files[file.Id] = file
	writeJSON(w, file)
}

func (f *fakeDrive) upload(w http.ResponseWriter, r *http.Request) {
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mr := multipart.NewReader(r.Body, params["boundary"])

	meta, err := mr.NextPart()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var file drive.File
	if err := json.NewDecoder(meta).Decode(&file); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	media, err := mr.NextPart()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	content, _ := io.ReadAll(media)
	f.create(w, &file, content)
}

func (f *fakeDrive) fileByID(w http.ResponseWriter, r *http.Request, id string) {
	if id == "root" {
		id = "root-id"
	}
	if f.deny[id] {
		writeError(w, http.StatusForbidden, "The user does not have sufficient permissions for this file.")
		return
	}
	file, ok := f.files[id]
	if !ok {
		writeError(w, http.StatusNotFound, "File not found: "+id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("alt") == "media" {
			f.serveContent(w, r, id)
			return
		}
		writeJSON(w, file)

	case http.MethodPatch:
		var update drive.File
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if update.Name != "" {
			file.Name = update.Name
		}
		q := r.URL.Query()
		if rm := q.Get("removeParents"); rm != "" {
			remove := strings.Split(rm, ",")
			var kept []string
			for _, p := range file.Parents {
				if !contains(remove, p) {
					kept = append(kept, p)
				}
			}
			file.Parents = kept
		}
		if add := q.Get("addParents"); add != "" {
			if add == "root" {
				add = "root-id"
			}
			file.Parents = append(file.Parents, add)
		}
		writeJSON(w, file)

	default:
		writeError(w, http.StatusMethodNotAllowed, r.Method)
	}
}

func (f *fakeDrive) serveContent(w http.ResponseWriter, r *http.Request, id string) {
	data := f.content[id]
	rng := r.Header.Get("Range")
	f.ranges = append(f.ranges, rng)

	if rng == "" || f.ignoreRange {
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
		return
	}

	var start, end int64
	if _, err := fmt.Sscanf(rng, "bytes=%d-%d", &start, &end); err != nil {
		writeError(w, http.StatusBadRequest, "bad range")
		return
	}
	size := int64(len(data))
	if start >= size {
		writeError(w, http.StatusRequestedRangeNotSatisfiable, "range not satisfiable")
		return
	}
	if end >= size {
		end = size - 1
	}
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.WriteHeader(http.StatusPartialContent)
	_, _ = w.Write(data[start : end+1])
}

func (f *fakeDrive) permissions(w http.ResponseWriter, r *http.Request, fileID string, rest []string) {
	if _, ok := f.files[fileID]; !ok {
		writeError(w, http.StatusNotFound, "File not found: "+fileID)
		return
	}

	switch {
	case r.Method == http.MethodGet && len(rest) == 0:
		writeJSON(w, &drive.PermissionList{Permissions: f.perms[fileID]})

	case r.Method == http.MethodPost && len(rest) == 0:
		var p drive.Permission
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.HasSuffix(p.EmailAddress, "@invalid") {
			writeError(w, http.StatusBadRequest, "invalid sharing request")
			return
		}
		p.Id = fmt.Sprintf("perm-%d", len(f.perms[fileID])+1)
		f.perms[fileID] = append(f.perms[fileID], &p)
		writeJSON(w, &p)

	case r.Method == http.MethodPatch && len(rest) == 1:
		var update drive.Permission
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		for _, p := range f.perms[fileID] {
			if p.Id == rest[0] {
				p.Role = update.Role
				writeJSON(w, p)
				return
			}
		}
		writeError(w, http.StatusNotFound, "Permission not found")

	default:
		writeError(w, http.StatusMethodNotAllowed, r.Method)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
