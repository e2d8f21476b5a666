package drive_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	drivev3 "google.golang.org/api/drive/v3"

	"github.com/teemow/driveagent/internal/drive"
	"github.com/teemow/driveagent/internal/server"
)

// fakeDrive serves the slice of the Drive v3 REST API the tools exercise.
type fakeDrive struct {
	mu       sync.Mutex
	files    map[string]*drivev3.File
	content  map[string][]byte
	perms    map[string][]*drivev3.Permission
	requests int
	nextID   int
}

var nameQuery = regexp.MustCompile(`^name = '([^']*)' and '([^']*)' in parents`)

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		files: map[string]*drivev3.File{
			"root-id": {Id: "root-id", Name: "My Drive", MimeType: drive.FolderMimeType},
		},
		content: map[string][]byte{},
		perms:   map[string][]*drivev3.Permission{},
	}
}

func (f *fakeDrive) addFile(file *drivev3.File, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if content != nil {
		file.Size = int64(len(content))
		f.content[file.Id] = content
	}
	f.files[file.Id] = file
}

func (f *fakeDrive) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// install points the default account of sc at the fake.
func (f *fakeDrive) install(t *testing.T, sc *server.ServerContext) {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client, err := drive.NewClient(context.Background(), drive.Options{
		HTTPClient:          srv.Client(),
		Endpoint:            srv.URL + "/",
		InlineDownloadLimit: 16,
	})
	require.NoError(t, err)
	sc.SetDriveClientForAccount("default", client)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	})
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/about":
		writeJSON(w, &drivev3.About{
			User:         &drivev3.User{DisplayName: "Ada", EmailAddress: "ada@example.com"},
			StorageQuota: &drivev3.AboutStorageQuota{Usage: 42},
		})
	case r.URL.Path == "/drives":
		writeJSON(w, &drivev3.DriveList{Drives: []*drivev3.Drive{{Id: "team-drive", Name: "Team"}}})
	case r.URL.Path == "/files" && r.Method == http.MethodGet:
		f.list(w, r.URL.Query().Get("q"))
	case r.URL.Path == "/files" && r.Method == http.MethodPost:
		var file drivev3.File
		if err := json.NewDecoder(r.Body).Decode(&file); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.nextID++
		file.Id = fmt.Sprintf("new-%d", f.nextID)
		f.files[file.Id] = &file
		writeJSON(w, &file)
	case len(parts) == 2 && parts[0] == "files":
		f.get(w, r, parts[1])
	case len(parts) == 3 && parts[0] == "files" && parts[2] == "permissions":
		f.permissions(w, r, parts[1])
	default:
		writeError(w, http.StatusNotFound, "unknown path "+r.URL.Path)
	}
}

func (f *fakeDrive) list(w http.ResponseWriter, q string) {
	var out []*drivev3.File
	m := nameQuery.FindStringSubmatch(q)
	for id, file := range f.files {
		if id == "root-id" {
			continue
		}
		if m != nil && file.Name != m[1] {
			continue
		}
		out = append(out, file)
	}
	writeJSON(w, &drivev3.FileList{Files: out})
}

func (f *fakeDrive) get(w http.ResponseWriter, r *http.Request, id string) {
	if id == "root" {
		id = "root-id"
	}
	file, ok := f.files[id]
	if !ok {
		writeError(w, http.StatusNotFound, "File not found: "+id)
		return
	}
	if r.Method == http.MethodPatch {
		var update drivev3.File
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if update.Name != "" {
			file.Name = update.Name
		}
		writeJSON(w, file)
		return
	}
	if r.URL.Query().Get("alt") != "media" {
		writeJSON(w, file)
		return
	}

	data := f.content[id]
	var start, end int64
	if _, err := fmt.Sscanf(r.Header.Get("Range"), "bytes=%d-%d", &start, &end); err != nil {
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
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

func (f *fakeDrive) permissions(w http.ResponseWriter, r *http.Request, fileID string) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, &drivev3.PermissionList{Permissions: f.perms[fileID]})
	case http.MethodPost:
		var p drivev3.Permission
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
	default:
		writeError(w, http.StatusMethodNotAllowed, r.Method)
	}
}
