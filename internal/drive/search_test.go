package drive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
)

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name      string
		words     string
		fileTypes []string
		folderID  string
		want      string
		wantErr   bool
	}{
		{
			name:  "no filters",
			words: "",
			want:  "trashed = false",
		},
		{
			name:  "words are combined with and",
			words: "monthly  report",
			want:  "(name contains 'monthly' or fullText contains 'monthly') and (name contains 'report' or fullText contains 'report') and trashed = false",
		},
		{
			name:  "quotes are escaped",
			words: "bob's",
			want:  `(name contains 'bob\'s' or fullText contains 'bob\'s') and trashed = false`,
		},
		{
			name:      "file types are alternatives",
			fileTypes: []string{"pdf", "Spreadsheet"},
			want:      "(mimeType = 'application/pdf' or mimeType = 'application/vnd.google-apps.spreadsheet') and trashed = false",
		},
		{
			name:     "folder restriction",
			words:    "roadmap",
			folderID: "folder-1",
			want:     "(name contains 'roadmap' or fullText contains 'roadmap') and 'folder-1' in parents and trashed = false",
		},
		{
			name:      "unknown file type",
			fileTypes: []string{"hologram"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSearchQuery(tt.words, tt.fileTypes, tt.folderID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch(t *testing.T) {
	fake := newFakeDrive()
	fake.addFile(&drive.File{Id: "f-reports", Name: "Reports", MimeType: FolderMimeType, Parents: []string{"root-id"}}, nil)
	fake.addFile(&drive.File{Id: "f-1", Name: "report.pdf", Parents: []string{"f-reports"}}, []byte("x"))
	c := newTestClient(t, fake, Options{})

	files, err := c.Search(context.Background(), SearchOptions{Query: "report", FolderRef: "Reports", FileTypes: []string{"pdf"}})
	require.NoError(t, err)
	assert.NotEmpty(t, files)

	last := fake.queries[len(fake.queries)-1]
	assert.Contains(t, last, "'f-reports' in parents")
	assert.Contains(t, last, "mimeType = 'application/pdf'")
}

func TestWhoAmI(t *testing.T) {
	fake := newFakeDrive()
	fake.drives = []*drive.Drive{{Id: "sd-1", Name: "Team"}}
	c := newTestClient(t, fake, Options{})

	profile, err := c.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", profile.User.EmailAddress)
	assert.Equal(t, int64(1000), profile.StorageLimit)
	assert.Equal(t, int64(250), profile.StorageUsage)
	assert.Equal(t, []SharedDrive{{ID: "sd-1", Name: "Team"}}, profile.SharedDrives)
}

func TestFileTree(t *testing.T) {
	fake := newFakeDrive()
	fake.drives = []*drive.Drive{{Id: "sd-1", Name: "Team"}}
	fake.addFile(&drive.File{Id: "f-b", Name: "b.txt", Parents: []string{"root-id"}}, []byte("b"))
	fake.addFile(&drive.File{Id: "f-dir", Name: "Zeta", MimeType: FolderMimeType, Parents: []string{"root-id"}}, nil)
	fake.addFile(&drive.File{Id: "f-a", Name: "A.txt", Parents: []string{"root-id"}}, []byte("a"))
	fake.addFile(&drive.File{Id: "f-in", Name: "inner.txt", Parents: []string{"f-dir"}}, []byte("i"))
	fake.addFile(&drive.File{Id: "f-team", Name: "plan.txt", Parents: []string{"sd-1"}, DriveId: "sd-1"}, []byte("p"))
	fake.addFile(&drive.File{Id: "f-shared", Name: "gift.txt", Parents: []string{"someone-else"}}, []byte("g"))
	c := newTestClient(t, fake, Options{})

	roots, err := c.FileTree(context.Background(), TreeOptions{IncludeSharedDrives: true})
	require.NoError(t, err)
	require.Len(t, roots, 3)

	myDrive := roots[0]
	assert.Equal(t, "My Drive", myDrive.Name)
	names := make([]string, 0, len(myDrive.Children))
	for _, child := range myDrive.Children {
		names = append(names, child.Name)
	}
	assert.Equal(t, []string{"Zeta", "A.txt", "b.txt"}, names, "folders first, then case-insensitive by name")
	require.Len(t, myDrive.Children[0].Children, 1)
	assert.Equal(t, "inner.txt", myDrive.Children[0].Children[0].Name)

	assert.Equal(t, "Team", roots[1].Name)
	require.Len(t, roots[1].Children, 1)
	assert.Equal(t, "plan.txt", roots[1].Children[0].Name)

	assert.Equal(t, "Shared with me", roots[2].Name)
	require.Len(t, roots[2].Children, 1)
	assert.Equal(t, "gift.txt", roots[2].Children[0].Name)
}

func TestFileTree_Limit(t *testing.T) {
	fake := newFakeDrive()
	for _, id := range []string{"1", "2", "3", "4"} {
		fake.addFile(&drive.File{Id: "f-" + id, Name: id + ".txt", Parents: []string{"root-id"}}, []byte(id))
	}
	c := newTestClient(t, fake, Options{})

	roots, err := c.FileTree(context.Background(), TreeOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Len(t, roots[0].Children, 2)
}
