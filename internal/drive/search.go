package drive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	drive "google.golang.org/api/drive/v3"
)

const defaultSearchLimit = 50

var errTreeLimit = errors.New("tree limit reached")

// fileTypeQueries maps the file type categories accepted by Search to Drive query clauses.
var fileTypeQueries = map[string]string{
	"document":     "mimeType = 'application/vnd.google-apps.document'",
	"spreadsheet":  "mimeType = 'application/vnd.google-apps.spreadsheet'",
	"presentation": "mimeType = 'application/vnd.google-apps.presentation'",
	"folder":       "mimeType = '" + FolderMimeType + "'",
	"pdf":          "mimeType = 'application/pdf'",
	"image":        "mimeType contains 'image/'",
	"video":        "mimeType contains 'video/'",
	"audio":        "mimeType contains 'audio/'",
	"text":         "mimeType contains 'text/'",
}

// WhoAmI returns the user's profile, storage quota and accessible shared drives.
func (c *Client) WhoAmI(ctx context.Context) (*Profile, error) {
	about, err := c.service.About.Get().
		Context(ctx).
		Fields("user(displayName, emailAddress, photoLink), storageQuota(limit, usage, usageInDrive)").
		Do()
	if err != nil {
		return nil, classify("get profile", err)
	}

	profile := &Profile{SharedDrives: []SharedDrive{}}
	if about.User != nil {
		profile.User = User{
			DisplayName:  about.User.DisplayName,
			EmailAddress: about.User.EmailAddress,
			PhotoLink:    about.User.PhotoLink,
		}
	}
	if q := about.StorageQuota; q != nil {
		profile.StorageLimit = q.Limit
		profile.StorageUsage = q.Usage
		profile.UsageInDrive = q.UsageInDrive
	}

	err = c.service.Drives.List().
		Context(ctx).
		PageSize(100).
		Fields("nextPageToken, drives(id, name)").
		Pages(ctx, func(list *drive.DriveList) error {
			for _, d := range list.Drives {
				profile.SharedDrives = append(profile.SharedDrives, SharedDrive{ID: d.Id, Name: d.Name})
			}
			return nil
		})
	if err != nil {
		return nil, classify("list shared drives", err)
	}

	return profile, nil
}

// BuildSearchQuery turns search words and filters into a Drive query. Every
// word must match the name or the content; file types are alternatives.
func BuildSearchQuery(words string, fileTypes []string, folderID string) (string, error) {
	var clauses []string

	for _, w := range strings.Fields(words) {
		q := quote(w)
		clauses = append(clauses, fmt.Sprintf("(name contains %s or fullText contains %s)", q, q))
	}

	if len(fileTypes) > 0 {
		var alts []string
		for _, ft := range fileTypes {
			clause, ok := fileTypeQueries[strings.ToLower(strings.TrimSpace(ft))]
			if !ok {
				return "", fmt.Errorf("unknown file type %q (supported: %s)", ft, strings.Join(FileTypes(), ", "))
			}
			alts = append(alts, clause)
		}
		clauses = append(clauses, "("+strings.Join(alts, " or ")+")")
	}

	if folderID != "" {
		clauses = append(clauses, quote(folderID)+" in parents")
	}

	clauses = append(clauses, "trashed = false")
	return strings.Join(clauses, " and "), nil
}

// FileTypes returns the file type categories Search understands.
func FileTypes() []string {
	types := make([]string, 0, len(fileTypeQueries))
	for t := range fileTypeQueries {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Search finds files matching the user's words.
func (c *Client) Search(ctx context.Context, opts SearchOptions) ([]*FileInfo, error) {
	var folderID string
	if opts.FolderRef != "" {
		id, err := c.resolveFolder(ctx, opts.FolderRef, opts.SharedDriveID)
		if err != nil {
			return nil, err
		}
		folderID = id
	}

	q, err := BuildSearchQuery(opts.Query, opts.FileTypes, folderID)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > 1000 {
		limit = 1000
	}

	call := c.service.Files.List().
		Context(ctx).
		Q(q).
		PageSize(int64(limit)).
		OrderBy("modifiedTime desc").
		Fields("files(" + fileFields + ")").
		SupportsAllDrives(true)

	switch {
	case opts.SharedDriveID != "":
		call = call.Corpora("drive").DriveId(opts.SharedDriveID).IncludeItemsFromAllDrives(true)
	case opts.IncludeSharedDrives:
		call = call.Corpora("allDrives").IncludeItemsFromAllDrives(true)
	default:
		call = call.Corpora("user")
	}

	list, err := call.Do()
	if err != nil {
		return nil, classify("search files", err)
	}

	files := make([]*FileInfo, len(list.Files))
	for i, f := range list.Files {
		files[i] = convertToFileInfo(f)
	}
	return files, nil
}

// FileTree lists the user's files and arranges them by parent. The first
// root is My Drive; shared drives follow when requested. Files whose parent
// is not visible (shared with the user) are collected under a "Shared with me" root.
func (c *Client) FileTree(ctx context.Context, opts TreeOptions) ([]*TreeNode, error) {
	root, err := c.getFile(ctx, "root")
	if err != nil {
		return nil, err
	}
	myDrive := &TreeNode{FileInfo: &FileInfo{ID: root.Id, Name: "My Drive", MimeType: FolderMimeType}}
	roots := []*TreeNode{myDrive}

	nodes := map[string]*TreeNode{root.Id: myDrive}
	if opts.IncludeSharedDrives {
		err := c.service.Drives.List().Context(ctx).PageSize(100).Fields("nextPageToken, drives(id, name)").
			Pages(ctx, func(list *drive.DriveList) error {
				for _, d := range list.Drives {
					n := &TreeNode{FileInfo: &FileInfo{ID: d.Id, Name: d.Name, MimeType: FolderMimeType, DriveID: d.Id}}
					nodes[d.Id] = n
					roots = append(roots, n)
				}
				return nil
			})
		if err != nil {
			return nil, classify("list shared drives", err)
		}
	}

	corpora := "user"
	if opts.IncludeSharedDrives {
		corpora = "allDrives"
	}

	var files []*drive.File
	err = c.service.Files.List().
		Context(ctx).
		Q("trashed = false").
		Corpora(corpora).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(opts.IncludeSharedDrives).
		PageSize(1000).
		Fields("nextPageToken, files(" + fileFields + ")").
		Pages(ctx, func(list *drive.FileList) error {
			files = append(files, list.Files...)
			if opts.Limit > 0 && len(files) >= opts.Limit {
				files = files[:opts.Limit]
				return errTreeLimit
			}
			return nil
		})
	if err != nil && !errors.Is(err, errTreeLimit) {
		return nil, classify("list files", err)
	}

	for _, f := range files {
		nodes[f.Id] = &TreeNode{FileInfo: convertToFileInfo(f)}
	}

	var orphans []*TreeNode
	for _, f := range files {
		n := nodes[f.Id]
		attached := false
		for _, p := range f.Parents {
			if parent, ok := nodes[p]; ok {
				parent.Children = append(parent.Children, n)
				attached = true
				break
			}
		}
		if !attached {
			orphans = append(orphans, n)
		}
	}

	if len(orphans) > 0 {
		roots = append(roots, &TreeNode{
			FileInfo: &FileInfo{Name: "Shared with me", MimeType: FolderMimeType},
			Children: orphans,
		})
	}

	for _, r := range roots {
		sortTree(r)
	}
	return roots, nil
}

func sortTree(n *TreeNode) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, child := range n.Children {
		sortTree(child)
	}
}
