package navigator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/tomek7667/nasdash/internal/domain"
)

func parseFragment(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<body>" + markup + "</body>"))
	require.NoError(t, err)
	return doc
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool { return hasClass(n, class) }
}

func byAction(action string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		v, ok := attr(n, "data-action")
		return ok && v == action
	}
}

type shape struct {
	folderSection bool
	fileSection   bool
	emptyState    bool
}

func shapeOf(t *testing.T, markup string) shape {
	doc := parseFragment(t, markup)
	return shape{
		folderSection: len(findAll(doc, byClass("folders"))) > 0,
		fileSection:   len(findAll(doc, byClass("files"))) > 0,
		emptyState:    len(findAll(doc, byClass("empty-state"))) > 0,
	}
}

func TestRenderEmptyListing(t *testing.T) {
	out := string(RenderListing(domain.Listing{Folders: []domain.FolderEntry{}, Files: []domain.FileEntry{}}))
	assert.Equal(t, shape{emptyState: true}, shapeOf(t, out))
	assert.Contains(t, out, "This folder is empty")
	assert.NotContains(t, out, "section-header")
}

func TestRenderOneFolderTwoFiles(t *testing.T) {
	l := domain.Listing{
		Folders: []domain.FolderEntry{{Name: "Trips", Path: "photos/Trips"}},
		Files: []domain.FileEntry{
			{Name: "beach.jpg", Path: "photos/beach.jpg", Size: 2_621_440, Type: domain.FileTypeImage},
			{Name: "notes.txt", Path: "photos/notes.txt", Size: 512, Type: domain.FileTypeOther},
		},
	}
	out := string(RenderListing(l))
	doc := parseFragment(t, out)

	folders := findAll(doc, byClass("folder-item"))
	require.Len(t, folders, 1)
	action, _ := attr(folders[0], "data-action")
	assert.Equal(t, "navigate", action)
	require.Len(t, findAll(folders[0], byAction("browse")), 1)

	files := findAll(doc, byClass("file-item"))
	require.Len(t, files, 2)
	for _, f := range files {
		require.Len(t, findAll(f, byAction("open")), 1)
		require.Len(t, findAll(f, byAction("download")), 1)
	}
	imgs := findAll(files[0], func(n *html.Node) bool { return n.Data == "img" })
	require.Len(t, imgs, 1)
	src, _ := attr(imgs[0], "src")
	assert.Equal(t, "/file/photos/beach.jpg", src)
	assert.Len(t, findAll(files[1], byClass("file-icon")), 1)
	assert.Contains(t, out, "2.5 MB")
	assert.Contains(t, out, "512 B")
	assert.Contains(t, out, "📝")

	assert.Less(t, strings.Index(out, "folder-item"), strings.Index(out, "file-item"), "folders render before files")
}

func TestRenderVideoPreview(t *testing.T) {
	out := string(RenderListing(domain.Listing{Files: []domain.FileEntry{
		{Name: "clip.mp4", Path: "v/clip.mp4", Size: 10, Type: domain.FileTypeVideo},
	}}))
	doc := parseFragment(t, out)
	vids := findAll(doc, func(n *html.Node) bool { return n.Data == "video" })
	require.Len(t, vids, 1)
	_, muted := attr(vids[0], "muted")
	assert.True(t, muted)
	assert.Equal(t, shape{fileSection: true}, shapeOf(t, out))
}

func TestRenderIsPureInShape(t *testing.T) {
	cases := []domain.Listing{
		{},
		{Folders: []domain.FolderEntry{{Name: "a", Path: "a"}}},
		{Files: []domain.FileEntry{{Name: "b.zip", Path: "b.zip", Type: domain.FileTypeOther}}},
		{Folders: []domain.FolderEntry{{Name: "a", Path: "a"}}, Files: []domain.FileEntry{{Name: "b", Path: "b"}}},
	}
	for _, l := range cases {
		first, second := RenderListing(l), RenderListing(l)
		assert.Equal(t, first, second)
		want := shape{
			folderSection: len(l.Folders) > 0,
			fileSection:   len(l.Files) > 0,
			emptyState:    l.Empty(),
		}
		assert.Equal(t, want, shapeOf(t, string(first)))
	}
}

func TestRenderEscapesNames(t *testing.T) {
	evil := `x"><script>alert('pwn')</script>`
	out := string(RenderListing(domain.Listing{
		Folders: []domain.FolderEntry{{Name: evil, Path: "dir/" + evil}},
		Files:   []domain.FileEntry{{Name: evil + ".png", Path: evil + ".png", Type: domain.FileTypeImage}},
	}))
	assert.NotContains(t, out, "<script>")

	doc := parseFragment(t, out)
	assert.Empty(t, findAll(doc, func(n *html.Node) bool { return n.Data == "script" }))
	folder := findAll(doc, byClass("folder-item"))[0]
	p, _ := attr(folder, "data-path")
	assert.Equal(t, "dir/"+evil, p, "path round-trips through attribute escaping")
}

func TestFileIcon(t *testing.T) {
	assert.Equal(t, "📄", fileIcon("a.pdf"))
	assert.Equal(t, "📝", fileIcon("README.MD"))
	assert.Equal(t, "📦", fileIcon("b.rar"))
	assert.Equal(t, "🎵", fileIcon("c.wav"))
	assert.Equal(t, "📄", fileIcon("d.bin"))
}
