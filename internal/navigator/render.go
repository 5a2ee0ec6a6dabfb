package navigator

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/tomek7667/nasdash/internal/backend"
	"github.com/tomek7667/nasdash/internal/domain"
)

const (
	initialContent template.HTML = `<div class="empty-state"><div class="icon">🗂️</div><p>Select a folder to browse its contents</p></div>`
	errorContent   template.HTML = `<div class="empty-state"><div class="icon">⚠️</div><p>Error loading folder contents</p></div>`
)

type fileView struct {
	Name string
	Path string
	Type string
	URL  string
	Icon string
	Size string
}

type listingView struct {
	Empty   bool
	Folders []domain.FolderEntry
	Files   []fileView
}

var listingTmpl = template.Must(template.New("listing").Parse(`
{{- if .Empty -}}
<div class="empty-state"><div class="icon">📂</div><p>This folder is empty</p></div>
{{- else -}}
{{- if .Folders}}
<h3 class="section-header">📁 Folders</h3>
<div class="mixed-grid folders">
{{- range .Folders}}
  <div class="folder-item" data-action="navigate" data-path="{{.Path}}">
    <div class="folder-icon">📁</div>
    <div class="filename">{{.Name}}</div>
    <button class="download-btn" data-action="browse" data-path="{{.Path}}">📦 Browse</button>
  </div>
{{- end}}
</div>
{{- end}}
{{- if .Files}}
<h3 class="section-header">📄 Files</h3>
<div class="mixed-grid files">
{{- range .Files}}
  <div class="file-item">
    <div class="media-container" data-action="open" data-path="{{.Path}}" data-type="{{.Type}}">
      {{- if eq .Type "image"}}
      <img src="{{.URL}}" alt="{{.Name}}" loading="lazy">
      {{- else if eq .Type "video"}}
      <video src="{{.URL}}" muted preload="metadata"></video>
      {{- else}}
      <div class="file-icon">{{.Icon}}</div>
      {{- end}}
    </div>
    <div class="filename">{{.Name}}</div>
    <div class="filesize">{{.Size}}</div>
    <button class="download-btn" data-action="download" data-path="{{.Path}}">⬇️ Download</button>
  </div>
{{- end}}
</div>
{{- end}}
{{- end}}`))

// RenderListing renders folders first, then files. An empty listing renders
// only the empty-state placeholder.
func RenderListing(l domain.Listing) template.HTML {
	v := listingView{
		Empty:   l.Empty(),
		Folders: l.Folders,
		Files:   make([]fileView, 0, len(l.Files)),
	}
	for _, f := range l.Files {
		fv := fileView{
			Name: f.Name,
			Path: f.Path,
			Type: string(f.Type),
			Size: FormatSize(f.Size),
		}
		switch f.Type {
		case domain.FileTypeImage, domain.FileTypeVideo:
			fv.URL = backend.FileURL(f.Path)
		default:
			fv.Type = string(domain.FileTypeOther)
			fv.Icon = fileIcon(f.Name)
		}
		v.Files = append(v.Files, fv)
	}

	var buf bytes.Buffer
	if err := listingTmpl.Execute(&buf, v); err != nil {
		return errorContent
	}
	return template.HTML(buf.String())
}

func fileIcon(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasSuffix(name, ".txt"), strings.HasSuffix(name, ".md"):
		return "📝"
	case strings.HasSuffix(name, ".zip"), strings.HasSuffix(name, ".rar"):
		return "📦"
	case strings.HasSuffix(name, ".mp3"), strings.HasSuffix(name, ".wav"):
		return "🎵"
	default:
		return "📄"
	}
}
