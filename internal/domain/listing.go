package domain

import (
	"encoding/json"
	"path"
	"strings"
)

type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
	FileTypeOther FileType = "other"
)

var (
	imageExts = map[string]struct{}{
		".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {},
	}
	videoExts = map[string]struct{}{
		".mp4": {}, ".webm": {}, ".ogg": {}, ".avi": {}, ".mov": {}, ".mkv": {}, ".flv": {},
	}
)

// FileTypeOf categorizes a file name by its lowercased extension.
func FileTypeOf(name string) FileType {
	ext := strings.ToLower(path.Ext(name))
	if _, ok := imageExts[ext]; ok {
		return FileTypeImage
	}
	if _, ok := videoExts[ext]; ok {
		return FileTypeVideo
	}
	return FileTypeOther
}

func (t *FileType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseFileType(s)
	return nil
}

// ParseFileType maps unknown type tags to FileTypeOther.
func ParseFileType(s string) FileType {
	switch FileType(s) {
	case FileTypeImage, FileTypeVideo:
		return FileType(s)
	default:
		return FileTypeOther
	}
}

type FolderEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type FileEntry struct {
	Name string   `json:"name"`
	Path string   `json:"path"`
	Size int64    `json:"size"`
	Type FileType `json:"type"`
}

type Listing struct {
	Folders []FolderEntry `json:"folders"`
	Files   []FileEntry   `json:"files"`
}

func (l Listing) Empty() bool {
	return len(l.Folders) == 0 && len(l.Files) == 0
}
