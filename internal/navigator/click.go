package navigator

import (
	"github.com/tomek7667/nasdash/internal/backend"
	"github.com/tomek7667/nasdash/internal/domain"
	"github.com/tomek7667/nasdash/internal/ui"
)

type ActionKind string

const (
	ActionImageModal ActionKind = "image-modal"
	ActionVideoModal ActionKind = "video-modal"
	ActionDownload   ActionKind = "download"
)

type Action struct {
	Kind  ActionKind `json:"kind"`
	Path  string     `json:"path"`
	URL   string     `json:"url"`
	Modal *ui.Modal  `json:"modal,omitempty"`
}

// HandleFileClick picks the reaction to a click on a file purely from the
// type tag of the listing: images and videos open a preview modal, anything
// else is downloaded.
func (n *Navigator) HandleFileClick(filePath string, fileType domain.FileType) Action {
	switch fileType {
	case domain.FileTypeImage:
		m := n.modals.Open(ui.ModalImage, backend.FileURL(filePath))
		return Action{Kind: ActionImageModal, Path: filePath, URL: m.Src, Modal: &m}
	case domain.FileTypeVideo:
		m := n.modals.Open(ui.ModalVideo, backend.FileURL(filePath))
		return Action{Kind: ActionVideoModal, Path: filePath, URL: m.Src, Modal: &m}
	default:
		return Action{Kind: ActionDownload, Path: filePath, URL: backend.DownloadURL(filePath)}
	}
}
