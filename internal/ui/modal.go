package ui

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/google/uuid"
)

type ModalKind string

const (
	ModalImage ModalKind = "image"
	ModalVideo ModalKind = "video"
)

type Modal struct {
	ID   string    `json:"id"`
	Kind ModalKind `json:"kind"`
	Src  string    `json:"src"`
}

// Modals owns the single full-screen preview overlay. Opening a modal while
// another is shown replaces it.
type Modals struct {
	mu      sync.Mutex
	current *Modal
}

func NewModals() *Modals {
	return &Modals{}
}

func (m *Modals) Open(kind ModalKind, src string) Modal {
	modal := Modal{ID: uuid.NewString(), Kind: kind, Src: src}
	m.mu.Lock()
	m.current = &modal
	m.mu.Unlock()
	return modal
}

func (m *Modals) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.ID != id {
		return false
	}
	m.current = nil
	return true
}

func (m *Modals) Current() (Modal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Modal{}, false
	}
	return *m.current, true
}

var modalTmpl = template.Must(template.New("modal").Parse(`<div class="modal" data-id="{{.ID}}" data-action="close-modal">
  <div class="modal-content {{.Kind}}-modal">
    <button class="modal-close" data-action="close-modal" aria-label="Close">&times;</button>
    {{- if eq .Kind "image"}}
    <img src="{{.Src}}" alt="Image preview">
    {{- else}}
    <video controls>
      <source src="{{.Src}}" type="video/mp4">
      Your browser does not support the video tag.
    </video>
    {{- end}}
  </div>
</div>`))

func (m *Modals) Render() template.HTML {
	modal, ok := m.Current()
	if !ok {
		return ""
	}
	var buf bytes.Buffer
	if err := modalTmpl.Execute(&buf, modal); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
