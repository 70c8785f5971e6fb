package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/gofiber/template/django/v3"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer renders the embedded email templates with the django engine.
type Renderer struct {
	engine *django.Engine
	once   sync.Once
	err    error
}

// NewRenderer builds a renderer over the embedded templates.
func NewRenderer() *Renderer {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return &Renderer{err: err}
	}
	return NewRendererFS(sub)
}

// NewRendererFS renders templates with the .html extension found in fsys.
func NewRendererFS(fsys fs.FS) *Renderer {
	return &Renderer{
		engine: django.NewFileSystem(http.FS(fsys), ".html"),
	}
}

func (r *Renderer) load() error {
	r.once.Do(func() {
		if r.err == nil {
			r.err = r.engine.Load()
		}
	})
	return r.err
}

func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	if err := r.load(); err != nil {
		return "", fmt.Errorf("load email templates: %w", err)
	}

	var buf bytes.Buffer
	if err := r.engine.Render(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
