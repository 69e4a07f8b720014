package main

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

const layoutFile = "base.html"

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"qty": func(d decimal.Decimal) string { return d.String() },
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}

// viewRenderer is a gin HTMLRender. Each page is parsed together with the
// shared layout. When a directory is configured the pages are read from
// disk and reparsed whenever a file changes.
type viewRenderer struct {
	mu     sync.RWMutex
	pages  map[string]*template.Template
	fsys   fs.FS
	dir    string
	logger *zap.Logger
}

func newViewRenderer(dir string, logger *zap.Logger) (*viewRenderer, error) {
	v := &viewRenderer{dir: dir, logger: logger}
	if dir != "" {
		v.fsys = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, err
		}
		v.fsys = sub
	}
	if err := v.load(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *viewRenderer) load() error {
	names, err := fs.Glob(v.fsys, "*.html")
	if err != nil {
		return err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(v.fsys, layoutFile, name)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	v.mu.Lock()
	v.pages = pages
	v.mu.Unlock()
	return nil
}

// Instance implements render.HTMLRender.
func (v *viewRenderer) Instance(name string, data any) render.Render {
	v.mu.RLock()
	t, ok := v.pages[name]
	v.mu.RUnlock()
	if !ok {
		t = template.Must(template.New("missing").Parse(`template {{.}} not found`))
		return render.HTML{Template: t, Name: "missing", Data: name}
	}
	return render.HTML{Template: t, Name: "base", Data: data}
}

// watch reloads templates after changes in the template directory settle.
// It returns when done is closed.
func (v *viewRenderer) watch(done <-chan struct{}) error {
	if v.dir == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(v.dir); err != nil {
		w.Close()
		return err
	}
	v.logger.Info("watching templates", zap.String("dir", v.dir))

	go func() {
		defer w.Close()
		var pending time.Time
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.EqualFold(path.Ext(filepath.Base(ev.Name)), ".html") {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					pending = time.Now()
				}
			case <-ticker.C:
				if pending.IsZero() || time.Since(pending) < 300*time.Millisecond {
					continue
				}
				pending = time.Time{}
				if err := v.load(); err != nil {
					// keep serving the previous set
					v.logger.Warn("template reload failed", zap.Error(err))
					continue
				}
				v.logger.Info("templates reloaded")
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				v.logger.Warn("template watch error", zap.Error(err))
			}
		}
	}()
	return nil
}
