// Package views is the default template set for restblog. Pages are html/template
// files embedded in the binary and exposed to the App as templ components.
package views

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/restblog"
)

// Page names accepted by Renderer.Component.
const (
	ViewIndex     = "index"
	ViewPost      = "post"
	ViewAbout     = "about"
	ViewContact   = "contact"
	ViewMakePost  = "make-post"
	ViewNotFound  = "notfound"
	ViewForbidden = "forbidden"
	ViewError     = "error"
)

var pages = []string{
	ViewIndex, ViewPost, ViewAbout, ViewContact, ViewMakePost,
	ViewNotFound, ViewForbidden, ViewError,
}

// Renderer turns a view name and a data mapping into HTML.
type Renderer struct {
	cfg   restblog.SiteConfig
	pages map[string]*template.Template
	now   func() time.Time
}

// New parses every page against the shared layout. It fails if any template
// is malformed.
func New(cfg restblog.SiteConfig) (*Renderer, error) {
	funcs := template.FuncMap{
		"body":      RenderBody,
		"postURL":   restblog.PostPath,
		"editURL":   restblog.EditPath,
		"deleteURL": restblog.DeletePath,
	}
	base, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{cfg: cfg, pages: make(map[string]*template.Template, len(pages)), now: time.Now}
	for _, name := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t.Lookup("layout")
	}
	return r, nil
}

// Component renders page name with data. Site and Year are added to data for
// the layout.
func (r *Renderer) Component(name string, data map[string]any) templ.Component {
	t, ok := r.pages[name]
	if !ok {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return fmt.Errorf("views: unknown page %q", name)
		})
	}
	ctx := map[string]any{
		"Site": r.cfg,
		"Year": r.now().Year(),
	}
	for k, v := range data {
		ctx[k] = v
	}
	return templ.FromGoHTML(t, ctx)
}

// Funcs adapts the renderer to the App's view contract.
func (r *Renderer) Funcs() restblog.ViewFuncs {
	return restblog.ViewFuncs{
		Home: func(posts []restblog.BlogPost, flashes []string) templ.Component {
			return r.Component(ViewIndex, map[string]any{"Posts": posts, "Flashes": flashes})
		},
		Post: func(post restblog.BlogPost) templ.Component {
			return r.Component(ViewPost, map[string]any{"Post": post})
		},
		About: func() templ.Component {
			return r.Component(ViewAbout, nil)
		},
		Contact: func() templ.Component {
			return r.Component(ViewContact, nil)
		},
		PostForm: func(form restblog.PostFormView) templ.Component {
			return r.Component(ViewMakePost, map[string]any{"Form": form})
		},
		NotFound: func() templ.Component {
			return r.Component(ViewNotFound, nil)
		},
		Forbidden: func() templ.Component {
			return r.Component(ViewForbidden, nil)
		},
		ServerError: func() templ.Component {
			return r.Component(ViewError, nil)
		},
	}
}

// StaticFS returns the stylesheet directory for restblog.WithAssets.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
