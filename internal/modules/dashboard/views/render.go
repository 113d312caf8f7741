package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"

	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/compose"
)

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// NavItem is one page link in the top navigation.
type NavItem struct {
	ID     string
	Title  string
	Icon   string
	Active bool
}

// PageData is the view model for a full page.
type PageData struct {
	Nav  []NavItem
	Page compose.PageView
}

func RenderPage(w io.Writer, data *PageData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "page.html", data)
}

// RenderPagePartial executes only the page body into w, for in-place refresh.
func RenderPagePartial(w io.Writer, page *compose.PageView) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/page_body.html", page)
}
