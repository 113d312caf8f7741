// Package lint checks a page layout and every catalog it references, so
// configuration mistakes surface before the dashboard serves a broken page.
package lint

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/catalog"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/compose"
)

// Report summarises a successful check.
type Report struct {
	Pages    int
	Catalogs []string
	Fields   int
}

// Run loads the layout at layoutPath, then every catalog referenced by a
// section or trend from catalogs. All failures are returned joined.
func Run(layoutPath string, catalogs fs.FS) (Report, error) {
	layout, err := compose.LoadLayout(layoutPath)
	if err != nil {
		return Report{}, err
	}
	return Check(layout, catalog.NewLoader(catalogs))
}

// Check validates the catalogs of an already loaded layout.
func Check(layout *compose.Layout, loader compose.CatalogLoader) (Report, error) {
	rep := Report{Pages: len(layout.Pages)}
	seen := map[string]bool{}
	var errs []error

	check := func(page, id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		cat, err := loader.Load(id)
		if err != nil {
			errs = append(errs, fmt.Errorf("page %q: %w", page, err))
			return
		}
		rep.Catalogs = append(rep.Catalogs, id)
		rep.Fields += len(cat.Fields)
	}

	for i := range layout.Pages {
		p := &layout.Pages[i]
		for _, s := range p.Sections() {
			check(p.ID, s.Catalog)
		}
		for _, tr := range p.Trends {
			check(p.ID, tr.Catalog)
		}
	}
	sort.Strings(rep.Catalogs)
	return rep, errors.Join(errs...)
}
