package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/catalog"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/compose"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/views"
	"github.com/mvhdi/Weather-Station/internal/source"
	"github.com/mvhdi/Weather-Station/internal/utils"
)

type pageSummary struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Icon   string   `json:"icon,omitempty"`
	Trends []string `json:"trends,omitempty"`
}

func (c *dashboardControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	if len(c.layout.Pages) == 0 {
		utils.WriteError(w, http.StatusNotFound, "no pages configured")
		return
	}
	http.Redirect(w, r, "/pages/"+c.layout.Pages[0].ID, http.StatusFound)
}

// page resolves the {id} path value, writing a 404 when it names no page.
func (c *dashboardControllerImpl) page(w http.ResponseWriter, r *http.Request) (*compose.Page, bool) {
	id := r.PathValue("id")
	page, ok := c.layout.Page(id)
	if !ok {
		utils.WriteError(w, http.StatusNotFound, fmt.Sprintf("unknown page %q", id))
		return nil, false
	}
	return page, true
}

// compose builds the page. Section failures are already logged and rendered
// as placeholders, so the view is always usable.
func (c *dashboardControllerImpl) compose(r *http.Request, page *compose.Page) compose.PageView {
	view, err := c.composer.ComposePage(r.Context(), page)
	if err != nil {
		c.logger.Debug("page composed with failures", "page", page.ID, "error", err)
	}
	return view
}

func (c *dashboardControllerImpl) nav(active string) []views.NavItem {
	items := make([]views.NavItem, 0, len(c.layout.Pages))
	for _, p := range c.layout.Pages {
		items = append(items, views.NavItem{ID: p.ID, Title: p.Title, Icon: p.Icon, Active: p.ID == active})
	}
	return items
}

func (c *dashboardControllerImpl) handlePage(w http.ResponseWriter, r *http.Request) {
	page, ok := c.page(w, r)
	if !ok {
		return
	}
	data := views.PageData{Nav: c.nav(page.ID), Page: c.compose(r, page)}

	var buf bytes.Buffer
	if err := views.RenderPage(&buf, &data); err != nil {
		c.logger.Error("page render failed", "page", page.ID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *dashboardControllerImpl) handlePagePartial(w http.ResponseWriter, r *http.Request) {
	page, ok := c.page(w, r)
	if !ok {
		return
	}
	view := c.compose(r, page)

	var buf bytes.Buffer
	if err := views.RenderPagePartial(&buf, &view); err != nil {
		c.logger.Error("page partial render failed", "page", page.ID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *dashboardControllerImpl) handlePageList(w http.ResponseWriter, r *http.Request) {
	out := make([]pageSummary, 0, len(c.layout.Pages))
	for _, p := range c.layout.Pages {
		s := pageSummary{ID: p.ID, Title: p.Title, Icon: p.Icon}
		for _, tr := range p.Trends {
			s.Trends = append(s.Trends, tr.ID)
		}
		out = append(out, s)
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// handlePageJSON answers 200 even when sections failed: the failures are part
// of the view.
func (c *dashboardControllerImpl) handlePageJSON(w http.ResponseWriter, r *http.Request) {
	page, ok := c.page(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, c.compose(r, page))
}

func (c *dashboardControllerImpl) handleTrend(w http.ResponseWriter, r *http.Request) {
	page, ok := c.page(w, r)
	if !ok {
		return
	}
	trendID := r.PathValue("trend")
	tv, err := c.composer.Trend(r.Context(), page, trendID)
	if err != nil {
		status, msg := trendFailure(err, trendID)
		c.logger.Warn("trend failed", "page", page.ID, "trend", trendID, "status", status, "error", err)
		utils.WriteError(w, status, msg)
		return
	}

	var buf bytes.Buffer
	if err := views.RenderTrend(&buf, tv); err != nil {
		c.logger.Error("trend render failed", "page", page.ID, "trend", trendID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func trendFailure(err error, trendID string) (int, string) {
	switch {
	case errors.Is(err, compose.ErrTrendNotFound):
		return http.StatusNotFound, fmt.Sprintf("unknown trend %q", trendID)
	case source.IsConnectionFailure(err):
		return http.StatusServiceUnavailable, "data unavailable"
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrMalformedEntry):
		return http.StatusInternalServerError, "trend catalog could not be loaded"
	default:
		return http.StatusInternalServerError, "failed to load trend data"
	}
}
