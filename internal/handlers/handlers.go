package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"subcatalog/internal/catalog"
	"subcatalog/internal/reconcile"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	engine *reconcile.Engine
	// passes against the same store must not interleave
	mu sync.Mutex
}

func RegisterRoutes(api *echo.Group, engine *reconcile.Engine) {
	h := &CatalogHandler{engine: engine}

	api.GET("/stats", h.Stats)
	api.GET("/targets", h.ListTargets)
	api.GET("/targets/:name", h.GetTarget)
	api.POST("/targets", h.ImportTargets)
	api.POST("/tags", h.ImportTags)
	api.POST("/verify", h.Verify)
}

func (h *CatalogHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	store := h.engine.Store()
	return c.JSON(http.StatusOK, map[string]any{
		"targets":  store.CountTargets(ctx),
		"verified": store.CountVerified(ctx),
		"seeds":    len(store.SeedDomainNames(ctx)),
	})
}

// ListTargets exports names matching the optional ?where= expression,
// e.g. "validated = true and tags contains [high]".
func (h *CatalogHandler) ListTargets(c echo.Context) error {
	names, err := h.engine.ExportWhere(c.Request().Context(), c.QueryParam("where"))
	if errors.Is(err, catalog.ErrInvalidFilter) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, names)
}

func (h *CatalogHandler) GetTarget(c echo.Context) error {
	target, ok := h.engine.Store().Target(c.Request().Context(), c.Param("name"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Target not found"})
	}
	return c.JSON(http.StatusOK, target)
}

// ImportTargets accepts {"names": [...]} as JSON or one name per line as
// plain text. With ?extract=true free text is scanned for hostnames.
func (h *CatalogHandler) ImportTargets(c echo.Context) error {
	var req struct {
		Names []string `json:"names"`
	}
	lines, err := readLines(c, &req, func() []string { return req.Names })
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := c.Request().Context()
	if c.QueryParam("extract") == "true" {
		return c.JSON(http.StatusOK, h.engine.ImportTargetText(ctx, lines))
	}
	return c.JSON(http.StatusOK, h.engine.ImportTargets(ctx, lines))
}

// ImportTags accepts scanner result lines as plain text or {"lines": [...]}.
func (h *CatalogHandler) ImportTags(c echo.Context) error {
	var req struct {
		Lines []string `json:"lines"`
	}
	lines, err := readLines(c, &req, func() []string { return req.Lines })
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return c.JSON(http.StatusOK, h.engine.ImportTags(c.Request().Context(), lines))
}

func (h *CatalogHandler) Verify(c echo.Context) error {
	var req struct {
		Mode string `json:"mode"` // all | unverified
		Date string `json:"date"` // YYYY-MM-DD, unverified only
	}
	if err := c.Bind(&req); err != nil {
		return err
	}

	var date time.Time
	if req.Date != "" {
		if req.Mode != "unverified" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "date can only be used with mode unverified"})
		}
		var err error
		if date, err = time.Parse(time.DateOnly, req.Date); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": req.Date + " is not a valid date, use YYYY-MM-DD format"})
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := c.Request().Context()
	switch {
	case req.Mode == "all":
		return c.JSON(http.StatusOK, h.engine.ValidateAll(ctx))
	case req.Mode == "unverified" && req.Date != "":
		return c.JSON(http.StatusOK, h.engine.ValidateUnverifiedOnDate(ctx, date))
	case req.Mode == "unverified":
		return c.JSON(http.StatusOK, h.engine.ValidateUnverified(ctx))
	}
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "mode must be all or unverified"})
}

// readLines binds a JSON body into req, or splits a text body into lines.
func readLines(c echo.Context, req any, fromJSON func() []string) ([]string, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := c.Bind(req); err != nil {
			return nil, err
		}
		return fromJSON(), nil
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(body), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
