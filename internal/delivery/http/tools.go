package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"stock-insight/internal/dto"
)

func (h *HttpAPIHandler) SetupTools(base *echo.Group) {
	searchGroup := base.Group("/search")
	searchGroup.POST("/google", h.searchGoogle)

	base.POST("/scrape", h.scrapePage)
}

func (h *HttpAPIHandler) searchGoogle(c echo.Context) error {
	req := new(dto.SearchRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return err
	}

	results, err := h.service.Tools.Search(c.Request().Context(), *req)
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"query":   req.Query,
		"results": results,
		"count":   len(results),
	})
}

func (h *HttpAPIHandler) scrapePage(c echo.Context) error {
	req := new(dto.ScrapeRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return err
	}

	page, err := h.service.Tools.Scrape(c.Request().Context(), *req)
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, page)
}
