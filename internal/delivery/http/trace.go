package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"stock-insight/internal/dto"
)

func (h *HttpAPIHandler) SetupTrace(base *echo.Group) {
	traceGroup := base.Group("/trace")
	traceGroup.POST("", h.traceClaim)
	traceGroup.POST("/async", h.traceClaimAsync)
	traceGroup.GET("/status/:id", h.taskStatus)
	traceGroup.POST("/cancel/:id", h.taskCancel)
}

func (h *HttpAPIHandler) traceClaim(c echo.Context) error {
	req := new(dto.TraceRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return err
	}

	result, err := h.service.Trace.Trace(c.Request().Context(), *req)
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *HttpAPIHandler) traceClaimAsync(c echo.Context) error {
	req := new(dto.TraceRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return err
	}

	record := h.service.Task.Submit("trace", func(ctx context.Context) (interface{}, error) {
		return h.service.Trace.Trace(ctx, *req)
	})
	return c.JSON(http.StatusAccepted, record)
}
