package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"stock-insight/internal/dto"
	"stock-insight/internal/service"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Services
}

func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, validator *goValidator.Validate, service *service.Services) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		validator: validator,
		service:   service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	base := h.echo.Group("/api")
	base.GET("/health", h.health)
	h.SetupFinancial(base)
	h.SetupTrace(base)
	h.SetupTools(base)
}

func (h *HttpAPIHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
	})
}

// bindAndValidate decodes the body into req and runs struct validation.
func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func (h *HttpAPIHandler) errorJSON(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dto.ErrTaskNotFound):
		status = http.StatusNotFound
	case errors.Is(err, dto.ErrTaskNotCancellable):
		status = http.StatusConflict
	case errors.Is(err, dto.ErrDataUnavailable), errors.Is(err, dto.ErrInsufficientHistory):
		status = http.StatusNotFound
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func (h *HttpAPIHandler) taskStatus(c echo.Context) error {
	record, err := h.service.Task.Status(c.Param("id"))
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, record)
}

func (h *HttpAPIHandler) taskCancel(c echo.Context) error {
	if err := h.service.Task.Cancel(c.Param("id")); err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"task_id": c.Param("id"),
		"status":  string(dto.TaskCancelled),
	})
}
