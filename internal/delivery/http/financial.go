package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"stock-insight/internal/dto"
)

func (h *HttpAPIHandler) SetupFinancial(base *echo.Group) {
	financialGroup := base.Group("/financial")
	financialGroup.POST("/analyze", h.analyzeStock)
	financialGroup.POST("/analyze/async", h.analyzeStockAsync)
	financialGroup.GET("/status/:id", h.taskStatus)
	financialGroup.POST("/cancel/:id", h.taskCancel)

	financialGroup.POST("/recommend", h.recommendStocks)
	financialGroup.POST("/recommend/async", h.recommendStocksAsync)
	financialGroup.GET("/recommend/status/:id", h.taskStatus)
	financialGroup.POST("/recommend/cancel/:id", h.taskCancel)

	financialGroup.POST("/backtest", h.runBacktest)
}

func (h *HttpAPIHandler) analyzeStock(c echo.Context) error {
	req := new(dto.AnalysisRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return err
	}

	result, err := h.service.Analysis.AnalyzeStock(c.Request().Context(), *req)
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *HttpAPIHandler) analyzeStockAsync(c echo.Context) error {
	req := new(dto.AnalysisRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return err
	}

	record := h.service.Task.Submit("analysis", func(ctx context.Context) (interface{}, error) {
		return h.service.Analysis.AnalyzeStock(ctx, *req)
	})
	return c.JSON(http.StatusAccepted, record)
}

func (h *HttpAPIHandler) recommendStocks(c echo.Context) error {
	req := new(dto.RecommendationRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return err
	}

	result, err := h.service.Recommendation.Recommend(c.Request().Context(), *req)
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *HttpAPIHandler) recommendStocksAsync(c echo.Context) error {
	req := new(dto.RecommendationRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return err
	}

	record := h.service.Task.Submit("recommendation", func(ctx context.Context) (interface{}, error) {
		return h.service.Recommendation.Recommend(ctx, *req)
	})
	return c.JSON(http.StatusAccepted, record)
}

func (h *HttpAPIHandler) runBacktest(c echo.Context) error {
	req := new(dto.BacktestRequest)
	if err := h.bindAndValidate(c, req); err != nil {
		return err
	}

	result, err := h.service.Backtest.RunBacktest(c.Request().Context(), *req)
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
