package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nemopss/carbon-tracker/backend/analytics"
	"github.com/nemopss/carbon-tracker/backend/export"
	"github.com/nemopss/carbon-tracker/backend/models"
)

// dateQuery reads from/to. Unparseable dates are resolved by the service,
// never rejected here.
func dateQuery(c *gin.Context) analytics.Query {
	return analytics.Query{From: c.Query("from"), To: c.Query("to")}
}

func floatParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &v, nil
}

func filterQuery(c *gin.Context) (analytics.Filter, error) {
	var f analytics.Filter
	var err error

	if raw := c.Query("category"); raw != "" {
		category, err := models.ParseCategory(raw)
		if err != nil {
			return f, err
		}
		f.Category = &category
	}
	// An empty merchant is still a filter: it keeps every transaction that
	// has a merchant.
	if merchant, ok := c.GetQuery("merchant"); ok {
		f.Merchant = &merchant
	}
	if f.MinAmount, err = floatParam(c, "minAmount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = floatParam(c, "maxAmount"); err != nil {
		return f, err
	}
	return f, nil
}

// GetAnalyticsSummary godoc
// @Summary Footprint totals and evolution over a window
// @Description Defaults to the trailing 365 days.
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param from query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param to query string false "End date (YYYY-MM-DD, inclusive)"
// @Success 200 {object} models.AnalyticsSummary
// @Failure 500 {object} models.ErrorResponse
// @Router /api/analytics/summary [get]
func (h *Handler) GetAnalyticsSummary(c *gin.Context) {
	summary, err := h.analytics.Summary(c.Request.Context(), userID(c), dateQuery(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetTimeSeries godoc
// @Summary Daily footprint series
// @Description Defaults to the trailing 30 days. Only day grouping is supported.
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param from query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param to query string false "End date (YYYY-MM-DD, inclusive)"
// @Param groupBy query string false "Grouping" default(day)
// @Success 200 {array} models.TimeSeriesPoint
// @Failure 500 {object} models.ErrorResponse
// @Router /api/analytics/timeseries [get]
func (h *Handler) GetTimeSeries(c *gin.Context) {
	groupBy := c.DefaultQuery("groupBy", analytics.GroupByDay)
	points, err := h.analytics.TimeSeries(c.Request.Context(), userID(c), dateQuery(c), groupBy)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// GetCategoryBreakdown godoc
// @Summary Footprint per category, largest first
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param from query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param to query string false "End date (YYYY-MM-DD, inclusive)"
// @Success 200 {array} models.CategoryBreakdown
// @Failure 500 {object} models.ErrorResponse
// @Router /api/analytics/by-category [get]
func (h *Handler) GetCategoryBreakdown(c *gin.Context) {
	breakdown, err := h.analytics.ByCategory(c.Request.Context(), userID(c), dateQuery(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// GetTopMerchants godoc
// @Summary Merchants ranked by footprint
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param from query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param to query string false "End date (YYYY-MM-DD, inclusive)"
// @Param limit query int false "Maximum number of merchants" default(10)
// @Success 200 {array} models.MerchantAnalytics
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/analytics/top-merchants [get]
func (h *Handler) GetTopMerchants(c *gin.Context) {
	limit := analytics.DefaultMerchantLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = v
	}

	merchants, err := h.analytics.TopMerchants(c.Request.Context(), userID(c), dateQuery(c), limit)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, merchants)
}

// GetFilteredTransactions godoc
// @Summary Transactions in a window matching every supplied filter
// @Description Defaults to the trailing calendar month.
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param from query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param to query string false "End date (YYYY-MM-DD, inclusive)"
// @Param category query string false "Exact category"
// @Param merchant query string false "Case-insensitive merchant substring"
// @Param minAmount query number false "Minimum amount"
// @Param maxAmount query number false "Maximum amount"
// @Success 200 {array} models.Transaction
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/analytics/transactions [get]
func (h *Handler) GetFilteredTransactions(c *gin.Context) {
	transactions, ok := h.filteredTransactions(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// ExportTransactions godoc
// @Summary Filtered transactions as an XLSX workbook
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Param from query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param to query string false "End date (YYYY-MM-DD, inclusive)"
// @Param category query string false "Exact category"
// @Param merchant query string false "Case-insensitive merchant substring"
// @Param minAmount query number false "Minimum amount"
// @Param maxAmount query number false "Maximum amount"
// @Success 200 {file} file
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/analytics/transactions/export [get]
func (h *Handler) ExportTransactions(c *gin.Context) {
	transactions, ok := h.filteredTransactions(c)
	if !ok {
		return
	}

	data, err := export.TransactionsXLSX(transactions, h.analytics.Location())
	if err != nil {
		h.internalError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.xlsx", h.now().In(h.analytics.Location()).Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, data)
}

func (h *Handler) filteredTransactions(c *gin.Context) ([]models.Transaction, bool) {
	filter, err := filterQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	transactions, err := h.analytics.Transactions(c.Request.Context(), userID(c), dateQuery(c), filter)
	if err != nil {
		h.internalError(c, err)
		return nil, false
	}
	return transactions, true
}

// GetInsights godoc
// @Summary Rule-based observations about the footprint
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param from query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param to query string false "End date (YYYY-MM-DD, inclusive)"
// @Success 200 {array} models.Insight
// @Failure 500 {object} models.ErrorResponse
// @Router /api/analytics/insights [get]
func (h *Handler) GetInsights(c *gin.Context) {
	insights, err := h.analytics.Insights(c.Request.Context(), userID(c), dateQuery(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}
