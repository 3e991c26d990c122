package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/epeers/portools/internal/metrics"
	"github.com/epeers/portools/internal/middleware"
	"github.com/epeers/portools/internal/models"
	"github.com/epeers/portools/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// PortfolioHandler handles portfolio upload and read endpoints
type PortfolioHandler struct {
	portfolioSvc *services.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioSvc *services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioSvc: portfolioSvc,
	}
}

func parsePortfolioID(c *gin.Context) (uint32, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "invalid portfolio ID",
		})
		return 0, false
	}
	return uint32(id), true
}

// Put handles PUT /portfolios/:id
// @Summary Upload a portfolio
// @Description Replace every lot of the portfolio with the rows of a CSV body. Derived views are recomputed asynchronously.
// @Tags portfolios
// @Accept text/csv
// @Produce json
// @Param id path int true "Portfolio ID"
// @Param body body string true "CSV with columns account, symbol, date_acquired (YYYY/MM/DD), quantity, cost_per_share"
// @Success 200 {object} models.PutPortfolioResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 411 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /portfolios/{id} [put]
func (h *PortfolioHandler) Put(c *gin.Context) {
	defer func() {
		metrics.UploadsTotal.WithLabelValues(strconv.Itoa(c.Writer.Status())).Inc()
	}()

	id, ok := parsePortfolioID(c)
	if !ok {
		return
	}

	lots, err := ParseLotsCSV(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Error:   "payload_too_large",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_csv",
			Message: err.Error(),
		})
		return
	}

	warnCtx, wc := services.NewWarningContext(c.Request.Context())
	portfolio, err := h.portfolioSvc.PutPortfolio(warnCtx, id, lots)
	if err != nil {
		if errors.Is(err, services.ErrTooManyLots) {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Error:   "too_many_lots",
				Message: err.Error(),
			})
			return
		}
		log.WithFields(log.Fields{
			"request_id":   middleware.GetRequestID(c),
			"portfolio_id": id,
		}).Errorf("failed to store portfolio: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.PutPortfolioResponse{
		ID:       portfolio.ID,
		NumLots:  len(portfolio.Lots),
		Warnings: wc.GetWarnings(),
	})
}

// Get handles GET /portfolios/:id
// @Summary Get a portfolio
// @Description Return the lots most recently uploaded for the portfolio
// @Tags portfolios
// @Produce json
// @Param id path int true "Portfolio ID"
// @Success 200 {object} models.Portfolio
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /portfolios/{id} [get]
func (h *PortfolioHandler) Get(c *gin.Context) {
	id, ok := parsePortfolioID(c)
	if !ok {
		return
	}

	portfolio, err := h.portfolioSvc.GetPortfolio(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPortfolioNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "portfolio not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

// GetSummary handles GET /portfolios/:id/summaries/:view
// @Summary Get a derived view
// @Description Return the cost of the portfolio grouped by asset class or by symbol. May lag the latest upload.
// @Tags portfolios
// @Produce json
// @Param id path int true "Portfolio ID"
// @Param view path string true "View" Enums(asset_class, symbol)
// @Success 200 {object} models.SummaryDocument
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /portfolios/{id}/summaries/{view} [get]
func (h *PortfolioHandler) GetSummary(c *gin.Context) {
	id, ok := parsePortfolioID(c)
	if !ok {
		return
	}

	doc, err := h.portfolioSvc.GetSummary(c.Request.Context(), id, c.Param("view"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownView):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: err.Error(),
			})
		case errors.Is(err, services.ErrSummaryNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "summary not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "internal_error",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, doc)
}
