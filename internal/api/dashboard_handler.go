package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-manager/internal/report"
	"alcyxob/gym-manager/internal/service"
)

// DashboardHandler serves the landing page widgets and the analytics pages.
type DashboardHandler struct {
	dashboardService service.DashboardService
	analyticsService service.AnalyticsService
	now              func() time.Time
}

func NewDashboardHandler(dashboardService service.DashboardService, analyticsService service.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, analyticsService: analyticsService, now: time.Now}
}

// Stats godoc
// @Summary Headline figures
// @Tags Dashboard
// @Security BearerAuth
// @Success 200 {object} service.DashboardStats
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// RecentActivities godoc
// @Summary Latest audit log entries
// @Tags Dashboard
// @Security BearerAuth
// @Param limit query int false "1-50, default 10"
// @Router /dashboard/activities [get]
func (h *DashboardHandler) RecentActivities(c *gin.Context) {
	activities, err := h.dashboardService.RecentActivities(c.Request.Context(), intQuery(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, activities)
}

// RevenueChart godoc
// @Summary Completed revenue over time
// @Tags Dashboard
// @Security BearerAuth
// @Param period query string false "7d, 30d or 12m"
// @Router /dashboard/revenue-chart [get]
func (h *DashboardHandler) RevenueChart(c *gin.Context) {
	series, err := h.dashboardService.RevenueChart(c.Request.Context(), c.DefaultQuery("period", service.ChartWeek))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, series)
}

// MembershipChart godoc
// @Summary Clients per membership type
// @Tags Dashboard
// @Security BearerAuth
// @Router /dashboard/membership-chart [get]
func (h *DashboardHandler) MembershipChart(c *gin.Context) {
	groups, err := h.dashboardService.MembershipChart(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, groups)
}

// UpcomingExpirations godoc
// @Summary Memberships ending soon
// @Tags Dashboard
// @Security BearerAuth
// @Param days query int false "1-90, default 7"
// @Router /dashboard/expiring [get]
func (h *DashboardHandler) UpcomingExpirations(c *gin.Context) {
	items, err := h.dashboardService.UpcomingExpirations(c.Request.Context(), intQuery(c, "days", 7))
	if err != nil {
		respondError(c, err)
		return
	}
	now := h.now()
	out := make([]ExpiringMembershipResponse, len(items))
	for i := range items {
		out[i] = ExpiringMembershipResponse{
			Client:        MapClientToResponse(&items[i].Client, now),
			DaysRemaining: items[i].DaysRemaining,
		}
	}
	respondOK(c, http.StatusOK, out)
}

// analyticsRequest reads dateFrom, dateTo and granularity.
func (h *DashboardHandler) analyticsRequest(c *gin.Context) (service.AnalyticsRequest, error) {
	w, err := reportWindow(c, h.analyticsService.DefaultWindow())
	if err != nil {
		return service.AnalyticsRequest{}, err
	}
	return service.AnalyticsRequest{Window: w, Granularity: report.ParseGranularity(c.Query("granularity"))}, nil
}

// Overview godoc
// @Summary Key figures for a window compared with the one before
// @Tags Analytics
// @Security BearerAuth
// @Param dateFrom query string false "YYYY-MM-DD, default six months ago"
// @Param dateTo query string false "YYYY-MM-DD"
// @Success 200 {object} service.Overview
// @Router /analytics/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	req, err := h.analyticsRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}
	ov, err := h.analyticsService.Overview(c.Request.Context(), req.Window)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ov)
}

// Revenue godoc
// @Summary Revenue series with change against the previous window
// @Tags Analytics
// @Security BearerAuth
// @Param granularity query string false "daily or monthly"
// @Success 200 {object} report.RevenueSummary
// @Router /analytics/revenue [get]
func (h *DashboardHandler) Revenue(c *gin.Context) {
	req, err := h.analyticsRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.analyticsService.Revenue(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, summary)
}

// Memberships godoc
// @Summary Membership type distribution with percentages
// @Tags Analytics
// @Security BearerAuth
// @Router /analytics/memberships [get]
func (h *DashboardHandler) Memberships(c *gin.Context) {
	groups, err := h.analyticsService.Memberships(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, groups)
}

// Trainers godoc
// @Summary Clients and revenue per trainer
// @Tags Analytics
// @Security BearerAuth
// @Router /analytics/trainers [get]
func (h *DashboardHandler) Trainers(c *gin.Context) {
	req, err := h.analyticsRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.analyticsService.Trainers(c.Request.Context(), req.Window)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, rows)
}

// ClientGrowth godoc
// @Summary New clients per period with running totals
// @Tags Analytics
// @Security BearerAuth
// @Param granularity query string false "daily or monthly"
// @Router /analytics/client-growth [get]
func (h *DashboardHandler) ClientGrowth(c *gin.Context) {
	req, err := h.analyticsRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}
	growth, err := h.analyticsService.ClientGrowth(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, growth)
}

// PaymentMethods godoc
// @Summary Completed revenue per payment method
// @Tags Analytics
// @Security BearerAuth
// @Router /analytics/payment-methods [get]
func (h *DashboardHandler) PaymentMethods(c *gin.Context) {
	req, err := h.analyticsRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}
	groups, err := h.analyticsService.PaymentMethods(c.Request.Context(), req.Window)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, groups)
}
