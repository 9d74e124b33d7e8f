package controllers

import (
	"net/http"
	"unicode/utf8"

	"tradecal/middleware"
	"tradecal/models"
	"tradecal/services"

	"github.com/gin-gonic/gin"
)

// TradeController 日记录控制器（月视图聚合、当日笔记）
type TradeController struct {
	service *services.TradeService
	jwt     *middleware.JWTMiddleware
}

// NewTradeController 创建日记录控制器
func NewTradeController(service *services.TradeService, jwtMiddleware *middleware.JWTMiddleware) *TradeController {
	return &TradeController{
		service: service,
		jwt:     jwtMiddleware,
	}
}

// RegisterRoutes 注册路由（全部需要登录）
func (tc *TradeController) RegisterRoutes(router *gin.Engine) {
	trades := router.Group("/api/trades")
	trades.Use(tc.jwt.JWTAuth())
	{
		trades.GET("", tc.GetMonthlySummaries)
		trades.GET("/:date", tc.GetDay)
		trades.POST("/:date", tc.SaveDayNotes)
	}
}

// ==================== 月视图聚合 ====================

// GetMonthlySummaries 获取月视图日汇总
// @Summary 获取月视图日汇总
// @Description 返回指定月份每个有日记录的日期的实时聚合盈亏和笔记
// @Tags 日记录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param year query int true "年份" default(2024)
// @Param month query int true "月份（1-12）" default(3)
// @Success 200 {object} map[string]interface{}
// @Router /api/trades [get]
func (tc *TradeController) GetMonthlySummaries(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "未登录",
		})
		return
	}

	year, month, ok := parseYearMonth(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "year/month参数错误",
		})
		return
	}

	summaries, err := tc.service.GetMonthlySummaries(userID, year, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询失败",
		})
		return
	}

	if summaries == nil {
		summaries = []*models.DailySummary{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": summaries,
	})
}

// ==================== 单日视图 ====================

// GetDay 获取单日汇总
// @Summary 获取单日汇总
// @Description 返回指定日期的聚合盈亏和笔记，无日记录时data为null
// @Tags 日记录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param date path string true "日期（YYYY-MM-DD）"
// @Success 200 {object} map[string]interface{}
// @Router /api/trades/{date} [get]
func (tc *TradeController) GetDay(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "未登录",
		})
		return
	}

	date := c.Param("date")
	if !isValidDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "日期格式错误，应为YYYY-MM-DD",
		})
		return
	}

	summary, err := tc.service.GetDaySummary(userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询失败",
		})
		return
	}

	if summary == nil {
		c.JSON(http.StatusOK, gin.H{
			"date": date,
			"data": nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date": date,
		"data": gin.H{
			"pl":    summary.PL,
			"notes": summary.Notes,
		},
	})
}

// ==================== 当日笔记 ====================

// SaveDayNotesRequest 保存当日笔记请求
type SaveDayNotesRequest struct {
	Notes string `json:"notes"`
}

// SaveDayNotes 保存当日笔记（upsert）
// @Summary 保存当日笔记
// @Description 按(用户, 日期)唯一键upsert，只覆盖notes，已有条目不受影响
// @Tags 日记录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param date path string true "日期（YYYY-MM-DD）"
// @Param request body SaveDayNotesRequest true "笔记内容"
// @Success 200 {object} map[string]interface{}
// @Router /api/trades/{date} [post]
func (tc *TradeController) SaveDayNotes(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "未登录",
		})
		return
	}

	date := c.Param("date")
	if !isValidDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "日期格式错误，应为YYYY-MM-DD",
		})
		return
	}

	var req SaveDayNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误",
			"error":   err.Error(),
		})
		return
	}

	if utf8.RuneCountInString(req.Notes) > maxNotesLen {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "笔记不能超过4000字符",
		})
		return
	}

	if err := tc.service.UpsertDayNotes(userID, date, req.Notes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "保存失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
