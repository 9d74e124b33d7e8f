package controllers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"tradecal/middleware"
	"tradecal/models"
	"tradecal/services"

	"github.com/gin-gonic/gin"
)

// EntryController 交易条目控制器
type EntryController struct {
	service *services.EntryService
	jwt     *middleware.JWTMiddleware
}

// NewEntryController 创建交易条目控制器
func NewEntryController(service *services.EntryService, jwtMiddleware *middleware.JWTMiddleware) *EntryController {
	return &EntryController{
		service: service,
		jwt:     jwtMiddleware,
	}
}

// RegisterRoutes 注册路由（全部需要登录）
func (ec *EntryController) RegisterRoutes(router *gin.Engine) {
	entries := router.Group("/api/entries")
	entries.Use(ec.jwt.JWTAuth())
	{
		entries.GET("/month", ec.GetEntriesByMonth)
		entries.GET("/:date", ec.GetEntriesByDate)
		entries.POST("", ec.CreateEntry)
		entries.PUT("/:id", ec.UpdateEntry)
		entries.DELETE("/:id", ec.DeleteEntry)
	}
}

// EntryRequest 交易条目请求体（创建/更新共用）
// pnl用指针区分"缺失"和合法的0；非数字JSON值在绑定阶段即被拒绝
type EntryRequest struct {
	TradeDate    string   `json:"trade_date"`
	Ticker       string   `json:"ticker"`
	Direction    string   `json:"direction"`
	EntryPrice   float64  `json:"entry_price"`
	ExitPrice    float64  `json:"exit_price"`
	Size         float64  `json:"size"`
	Pnl          *float64 `json:"pnl"`
	Notes        string   `json:"notes"`
	Tag          *string  `json:"tag"`
	Confidence   *int     `json:"confidence"`
	SetupQuality *string  `json:"setup_quality"`
}

// validate 字段级校验，requireDate区分创建（需要日期）和更新（日期不可变）
// 返回空串表示通过，否则为错误信息
func (req *EntryRequest) validate(requireDate bool) string {
	if requireDate && !isValidDate(req.TradeDate) {
		return "trade_date格式错误，应为YYYY-MM-DD"
	}
	if strings.TrimSpace(req.Ticker) == "" {
		return "ticker不能为空"
	}
	if req.Pnl == nil {
		return "pnl不能为空"
	}
	if math.IsNaN(*req.Pnl) || math.IsInf(*req.Pnl, 0) {
		return "pnl必须是有效数字"
	}
	if req.Size < 0 {
		return "size不能为负数"
	}
	if req.Direction != "" && !models.Direction(req.Direction).Valid() {
		return "direction必须是LONG或SHORT"
	}
	if req.Confidence != nil && !models.ValidConfidence(*req.Confidence) {
		return "confidence必须在1到5之间"
	}
	if req.SetupQuality != nil && !models.SetupQuality(*req.SetupQuality).Valid() {
		return "setup_quality必须是A、B或C"
	}
	if utf8.RuneCountInString(req.Notes) > maxNotesLen {
		return "notes不能超过4000字符"
	}
	return ""
}

// toEntry 转换为数据库模型
func (req *EntryRequest) toEntry(userID int64) *models.TradeEntry {
	direction := models.DirectionLong
	if req.Direction != "" {
		direction = models.Direction(req.Direction)
	}

	var quality *models.SetupQuality
	if req.SetupQuality != nil {
		q := models.SetupQuality(*req.SetupQuality)
		quality = &q
	}

	return &models.TradeEntry{
		UserID:       userID,
		TradeDate:    req.TradeDate,
		Ticker:       strings.TrimSpace(req.Ticker),
		Direction:    direction,
		EntryPrice:   req.EntryPrice,
		ExitPrice:    req.ExitPrice,
		Size:         req.Size,
		Pnl:          *req.Pnl,
		Notes:        req.Notes,
		Tag:          req.Tag,
		Confidence:   req.Confidence,
		SetupQuality: quality,
	}
}

// ==================== 创建 ====================

// CreateEntry 创建交易条目
// @Summary 创建交易条目
// @Description 插入条目并在同一事务内幂等创建父级日记录
// @Tags 交易条目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body EntryRequest true "条目信息"
// @Success 200 {object} map[string]interface{}
// @Router /api/entries [post]
func (ec *EntryController) CreateEntry(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "未登录",
		})
		return
	}

	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误",
			"error":   err.Error(),
		})
		return
	}

	if msg := req.validate(true); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": msg,
		})
		return
	}

	entry := req.toEntry(userID)
	if err := ec.service.CreateEntry(entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "创建条目失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      entry.ID,
	})
}

// ==================== 查询 ====================

// GetEntriesByMonth 批量获取整月条目
// @Summary 批量获取整月条目
// @Description 一次查询返回整月条目，按日期分组，避免逐日请求
// @Tags 交易条目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param year query int true "年份"
// @Param month query int true "月份（1-12）"
// @Success 200 {object} map[string]interface{}
// @Router /api/entries/month [get]
func (ec *EntryController) GetEntriesByMonth(c *gin.Context) {
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

	grouped, err := ec.service.GetEntriesByMonth(userID, year, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": grouped,
	})
}

// GetEntriesByDate 获取某日期的所有条目
// @Summary 获取某日期的所有条目
// @Description 返回当前用户指定日期的条目，新建的在前
// @Tags 交易条目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param date path string true "日期（YYYY-MM-DD）"
// @Success 200 {object} map[string]interface{}
// @Router /api/entries/{date} [get]
func (ec *EntryController) GetEntriesByDate(c *gin.Context) {
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

	entries, err := ec.service.GetEntriesByDate(userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询失败",
		})
		return
	}

	if entries == nil {
		entries = []*models.TradeEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entries,
	})
}

// ==================== 更新 ====================

// UpdateEntry 更新交易条目
// @Summary 更新交易条目
// @Description 按id AND user_id限定，id不属于当前用户时静默无操作
// @Tags 交易条目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "条目ID"
// @Param request body EntryRequest true "条目信息"
// @Success 200 {object} map[string]interface{}
// @Router /api/entries/{id} [put]
func (ec *EntryController) UpdateEntry(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "未登录",
		})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "条目ID错误",
		})
		return
	}

	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误",
			"error":   err.Error(),
		})
		return
	}

	if msg := req.validate(false); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": msg,
		})
		return
	}

	entry := req.toEntry(userID)
	entry.ID = id
	if err := ec.service.UpdateEntry(entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "更新条目失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// ==================== 删除 ====================

// DeleteEntry 删除交易条目
// @Summary 删除交易条目
// @Description 硬删除，按id AND user_id限定，不匹配时静默无操作
// @Tags 交易条目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "条目ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/entries/{id} [delete]
func (ec *EntryController) DeleteEntry(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "未登录",
		})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "条目ID错误",
		})
		return
	}

	if err := ec.service.DeleteEntry(id, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "删除条目失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
