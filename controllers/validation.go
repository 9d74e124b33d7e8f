package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// 笔记最大长度（字符数）
const maxNotesLen = 4000

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// isValidDate 严格校验YYYY-MM-DD日期格式
// 正则保证零填充形状，time.Parse保证是真实存在的日期
func isValidDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// parseYearMonth 解析并校验year/month查询参数（month为1-based）
func parseYearMonth(c *gin.Context) (year, month int, ok bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 1970 || year > 9999 {
		return 0, 0, false
	}
	month, err = strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// generateRandomCode 生成随机码
func generateRandomCode(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
