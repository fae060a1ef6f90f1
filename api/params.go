package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// parseDate 解析日期参数，空串返回零值
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, s, time.Local)
}

// parseDateRange 解析 start_date / end_date 查询参数，结束日期含当天
func parseDateRange(c *gin.Context) (from, to *time.Time) {
	if s := c.Query("start_date"); s != "" {
		if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
			from = &t
		}
	}
	if s := c.Query("end_date"); s != "" {
		if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
			t = t.Add(24*time.Hour - time.Second)
			to = &t
		}
	}
	return from, to
}

// parseID 解析路径中的记录 ID
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return 0, false
	}
	return uint(id), true
}
