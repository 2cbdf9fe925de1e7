package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/booky-next/internal/constants"
)

const (
	isoDateLayout  = "2006-01-02"
	longDateLayout = "02 January 2006"
)

// CalendarDate 只有年月日的日期，不含时区与时刻
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDate 构造并规范化日期（2024-02-30 → 2024-03-01）
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf 取 t 在其自身时区下的日历日
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseCalendarDate 解析 YYYY-MM-DD
func ParseCalendarDate(raw string) (CalendarDate, error) {
	t, err := time.Parse(isoDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return CalendarDate{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return DateOf(t), nil
}

// AddCalendarDays 按日历日相加，使用 UTC 午夜计算，不受夏令时影响
func AddCalendarDays(d CalendarDate, days int) CalendarDate {
	return NewCalendarDate(d.Year, d.Month, d.Day+days)
}

// IsZero 未设置
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time 返回 UTC 午夜
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String ISO 形式 YYYY-MM-DD
func (d CalendarDate) String() string {
	return d.Time().Format(isoDateLayout)
}

// Long 长日期，如 05 September 2024
func (d CalendarDate) Long() string {
	return d.Time().Format(longDateLayout)
}

// Before 早于另一日期
func (d CalendarDate) Before(other CalendarDate) bool {
	return d.Time().Before(other.Time())
}

// ParseDueParam 解析结账成功页的 due 参数
// 支持 YYYY-MM-DD 与毫秒时间戳；为空或无法解析时取 now 所在日 + 7 天
func ParseDueParam(raw string, now time.Time) CalendarDate {
	trimmed := strings.TrimSpace(raw)
	fallback := AddCalendarDays(DateOf(now), constants.DefaultDueFallbackDays)
	if trimmed == "" {
		return fallback
	}
	if ms, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return DateOf(time.UnixMilli(ms).UTC())
	}
	d, err := ParseCalendarDate(trimmed)
	if err != nil {
		return fallback
	}
	return d
}

// IsAllowedDuration 借阅时长是否在可选范围内
func IsAllowedDuration(days int) bool {
	for _, allowed := range constants.BorrowDurations {
		if allowed == days {
			return true
		}
	}
	return false
}
