// Package domain 提供市场交易日历，用于到期日的节假日顺延计算。
package domain

import "time"

const dayLayout = "2006-01-02"

// TradingCalendar 市场交易日历。周末始终为非交易日，节假日由外部提供。
type TradingCalendar struct {
	market   string
	holidays map[string]struct{}
}

// NewTradingCalendar 创建指定市场的交易日历
func NewTradingCalendar(market string, holidays []time.Time) *TradingCalendar {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[normalize(h).Format(dayLayout)] = struct{}{}
	}
	return &TradingCalendar{
		market:   market,
		holidays: set,
	}
}

// Market 返回市场标识
func (c *TradingCalendar) Market() string {
	return c.market
}

// IsTradingDay 判断 d 是否为有效交易日
func (c *TradingCalendar) IsTradingDay(d time.Time) bool {
	day := normalize(d)
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := c.holidays[day.Format(dayLayout)]
	return !holiday
}

// EffectiveDate 返回名义日期对应的有效处理日。名义日期本身为交易日时原样返回，
// 否则向后顺延至其后第一个交易日，可跨越连续的周末与节假日。绝不向前调整。
func (c *TradingCalendar) EffectiveDate(nominal time.Time) time.Time {
	day := normalize(nominal)
	for !c.IsTradingDay(day) {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// normalize 将时间截断为 UTC 日期
func normalize(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
