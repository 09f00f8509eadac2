package notifier

import (
	"fmt"
	"strings"
	"time"

	"pgchart/internal/alert"
	"pgchart/internal/model"
)

// Status is the runtime summary shown by the /status command.
type Status struct {
	Mode        string
	Day         string
	Source      string
	Ticks       int
	Latest      *model.PriceSample
	LastAlertAt time.Time
	AlertCount  int
}

// FormatTickChart formats an intraday chart summary.
func FormatTickChart(chart *model.TickChart) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>纸黄金分时</b> | %s\n\n", chart.Date))
	b.WriteString(fmt.Sprintf("最新价格: %.2f (%s)\n", chart.Last.Price, time.Unix(chart.Last.Timestamp, 0).Format("15:04:05")))

	if len(chart.Points) > 0 {
		first := chart.Points[0]
		b.WriteString(fmt.Sprintf("开盘价格: %.2f | 涨跌: %+.2f\n", first.Price, chart.Last.Price-first.Price))
	}
	b.WriteString(fmt.Sprintf("最高: %.2f | 最低: %.2f\n", chart.High, chart.Low))
	b.WriteString(fmt.Sprintf("坐标轴: %.2f ~ %.2f\n", chart.Range.Min, chart.Range.Max))
	b.WriteString(fmt.Sprintf("采样: %d 条 → %d 点 (步长 %d)\n", chart.Samples, len(chart.Points), chart.Stride))
	return b.String()
}

// FormatHistory formats the most recent limit daily candles, newest first.
// limit <= 0 shows all of them.
func FormatHistory(history *model.HistoryChart, limit int) string {
	var b strings.Builder
	b.WriteString("🕯 <b>纸黄金日K</b>\n\n")

	candles := history.Candles
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	for i := len(candles) - 1; i >= 0; i-- {
		c := candles[i]
		b.WriteString(fmt.Sprintf("%s  开 %.2f 高 %.2f 低 %.2f 收 %.2f (%+.2f%%)\n",
			time.Unix(c.Timestamp, 0).Format("01-02"), c.Open, c.High, c.Low, c.Close, c.ChangePercent()))
	}
	b.WriteString(fmt.Sprintf("\n共 %d 个交易日", len(history.Candles)))
	return b.String()
}

// FormatNoData is shown when the selected view has nothing to plot.
func FormatNoData(mode, day string) string {
	if mode == "history" {
		return "📭 暂无日K数据"
	}
	return fmt.Sprintf("📭 %s 没有行情数据", day)
}

// FormatSwing formats a triggered price swing warning.
func FormatSwing(s alert.Swing) string {
	var b strings.Builder
	minutes := int(s.Window / time.Minute)
	if s.Drop() > s.Threshold {
		b.WriteString(fmt.Sprintf("⚠️ <b>价格急跌</b> | 近%d分钟\n\n", minutes))
		b.WriteString(fmt.Sprintf("最高: %.2f → 当前: %.2f (-%.2f)\n", s.High, s.Current, s.Drop()))
	}
	if s.Rise() > s.Threshold {
		b.WriteString(fmt.Sprintf("⚠️ <b>价格急涨</b> | 近%d分钟\n\n", minutes))
		b.WriteString(fmt.Sprintf("最低: %.2f → 当前: %.2f (+%.2f)\n", s.Low, s.Current, s.Rise()))
	}
	b.WriteString(fmt.Sprintf("预警阈值: %.2f", s.Threshold))
	return b.String()
}

// FormatStatus formats the runtime status.
func FormatStatus(st Status) string {
	var b strings.Builder
	b.WriteString("📦 <b>运行状态</b>\n\n")
	b.WriteString(fmt.Sprintf("视图: %s | 日期: %s\n", st.Mode, st.Day))
	b.WriteString(fmt.Sprintf("数据源: %s\n", st.Source))
	b.WriteString(fmt.Sprintf("已存储: %d 条\n", st.Ticks))
	if st.Latest != nil {
		b.WriteString(fmt.Sprintf("最新行情: %s\n", st.Latest))
	} else {
		b.WriteString("最新行情: 无\n")
	}
	if st.LastAlertAt.IsZero() {
		b.WriteString("上次预警: 无\n")
	} else {
		b.WriteString(fmt.Sprintf("上次预警: %s (累计 %d 次)\n", st.LastAlertAt.Format("2006-01-02 15:04"), st.AlertCount))
	}
	return b.String()
}
