package notify

import (
	"fmt"
	"strings"

	"github.com/trendwatch/trendwatch/app/report"
	"github.com/trendwatch/trendwatch/app/trend"
)

func classificationMarker(c trend.Classification) string {
	switch c {
	case trend.ClassificationNew:
		return "[新]"
	case trend.ClassificationRising:
		return "↑"
	case trend.ClassificationFalling:
		return "↓"
	case trend.ClassificationContinuing:
		return "→"
	default:
		return ""
	}
}

// renderText produces the plain-text report body shared by the text-style
// channels. Markdown channels build on the same structure with their own
// emphasis syntax.
func renderText(r *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "热点追踪 %s\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "模式: %s | 命中 %d / %d 条\n", r.Mode, len(r.Items), r.TotalItems)
	if r.Degraded {
		b.WriteString("注意: 历史数据不可用，本次全部按新上榜处理\n")
	}
	if r.SourceErrors > 0 {
		fmt.Fprintf(&b, "注意: %d 个来源抓取失败\n", r.SourceErrors)
	}
	if r.Summary != "" {
		b.WriteString("\n")
		b.WriteString(r.Summary)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range r.Items {
		marker := classificationMarker(item.Classification)
		if marker != "" {
			marker += " "
		}

		fmt.Fprintf(&b, "%d. %s%s [%s #%d]", i+1, marker, item.DisplayTitle, item.PlatformID, item.Rank)
		if item.PreviousRank > 0 && item.PreviousRank != item.Rank {
			fmt.Fprintf(&b, " (上次 #%d)", item.PreviousRank)
		}
		if item.PersistentTrend {
			b.WriteString(" [持续热点]")
		}
		b.WriteString("\n")

		if len(item.Groups) > 0 {
			fmt.Fprintf(&b, "   分组: %s\n", strings.Join(item.Groups, ", "))
		}
		if len(item.URLs) > 0 {
			fmt.Fprintf(&b, "   %s\n", item.URLs[0])
		}
		if item.Excerpt != "" {
			fmt.Fprintf(&b, "   %s\n", item.Excerpt)
		}
	}

	return b.String()
}

// renderMarkdown is the markdown-flavored variant used by the dingtalk and
// wework channels.
func renderMarkdown(r *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## 热点追踪 %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "> 模式: %s | 命中 %d / %d 条\n\n", r.Mode, len(r.Items), r.TotalItems)
	if r.Degraded {
		b.WriteString("> **注意**: 历史数据不可用，本次全部按新上榜处理\n\n")
	}
	if r.Summary != "" {
		b.WriteString(r.Summary)
		b.WriteString("\n\n")
	}

	for i, item := range r.Items {
		marker := classificationMarker(item.Classification)
		if marker != "" {
			marker += " "
		}

		title := item.DisplayTitle
		if len(item.URLs) > 0 {
			title = fmt.Sprintf("[%s](%s)", title, item.URLs[0])
		}

		fmt.Fprintf(&b, "%d. %s**%s** `%s #%d`", i+1, marker, title, item.PlatformID, item.Rank)
		if item.PersistentTrend {
			b.WriteString(" `持续热点`")
		}
		b.WriteString("\n")
	}

	return b.String()
}
