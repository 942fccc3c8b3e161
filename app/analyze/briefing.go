package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/trendwatch/trendwatch/app/report"
	"github.com/trendwatch/trendwatch/app/trend"
)

const briefingSystemPrompt = `你是一位专业的新闻分析师和内容编辑，擅长快速提取新闻核心信息、识别新闻之间的关联性并发现趋势。
你的输出应当客观、准确、简洁，使用中文回复，格式清晰便于阅读。`

// Analyzer produces a short briefing for the matched items of a run and
// attaches it to the report. Briefing generation is best-effort: any
// failure leaves the report without a summary and never fails the run.
type Analyzer struct {
	client   *Client
	maxItems int
}

// NewAnalyzer bounds the briefing input to maxItems matched items per run.
func NewAnalyzer(client *Client, maxItems int) *Analyzer {
	if maxItems <= 0 {
		maxItems = 20
	}
	return &Analyzer{client: client, maxItems: maxItems}
}

// Run generates the briefing and sets it on the report. A report with no
// matched items is skipped without a request.
func (a *Analyzer) Run(ctx context.Context, r *report.Report) error {
	if len(r.Items) == 0 {
		return nil
	}

	summary, err := a.client.Chat(ctx, briefingSystemPrompt, a.buildPrompt(r))
	if err != nil {
		return fmt.Errorf("failed to generate briefing: %w", err)
	}

	r.Summary = strings.TrimSpace(summary)
	return nil
}

func (a *Analyzer) buildPrompt(r *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "请根据以下 %s 的热点新闻，生成一份简短的热点简报。\n\n", r.GeneratedAt.Format("2006-01-02"))
	b.WriteString("## 热点新闻\n")

	for i, item := range r.Items {
		if i >= a.maxItems {
			break
		}

		fmt.Fprintf(&b, "%d. %s（来源: %s，排名 #%d", i+1, item.DisplayTitle, item.PlatformID, item.Rank)
		switch item.Classification {
		case trend.ClassificationNew:
			b.WriteString("，新上榜")
		case trend.ClassificationRising:
			b.WriteString("，排名上升")
		case trend.ClassificationFalling:
			b.WriteString("，排名下降")
		}
		b.WriteString("）\n")

		if item.Excerpt != "" {
			fmt.Fprintf(&b, "   %s\n", item.Excerpt)
		}
	}

	b.WriteString("\n## 要求\n")
	b.WriteString("1. 按领域归类整理，每个领域 2-3 句话概括重点\n")
	b.WriteString("2. 最后给出 2-3 条今日洞察（趋势或值得关注的点）\n")
	b.WriteString("3. 总长度控制在 300 字以内\n")

	return b.String()
}
