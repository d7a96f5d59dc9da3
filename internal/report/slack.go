package report

import (
	"context"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/dashboard"
)

// SlackNotifier posts reports to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	client     *http.Client
}

// NewSlackNotifier returns a notifier for webhookURL. An empty channel
// posts to the webhook's default channel.
func NewSlackNotifier(webhookURL, channel string) (*SlackNotifier, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("slack webhook URL is required")
	}
	return &SlackNotifier{webhookURL: webhookURL, channel: channel, client: http.DefaultClient}, nil
}

// Blocks builds the Slack message layout for r.
func Blocks(r *dashboard.Report) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, "Recovery Rate Report", false, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*"+Headline(r)+"*", false, false),
			nil, nil,
		),
		slack.NewContextBlock("filters",
			slack.NewTextBlockObject(slack.MarkdownType, "Filters: `"+r.Filters.String()+"`", false, false),
		),
	}

	if f := r.Focus; f != nil {
		fields := []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, printer.Sprintf("*Share of period*\n%.2f%% (%d of %d)", f.GroupPct, f.Total, f.PeriodTotal), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, printer.Sprintf("*Group rate*\n%.1f%%", f.Rate*100), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, printer.Sprintf("*Period rate*\n%.1f%%", f.OverallRate*100), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, printer.Sprintf("*Difference*\n%+.1f pts", f.Delta*100), false, false),
		}
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, "*Focus: "+f.Label+"*", false, false),
				fields, nil,
			),
		)
	}
	return blocks
}

// Notify posts r to Slack.
func (n *SlackNotifier) Notify(ctx context.Context, r *dashboard.Report) error {
	msg := &slack.WebhookMessage{
		Channel: n.channel,
		Text:    Headline(r),
		Blocks:  &slack.Blocks{BlockSet: Blocks(r)},
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, msg); err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	return nil
}
