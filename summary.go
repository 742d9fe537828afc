package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// summaryService writes the narrative paragraph that tops the report. The
// comparison never depends on it; an error just means an empty summary.
type summaryService interface {
	summarize(report *Report) (string, error)
}

type geminiSummarizer struct {
	deps *Dependencies
}

const summaryModel = "gemini-2.0-flash"

func (g *geminiSummarizer) summarize(report *Report) (string, error) {
	secrets := g.deps.secrets
	sublog := g.deps.logger

	apiKey := secrets["gemini_api_key"]
	if apiKey == "" {
		return "", errSummarySkipped
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, summaryModel, genai.Text(summaryPrompt(report)), nil)
	if err != nil {
		sublog.Warn().Err(err).Msg("summary generation failed")
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response candidates from %s", summaryModel)
	}
	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
}

// summaryPrompt flattens the top comparison rows into a terse table the
// model can narrate. Markdown output is expected; the renderer sanitizes it.
func summaryPrompt(report *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a markets reporter. Write 2-3 short markdown paragraphs summarizing this fund's %s 13F filing versus the prior quarter and the prior year. Mention the largest new positions, biggest adds and trims by value, and anything notable about concentration. No preamble, no bullet lists.\n\n", report.CurrentFiling.QuarterLabel())
	fmt.Fprintf(&b, "company | qoq value change | yoy value change | current value | pct of portfolio\n")
	for _, row := range report.TopRows(20) {
		fmt.Fprintf(&b, "%s | %d | %d | %d | %.2f\n", row.Company, row.QoQValueChange, row.YoYValueChange, row.CurrentValue, row.CurrentPct)
	}

	return b.String()
}
