package ai

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

// Assistant builds dataset prompts and sends them to a Runtime.
type Assistant struct {
	Runtime     Runtime
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
	// SampleRows bounds the rows sent for insights and questions.
	SampleRows int
	// SuggestRows bounds the rows sent for column suggestions.
	SuggestRows int
	Log         logrus.FieldLogger
}

// NewAssistant returns an Assistant with the standard sample sizes.
func NewAssistant(rt Runtime, provider, model string, log logrus.FieldLogger) *Assistant {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if model == "" {
		model = DefaultModel(provider)
	}
	return &Assistant{
		Runtime:     rt,
		Provider:    provider,
		Model:       model,
		MaxTokens:   1024,
		SampleRows:  50,
		SuggestRows: 20,
		Log:         log,
	}
}

// Suggestion is one proposed derived column.
type Suggestion struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// GenerateInsightText asks for free-form insights about the first
// SampleRows rows of t.
func (a *Assistant) GenerateInsightText(ctx context.Context, t *table.Table) (string, error) {
	if err := requireData(t); err != nil {
		return "", err
	}
	return a.ask(ctx, "insights", t, a.SampleRows, func(sample string) string {
		return "Analyze this dataset and provide insights:\n" + sample + `

Please provide:
1. Key insights about the data
2. Data quality assessment
3. Potential patterns or trends
4. Recommendations for further analysis

Format your response in clear, concise paragraphs.`
	})
}

// AnswerQuestion answers question using only the first SampleRows rows of t.
func (a *Assistant) AnswerQuestion(ctx context.Context, t *table.Table, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", apperr.Validation("question", "question cannot be empty")
	}
	if err := requireData(t); err != nil {
		return "", err
	}
	return a.ask(ctx, "question", t, a.SampleRows, func(sample string) string {
		return "Given this dataset:\n" + sample + `

Please answer the following question about the data:
"` + question + `"

Provide a clear, concise answer based only on the data provided.`
	})
}

// SuggestColumns asks for 3-5 new derived columns based on the first
// SuggestRows rows of t.
func (a *Assistant) SuggestColumns(ctx context.Context, t *table.Table) ([]Suggestion, error) {
	if err := requireData(t); err != nil {
		return nil, err
	}
	text, err := a.ask(ctx, "suggest", t, a.SuggestRows, func(sample string) string {
		return "Based on this dataset sample:\n" + sample + `

Suggest 3-5 new columns that would add value to the dataset.
For each column, provide:
- Column name
- Data type (string, number, date, etc.)
- Description of its purpose and how it could be calculated from existing data

Format your response as a structured list.`
	})
	if err != nil {
		return nil, err
	}
	return ParseSuggestions(text), nil
}

func requireData(t *table.Table) error {
	if t == nil || t.Len() == 0 {
		return apperr.Validation("data", "please upload data first")
	}
	return nil
}

// ask renders the prompt over a sample of rows, halving the sample while the
// prompt would overflow the model context window.
func (a *Assistant) ask(ctx context.Context, kind string, t *table.Table, rows int, build func(sample string) string) (string, error) {
	if a.Runtime == nil {
		return "", apperr.External("ai", fmt.Errorf("no runtime configured"))
	}
	if rows <= 0 {
		rows = 50
	}
	budget := 0
	if mi, ok := LookupModel(a.Model); ok {
		budget = mi.ContextTokens - a.MaxTokens
	}
	var sample, prompt string
	for {
		var b strings.Builder
		if err := t.Head(rows).EncodeJSON(&b, "  "); err != nil {
			return "", fmt.Errorf("encode sample: %w", err)
		}
		sample = b.String()
		prompt = build(sample)
		if budget <= 0 || utils.CountTokens(prompt) <= budget || rows == 1 {
			break
		}
		rows /= 2
	}
	if budget > 0 && utils.CountTokens(prompt) > budget {
		// a single row can still be wider than the window
		prompt = utils.TruncateToTokenLimit(prompt, budget)
	}
	sizes := utils.TokenBreakdown(map[string]string{"sample": sample, "prompt": prompt})
	log := a.Log.WithFields(logrus.Fields{
		"provider":      a.Provider,
		"model":         a.Model,
		"kind":          kind,
		"rows":          min(rows, t.Len()),
		"tokens":        sizes["prompt"],
		"sample_tokens": sizes["sample"],
	})
	log.Debug("sending prompt")
	resp, err := a.Runtime.Generate(ctx, GenerateRequest{
		Model:       a.Model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   a.MaxTokens,
		Temperature: a.Temperature,
	})
	if err != nil {
		log.WithError(err).Warn("ai request failed")
		return "", apperr.External("ai", err)
	}
	if cost, ok := EstimateCostUSD(a.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens); ok && cost > 0 {
		log = log.WithField("cost_usd", fmt.Sprintf("%.5f", cost))
	}
	log.WithField("request_id", resp.RequestID).Debug("ai response received")
	return strings.TrimSpace(resp.Text()), nil
}

var (
	suggestionStart  = regexp.MustCompile(`(?i)^\d+\.|\bcolumn( name)?:|\bname:`)
	suggestionName   = regexp.MustCompile(`(?i)(?:column( name)?|name):\s*(.+)`)
	numberedName     = regexp.MustCompile(`^\d+\.\s*(.+?)(?:\s*\(|:|\s*-|$)`)
	suggestionType   = regexp.MustCompile(`(?i)(?:type|data type):\s*(.+)`)
	suggestionDesc   = regexp.MustCompile(`(?i)(?:description|purpose):\s*(.+)`)
	hasTypeLabel     = regexp.MustCompile(`(?i)type:|data type:`)
	hasDescLabel     = regexp.MustCompile(`(?i)description:|purpose:`)
	numberedSplitter = regexp.MustCompile(`\d+\.`)
)

// ParseSuggestions reads name/type/description blocks from free text. A
// block starts at a numbered line or a "Name:"/"Column name:" label; other
// lines continue the current description. When no block has a name, the text
// is split on numbered markers into generic suggestions.
func ParseSuggestions(text string) []Suggestion {
	var (
		out []Suggestion
		cur *Suggestion
	)
	flush := func() {
		if cur != nil && cur.Name != "" {
			out = append(out, *cur)
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case suggestionStart.MatchString(line):
			flush()
			cur = &Suggestion{}
			if m := suggestionName.FindStringSubmatch(line); m != nil {
				cur.Name = strings.TrimSpace(m[2])
			} else if m := numberedName.FindStringSubmatch(line); m != nil {
				cur.Name = strings.TrimSpace(m[1])
			}
		case cur == nil:
		case hasTypeLabel.MatchString(line):
			if m := suggestionType.FindStringSubmatch(line); m != nil {
				cur.Type = strings.TrimSpace(m[1])
			}
		case hasDescLabel.MatchString(line):
			if m := suggestionDesc.FindStringSubmatch(line); m != nil {
				cur.Description = strings.TrimSpace(m[1])
			}
		case line == "":
		case cur.Name != "" && cur.Description == "":
			cur.Description = line
		case cur.Description != "":
			cur.Description += " " + line
		}
	}
	flush()
	if len(out) > 0 {
		return out
	}
	parts := numberedSplitter.Split(text, -1)
	if len(parts) < 2 {
		return nil
	}
	for i, p := range parts[1:] {
		out = append(out, Suggestion{
			Name:        fmt.Sprintf("Suggested Column %d", i+1),
			Type:        "Unknown",
			Description: strings.TrimSpace(p),
		})
	}
	return out
}
