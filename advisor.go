package main

import (
	"context"
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const systemPrompt = "You are a helpful AI assistant that provides recommendations in JSON format. " +
	"Always respond with valid JSON."

// Model turns a prompt into the model's raw text reply.
type Model interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type claudeModel struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func (m *claudeModel) Name() string { return "claude/" + m.model }

func (m *claudeModel) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := m.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		MaxTokens: m.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "claude API call failed")
	}
	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if len(text) == 0 {
		return "", errors.New("empty response from Claude API")
	}
	return text, nil
}

type geminiModel struct {
	client *genai.Client
	model  string
}

func (m *geminiModel) Name() string { return "gemini/" + m.model }

func (m *geminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: systemPrompt + "\n\n" + prompt}},
		},
	}
	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, nil)
	if err != nil {
		return "", errors.Wrap(err, "gemini generate content")
	}
	text := resp.Text()
	if len(text) == 0 {
		return "", errors.New("empty response from Gemini API")
	}
	return text, nil
}

// newModel builds the backend selected in the config. Any failure here is
// fatal to the run.
func newModel(ctx context.Context, cfg *config) (Model, error) {
	key := cfg.apiKey()
	switch cfg.AI.Provider {
	case "", "claude":
		if len(key) == 0 {
			return nil, errors.New("ANTHROPIC_API_KEY not set. Please set it in environment or config.yaml")
		}
		maxTokens := cfg.AI.MaxTokens
		if maxTokens <= 0 {
			maxTokens = 8192
		}
		return &claudeModel{
			client:    anthropic.NewClient(option.WithAPIKey(key)),
			model:     cfg.model(),
			maxTokens: maxTokens,
		}, nil
	case "gemini":
		if len(key) == 0 {
			return nil, errors.New("GEMINI_API_KEY not set. Please set it in environment or config.yaml")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      key,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
		})
		if err != nil {
			return nil, errors.Wrap(err, "create genai client")
		}
		return &geminiModel{client: client, model: cfg.model()}, nil
	}
	return nil, errors.Errorf("unknown AI provider %q", cfg.AI.Provider)
}

// loose is a JSON scalar the model may send either as a number or a string.
type loose string

func (l *loose) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = loose(s)
		return nil
	}
	*l = loose(strings.TrimSpace(string(b)))
	return nil
}

type CardPick struct {
	CardName          string `json:"card_name"`
	Reason            string `json:"reason"`
	UserBehaviorMatch string `json:"user_behavior_match"`
}

type LoanPick struct {
	LoanType          string `json:"loan_type"`
	Reason            string `json:"reason"`
	UserBehaviorMatch string `json:"user_behavior_match"`
}

type OtherPick struct {
	ProductName       string `json:"product_name"`
	Reason            string `json:"reason"`
	UserBehaviorMatch string `json:"user_behavior_match"`
}

type ProductRecommendations struct {
	CreditCards []CardPick  `json:"credit_card_recommendations"`
	Loans       []LoanPick  `json:"loan_recommendations"`
	Other       []OtherPick `json:"other_recommendations"`
}

func (p *ProductRecommendations) fill() {
	if p.CreditCards == nil {
		p.CreditCards = []CardPick{}
	}
	if p.Loans == nil {
		p.Loans = []LoanPick{}
	}
	if p.Other == nil {
		p.Other = []OtherPick{}
	}
}

type CardRecommendation struct {
	CardName          string   `json:"card_name"`
	Reason            string   `json:"reason"`
	Benefits          []string `json:"benefits"`
	AnnualFee         loose    `json:"annual_fee"`
	CreditLimit       loose    `json:"credit_limit"`
	InterestRate      loose    `json:"interest_rate"`
	UserBehaviorMatch string   `json:"user_behavior_match"`
}

type CardRecommendations struct {
	Recommendations []CardRecommendation `json:"recommendations"`
}

func (c *CardRecommendations) fill() {
	if c.Recommendations == nil {
		c.Recommendations = []CardRecommendation{}
	}
}

type Sentiment struct {
	Positive loose `json:"positive"`
	Negative loose `json:"negative"`
	Neutral  loose `json:"neutral"`
}

type GrievanceAnalysis struct {
	CommonIssues    []string  `json:"common_issues"`
	Sentiment       Sentiment `json:"sentiment_analysis"`
	Recommendations []string  `json:"recommendations"`
}

func (g *GrievanceAnalysis) fill() {
	if g.CommonIssues == nil {
		g.CommonIssues = []string{}
	}
	if g.Recommendations == nil {
		g.Recommendations = []string{}
	}
}

// extractJSON decodes the object spanning the first '{' and the last '}' of
// raw, ignoring any prose or code fences around it.
func extractJSON(raw string, v any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return errors.Errorf("no JSON found in response: %s", raw)
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), v); err != nil {
		return errors.Wrapf(err, "failed to parse JSON response: %s", raw)
	}
	return nil
}

var promptFuncs = template.FuncMap{
	"json": func(v any) string {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "{}"
		}
		return string(data)
	},
	"join": strings.Join,
}

var (
	productTmpl = template.Must(template.New("products").Funcs(promptFuncs).Parse(
		`Based on the following user information, recommend suitable financial products.

Spending summary:
{{json .Summary}}

Customer profile:
{{json .KYC}}

Interests: {{join .Interests ", "}}

Credit profile:
{{json .Credit}}

Available products:
{{json .Products}}

Respond with a JSON object in this format:
{
  "credit_card_recommendations": [{"card_name": "", "reason": "", "user_behavior_match": ""}],
  "loan_recommendations": [{"loan_type": "", "reason": "", "user_behavior_match": ""}],
  "other_recommendations": [{"product_name": "", "reason": "", "user_behavior_match": ""}]
}
`))

	cardTmpl = template.Must(template.New("cards").Funcs(promptFuncs).Parse(
		`Recommend the credit cards from the catalog below that best fit this customer.

Spending summary:
{{json .Summary}}

Customer profile:
{{json .KYC}}

Interests: {{join .Interests ", "}}

Credit profile:
{{json .Credit}}

Credit card catalog:
{{json .Products.CreditCards}}

Respond with a JSON object in this format:
{
  "recommendations": [{
    "card_name": "", "reason": "", "benefits": [""],
    "annual_fee": "", "credit_limit": "", "interest_rate": "",
    "user_behavior_match": ""
  }]
}
`))

	grievanceTmpl = template.Must(template.New("grievances").Funcs(promptFuncs).Parse(
		`Analyze the following customer grievances and provide insights:

Grievances:
{{json .}}

Respond with a JSON object in this format:
{
  "common_issues": [""],
  "sentiment_analysis": {"positive": 0, "negative": 0, "neutral": 0},
  "recommendations": [""]
}
`))

	askTmpl = template.Must(template.New("ask").Funcs(promptFuncs).Parse(
		`A customer asked: "{{.Query}}"

Their top spending categories are: {{join .TopCategories ", "}}.
Annual income (USD): {{printf "%.0f" .KYC.AnnualIncome}}. Credit score: {{.KYC.CreditScore}}.
{{- if .Cards.Recommendations}}

Credit cards already recommended to them:
{{json .Cards.Recommendations}}
{{- end}}

Answer conversationally in two or three sentences.
Respond with a JSON object in this format: {"response": ""}
`))
)

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", errors.Wrapf(err, "while rendering %s prompt", t.Name())
	}
	return b.String(), nil
}

// adviceInput is everything the recommendation prompts draw on.
type adviceInput struct {
	Summary   SpendingSummary
	KYC       KYCDetails
	Interests []string
	Credit    CreditProfile
	Products  Products
	Cards     CardRecommendations
}

type askInput struct {
	Query         string
	TopCategories []string
	KYC           KYCDetails
	Cards         CardRecommendations
}

// advisor asks the model for recommendations. Failures never escape: the
// caller always gets a complete, possibly empty, structure.
type advisor struct {
	model   Model
	st      status
	timeout time.Duration
}

func newAdvisor(m Model, st status) *advisor {
	return &advisor{model: m, st: st, timeout: 2 * time.Minute}
}

// forgetter is implemented by models that remember replies.
type forgetter interface {
	forget(prompt string) error
}

// complete renders the prompt, calls the model and decodes its reply into v.
func (a *advisor) complete(ctx context.Context, t *template.Template, data, v any) error {
	prompt, err := render(t, data)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.st.log.Debug().Str("model", a.model.Name()).Int("prompt_len", len(prompt)).Msg("calling model")
	raw, err := a.model.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	if err := extractJSON(raw, v); err != nil {
		a.st.log.Warn().Str("raw", raw).Msg("unparsable model reply")
		if f, ok := a.model.(forgetter); ok {
			if ferr := f.forget(prompt); ferr != nil {
				a.st.log.Warn().Err(ferr).Msg("unable to drop cached reply")
			}
		}
		return err
	}
	return nil
}

func (a *advisor) productRecommendations(ctx context.Context, in adviceInput) ProductRecommendations {
	a.st.progress("Generating product recommendations")
	var out ProductRecommendations
	if err := a.complete(ctx, productTmpl, in, &out); err != nil {
		a.st.fail(err, "Unable to generate product recommendations")
		out = ProductRecommendations{}
	} else {
		a.st.success("Product recommendations generated")
	}
	out.fill()
	return out
}

func (a *advisor) cardRecommendations(ctx context.Context, in adviceInput) CardRecommendations {
	a.st.progress("Generating credit card recommendations")
	var out CardRecommendations
	if err := a.complete(ctx, cardTmpl, in, &out); err != nil {
		a.st.fail(err, "Unable to generate credit card recommendations")
		out = CardRecommendations{}
	} else {
		a.st.success("Credit card recommendations generated")
	}
	out.fill()
	return out
}

func (a *advisor) grievances(ctx context.Context, emails []record) GrievanceAnalysis {
	a.st.progress("Analyzing %d customer grievances", len(emails))
	var out GrievanceAnalysis
	if len(emails) == 0 {
		a.st.warn("No grievances to analyze")
	} else if err := a.complete(ctx, grievanceTmpl, emails, &out); err != nil {
		a.st.fail(err, "Unable to analyze grievances")
		out = GrievanceAnalysis{}
	} else {
		a.st.success("Grievance analysis generated")
	}
	out.fill()
	return out
}

// answer replies to a free form question. A JSON reply carrying a "response"
// key is unwrapped, any other reply is returned as plain text.
func (a *advisor) answer(ctx context.Context, in askInput) (string, error) {
	prompt, err := render(askTmpl, in)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	raw, err := a.model.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	var reply struct {
		Response string `json:"response"`
	}
	if err := extractJSON(raw, &reply); err == nil && len(reply.Response) > 0 {
		return reply.Response, nil
	}
	return strings.TrimSpace(raw), nil
}
