package service

import (
	"context"
	"strings"
)

// SummaryInput 描述生成文章摘要所需的上下文。
type SummaryInput struct {
	Title   string
	Content string
	// MaxTokens 控制模型输出上限，0 表示使用默认值。
	MaxTokens int
}

// SummaryResult 返回模型生成的摘要及少量元数据。
type SummaryResult struct {
	Summary          string
	PromptTokens     int
	CompletionTokens int
}

// SummaryGenerator 定义摘要生成能力，便于在业务层注入不同实现。
type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, input SummaryInput) (SummaryResult, error)
}

const (
	defaultSummaryMaxTokens    = 160
	defaultSummaryTemperature  = 0.2
	maxSummaryContentRuneCount = 4000

	defaultSummarySystemPrompt = "You are an assistant that writes concise factual summaries."
)

// AISummaryService 基于大模型接口生成文章摘要。
type AISummaryService struct {
	client *aiChatClient
}

// NewAISummaryService 构造默认的 AISummaryService。
func NewAISummaryService(apiKey, baseURL, model string) *AISummaryService {
	return &AISummaryService{
		client: newAIChatClient(apiKey, baseURL, model),
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *AISummaryService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetBaseURL 覆盖默认的模型接口地址。
func (s *AISummaryService) SetBaseURL(base string) {
	s.client.SetBaseURL(base)
}

// SetModel 指定摘要所使用的模型名称。
func (s *AISummaryService) SetModel(model string) {
	s.client.SetModel(model)
}

// GenerateSummary 调用配置的模型生成文章摘要，当未配置 API Key 时返回 ErrAIAPIKeyMissing。
func (s *AISummaryService) GenerateSummary(ctx context.Context, input SummaryInput) (SummaryResult, error) {
	maxTokens := input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultSummaryMaxTokens
	}

	contentSnippet := truncateRunes(strings.TrimSpace(input.Content), maxSummaryContentRuneCount)
	userPrompt := buildSummaryPrompt(input.Title, contentSnippet)
	logAIExchange("SUMMARY", "prompt", userPrompt)

	result, err := s.client.call(ctx, aiChatRequest{
		SystemPrompt: defaultSummarySystemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    maxTokens,
		Temperature:  defaultSummaryTemperature,
	})
	if err != nil {
		return SummaryResult{}, err
	}

	summary := strings.TrimSpace(result.Content)
	logAIExchange("SUMMARY", "response", summary)

	return SummaryResult{
		Summary:          summary,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
	}, nil
}

func buildSummaryPrompt(title, content string) string {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	var builder strings.Builder
	builder.WriteString("Summarize the following wiki article in 1-2 concise sentences. ")
	builder.WriteString("Focus on the main idea and the most important details a reader should remember. ")
	builder.WriteString("Do not add opinions or unrelated information.\n\n")
	if title != "" {
		builder.WriteString("<title>\n")
		builder.WriteString(title)
		builder.WriteString("\n</title>\n\n")
	}
	builder.WriteString("<wiki_content>\n")
	builder.WriteString(content)
	builder.WriteString("\n</wiki_content>")
	return builder.String()
}

func truncateRunes(input string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	return string(runes[:limit])
}
