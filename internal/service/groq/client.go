// Package groq is a client for the Groq OpenAI-compatible chat completion
// API, used to generate the daily hashtag topics.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/doit-app/challenge-arena-go/internal/models"
)

// Client is a client for the Groq chat completion API.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// Config holds the configuration for the Groq client.
type Config struct {
	BaseURL string        // e.g., "https://api.groq.com/openai/v1"
	Model   string        // e.g., "llama-3.1-8b-instant"
	APIKey  string
	Timeout time.Duration // Request timeout (default: 60 seconds)
}

// NewClient creates a new Groq client.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		model:   config.Model,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Available reports whether the client is configured with an API key.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// rawTopic is one entry of the JSON array the model is asked to return.
type rawTopic struct {
	Tag      string `json:"tag"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// maxTopics caps how many generated entries are kept per day.
const maxTopics = 15

// emojiCategories maps a topic category to its candidate emoji.
var emojiCategories = map[string][]string{
	"dance":      {"💃", "🕺", "🎶", "🪩"},
	"comedy":     {"😂", "🤣", "😆", "🎭"},
	"talent":     {"🌟", "⭐", "✨", "🎪"},
	"music":      {"🎤", "🎵", "🎸", "🎹"},
	"sports":     {"💪", "🏋️", "⚽", "🏀"},
	"food":       {"🍕", "🍔", "🍳", "👨‍🍳"},
	"pets":       {"🐶", "🐱", "🐾", "🦊"},
	"art":        {"🎨", "🖌️", "✏️", "🎭"},
	"lifestyle":  {"☀️", "🌅", "✌️", "🌈"},
	"beauty":     {"💄", "💅", "💎", "👑"},
	"fashion":    {"👗", "👠", "🧥", "👒"},
	"tech":       {"📱", "💻", "🎮", "🤖"},
	"travel":     {"✈️", "🌍", "🗺️", "🏝️"},
	"fitness":    {"🏋️", "🧘", "🏃", "💪"},
	"gaming":     {"🎮", "🕹️", "👾", "🎯"},
	"diy":        {"🔧", "🛠️", "📦", "✂️"},
	"photo":      {"📸", "📷", "🖼️", "🎬"},
	"motivation": {"🔥", "💥", "⚡", "🚀"},
	"friends":    {"👯", "🤝", "❤️", "🎉"},
	"education":  {"📚", "📖", "🎓", "💡"},
	"nature":     {"🌲", "🌸", "🌻", "🍃"},
	"romance":    {"❤️", "💕", "💘", "🌹"},
	"family":     {"👨‍👩‍👧", "🏠", "💝", "🤗"},
	"coffee":     {"☕", "🍵", "🧋", "🥤"},
}

// colorPalette is assigned cyclically by result index.
var colorPalette = []string{
	"#ec4899", "#f59e0b", "#8b5cf6", "#3b82f6", "#22c55e",
	"#ef4444", "#06b6d4", "#a855f7", "#fbbf24", "#f472b6",
	"#c084fc", "#60a5fa", "#34d399", "#fb923c", "#818cf8",
}

// GenerateDailyTopics asks the model for today's challenge hashtags and
// enriches the result with emoji and colors. A nil slice with nil error means
// the collaborator is unavailable or returned something unusable; the topics
// engine falls back to its deterministic shuffle in that case.
func (c *Client) GenerateDailyTopics(ctx context.Context, now time.Time) ([]models.Topic, error) {
	if !c.Available() {
		return nil, nil
	}

	reqPayload := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "Sen Türk sosyal medya trendlerini çok iyi bilen bir içerik uzmanısın. Yanıtlarını sadece geçerli JSON formatında ver.",
			},
			{
				Role:    "user",
				Content: buildTopicPrompt(now),
			},
		},
		Temperature: 0.8,
		MaxTokens:   1500,
	}

	reqBody, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request to Groq: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("groq API returned status %d: %s", resp.StatusCode, string(body))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("parse Groq response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from Groq")
	}

	raw, err := parseTopicArray(chatResp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return enrichTopics(raw), nil
}

// parseTopicArray extracts the first JSON array found in the free-text model
// reply.
func parseTopicArray(content string) ([]rawTopic, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model response")
	}

	var topics []rawTopic
	if err := json.Unmarshal([]byte(content[start:end+1]), &topics); err != nil {
		return nil, fmt.Errorf("parse topic array: %w", err)
	}
	return topics, nil
}

// enrichTopics converts raw model entries into topics: slug id, random
// per-category emoji, cyclic color, position and first-three trending.
func enrichTopics(raw []rawTopic) []models.Topic {
	if len(raw) > maxTopics {
		raw = raw[:maxTopics]
	}

	topics := make([]models.Topic, 0, len(raw))
	for i, t := range raw {
		category := t.Category
		emojis, ok := emojiCategories[category]
		if !ok {
			category = "lifestyle"
			emojis = emojiCategories["lifestyle"]
		}

		topics = append(topics, models.Topic{
			ID:          models.SlugFromTag(t.Tag),
			Tag:         t.Tag,
			Title:       t.Title,
			Emoji:       emojis[rand.Intn(len(emojis))],
			Color:       colorPalette[i%len(colorPalette)],
			Category:    category,
			Position:    i + 1,
			Trending:    i < 3,
			AIGenerated: true,
		})
	}
	return topics
}

func buildTopicPrompt(now time.Time) string {
	return fmt.Sprintf(`Bugün %s.
Türk sosyal medya kullanıcıları için 15 adet güncel, ilgi çekici ve eğlenceli video challenge hashtag'i öner.

Kurallar:
1. Her hashtag Türkçe olmalı
2. TikTok/Instagram Reels tarzı 6 saniyelik videolara uygun olmalı
3. Günün özelliklerine, mevsimine, popüler trendlere uygun olsun
4. Eğlenceli, yaratıcı ve katılımı teşvik edici olsun
5. Hashtag'ler # ile başlamalı, boşluk içermemeli

JSON formatında döndür:
[
  {"tag": "#HashtagAdı", "title": "Kısa Açıklama", "category": "kategori"}
]

Kategoriler: dance, comedy, talent, music, sports, food, pets, art, lifestyle, beauty, fashion, tech, travel, fitness, gaming, diy, photo, motivation, friends, education, nature, romance, family, coffee`,
		now.Format("2 January 2006, Monday"))
}
