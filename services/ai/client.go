// Package ai wraps the hosted completion and transcription endpoints used by
// the quick-report flow.
package ai

import (
	"context"
	"io"

	"github.com/echoflow-solutions/carescribe-api/config"
	openai "github.com/sashabaranov/go-openai"
)

const maxTokens = 1024

// Completer produces one chat completion for a system prompt plus history.
type Completer interface {
	Complete(ctx context.Context, system string, messages []openai.ChatCompletionMessage) (string, error)
}

// Transcriber converts one audio segment into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language, prompt string) (string, error)
}

type Client struct {
	client             *openai.Client
	completionModel    string
	transcriptionModel string
}

func NewClient(conf *config.Config) *Client {
	cfg := openai.DefaultConfig(conf.OpenAIAPIKey)
	if conf.OpenAIBaseURL != "" {
		cfg.BaseURL = conf.OpenAIBaseURL
	}
	completionModel := conf.CompletionModel
	if completionModel == "" {
		completionModel = openai.GPT3Dot5Turbo1106
	}
	transcriptionModel := conf.TranscriptionModel
	if transcriptionModel == "" {
		transcriptionModel = openai.Whisper1
	}
	return &Client{
		client:             openai.NewClientWithConfig(cfg),
		completionModel:    completionModel,
		transcriptionModel: transcriptionModel,
	}
}

func (c *Client) Complete(ctx context.Context, system string, messages []openai.ChatCompletionMessage) (string, error) {
	all := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	all = append(all, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	all = append(all, messages...)

	completion, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.completionModel,
		MaxTokens: maxTokens,
		Messages:  all,
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename, language, prompt string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcriptionModel,
		Reader:   audio,
		FilePath: filename,
		Language: language,
		Prompt:   prompt,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
