package talklog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
)

// FineTuneOptions controls the chat-format JSONL export.
type FineTuneOptions struct {
	// SystemPrompt, when non-empty, is prepended to every example as a system message.
	SystemPrompt string
	// KeepTokens leaves <pbr>/<br>/<tab> placeholders in place instead of restoring them.
	KeepTokens bool
}

// FineTuneExample is one line of an OpenAI chat fine-tuning file.
type FineTuneExample struct {
	Messages []openai.ChatCompletionMessageParamUnion `json:"messages"`
}

// NewFineTuneExample maps a pair onto user (first turn) and assistant (second turn) messages.
func NewFineTuneExample(p TurnPair, opts FineTuneOptions) FineTuneExample {
	render := RestoreDisplay
	if opts.KeepTokens {
		render = func(s string) string { return s }
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 3)
	if prompt := strings.TrimSpace(opts.SystemPrompt); prompt != "" {
		msgs = append(msgs, openai.SystemMessage(prompt))
	}
	msgs = append(msgs,
		openai.UserMessage(render(p.First.Content)),
		openai.AssistantMessage(render(p.Second.Content)),
	)
	return FineTuneExample{Messages: msgs}
}

// WriteFineTuneJSONL writes one JSON object per pair.
func WriteFineTuneJSONL(w io.Writer, pairs []TurnPair, opts FineTuneOptions) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, p := range pairs {
		if err := enc.Encode(NewFineTuneExample(p, opts)); err != nil {
			return fmt.Errorf("WriteFineTuneJSONL: pair %d: %w", i, err)
		}
	}
	return nil
}
