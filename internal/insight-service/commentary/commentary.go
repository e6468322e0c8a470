package commentary

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/radieske/race-insight-platform/internal/insight-service/insights"
	"github.com/radieske/race-insight-platform/internal/insight-service/movers"
)

// Generator produz um parágrafo curto de comentário sobre o board de
// insights do dia. Opcional: sem API key o serviço responde sem comentário.
type Generator struct {
	client *openai.Client
	model  string
}

// New devolve nil quando não há API key; chamadores tratam nil como
// "comentário desligado".
func New(apiKey string) *Generator {
	if apiKey == "" {
		return nil
	}
	return &Generator{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

// DailyNote resume steamers e sinais de treinador num comentário de leitura
// rápida. Falha aqui nunca derruba o payload principal.
func (g *Generator) DailyNote(ctx context.Context, steamers []movers.Steamer, intents []insights.TrainerIntent) (string, error) {
	if g == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("Today's market movers:\n")
	for i, s := range steamers {
		if i == 8 {
			break
		}
		fmt.Fprintf(&sb, "- %s (%s %s) %.1f%% in, now %s\n",
			s.HorseName, s.Course, s.OffTime, s.OddsMovementPct, s.FractionalOdds)
	}
	sb.WriteString("Lone-runner trainer signals:\n")
	for i, t := range intents {
		if i == 5 {
			break
		}
		fmt.Fprintf(&sb, "- %s: %s at %s\n", t.Trainer, t.HorseName, t.Course)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: 200,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are a horse racing analyst. Write one short paragraph " +
					"summarising the betting signals below for a casual punter. " +
					"No betting advice, no disclaimers.",
			},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
