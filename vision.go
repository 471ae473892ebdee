package camperpack

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	visionModel     = anthropic.ModelClaude3_5Haiku20241022
	visionMaxTokens = 1024
)

const inventoryPrompt = `Identify every distinct camping or travel item visible in this photo.
Respond with ONLY a JSON array, no other text. Each element:
{"name": "short item name", "icon": "a single emoji", "category": "one of: clothing, kitchen, bedding, tools, electronics, toiletries, food, recreation, safety, other"}
Skip fixed parts of the vehicle or room (walls, counters, built-in furniture).`

const iconPrompt = `This photo shows a single item. Respond with ONLY a JSON object, no other text:
{"name": "short item name", "icon": "a single emoji", "category": "one of: clothing, kitchen, bedding, tools, electronics, toiletries, food, recreation, safety, other"}`

// visionJSONRx pulls the first JSON array or object out of a model
// reply, tolerating prose or markdown fences around it.
var visionJSONRx = regexp.MustCompile(`(?s)\[.*\]|\{.*\}`)

// VisionClient identifies inventory items in photos using the
// Anthropic vision API.
type VisionClient struct {
	client anthropic.Client
}

// NewVisionClient creates a vision client with the given API key.
func NewVisionClient(apiKey string) *VisionClient {
	return &VisionClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Identify sends a photo to the vision model and parses the reply into
// item guesses. Inventory mode returns every item found; icon mode
// returns a single guess for the pictured item.
func (v *VisionClient) Identify(ctx context.Context, image []byte, mediaType string, mode VisionMode) ([]ItemGuess, error) {
	prompt := inventoryPrompt
	if mode == VisionModeIcon {
		prompt = iconPrompt
	}

	encoded := base64.StdEncoding.EncodeToString(image)

	message, err := v.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     visionModel,
		MaxTokens: visionMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, encoded),
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}

	var reply strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
		}
	}

	return parseItemGuesses(reply.String())
}

// parseItemGuesses extracts item guesses from a model reply. The model
// is asked for bare JSON but sometimes wraps it in prose; anything that
// still fails to parse comes back as ErrVisionUnparseable so callers
// can degrade to "no items identified".
func parseItemGuesses(reply string) ([]ItemGuess, error) {
	match := visionJSONRx.FindString(reply)
	if match == "" {
		return nil, fmt.Errorf("%w: no JSON in reply", ErrVisionUnparseable)
	}

	if strings.HasPrefix(match, "[") {
		var guesses []ItemGuess
		if err := json.Unmarshal([]byte(match), &guesses); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVisionUnparseable, err)
		}
		return filterGuesses(guesses), nil
	}

	var guess ItemGuess
	if err := json.Unmarshal([]byte(match), &guess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVisionUnparseable, err)
	}
	return filterGuesses([]ItemGuess{guess}), nil
}

func filterGuesses(guesses []ItemGuess) []ItemGuess {
	out := make([]ItemGuess, 0, len(guesses))
	for _, g := range guesses {
		if strings.TrimSpace(g.Name) == "" {
			continue
		}
		out = append(out, g)
	}
	return out
}
