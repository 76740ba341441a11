package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/pkg/anthropic"
)

var genericHooks = []string{
	"Loved your recent special menu update, looks fantastic.",
	"Your location has such great local character and charm.",
	"Noticed your strong community presence and customer loyalty.",
	"Your business has such a welcoming atmosphere from what I've seen.",
	"The reviews mention your excellent customer service consistently.",
	"Saw your recent social media posts, great engagement with customers.",
	"Your business has such authentic local personality and style.",
}

const (
	facebookHook  = "Noticed your recent Facebook activity and community engagement."
	instagramHook = "Loved the recent photos on your Instagram, great visual storytelling."
)

// TemplateHookGenerator picks a hook from fixed templates. The choice is a
// pure function of the inputs.
type TemplateHookGenerator struct {
	hooks []string
}

// NewTemplateHookGenerator creates a TemplateHookGenerator.
func NewTemplateHookGenerator() *TemplateHookGenerator {
	return &TemplateHookGenerator{hooks: genericHooks}
}

// Generate implements HookGenerator. It never fails.
func (g *TemplateHookGenerator) Generate(_ context.Context, businessName string, socialURLs []string) (string, error) {
	for _, u := range socialURLs {
		if strings.Contains(strings.ToLower(u), "facebook") {
			return facebookHook, nil
		}
	}
	for _, u := range socialURLs {
		if strings.Contains(strings.ToLower(u), "instagram") {
			return instagramHook, nil
		}
	}
	return g.hooks[hash32(businessName)%uint32(len(g.hooks))], nil
}

const hookSystemPrompt = `You write the opening line of a cold outreach message to a small local business owner.
Reply with exactly one friendly, specific sentence of at most 25 words.
Do not greet, do not sign off, do not mention websites or pricing, and do not use quotation marks.`

// ClaudeHookGenerator writes hooks with the Anthropic Messages API.
type ClaudeHookGenerator struct {
	client anthropic.Client
	model  string
}

// NewClaudeHookGenerator creates a ClaudeHookGenerator for model.
func NewClaudeHookGenerator(client anthropic.Client, model string) *ClaudeHookGenerator {
	return &ClaudeHookGenerator{client: client, model: model}
}

// Generate implements HookGenerator.
func (g *ClaudeHookGenerator) Generate(ctx context.Context, businessName string, socialURLs []string) (string, error) {
	prompt := fmt.Sprintf("Business: %s\n", businessName)
	if len(socialURLs) > 0 {
		prompt += "Social profiles: " + strings.Join(socialURLs, ", ") + "\n"
	}
	prompt += "Write the opening line."

	temp := 0.7
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.model,
		MaxTokens:   80,
		System:      anthropic.CachedSystem(hookSystemPrompt),
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return "", eris.Wrap(err, "hook: generate")
	}
	resp.Usage.LogCost(g.model, "personal_hook")

	return cleanHook(resp.Text()), nil
}

// cleanHook keeps the first line and strips wrapping quotes.
func cleanHook(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
