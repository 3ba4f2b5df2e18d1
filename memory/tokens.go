package memory

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/deepscout/deepscout/provider"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// EstimateTokens counts tokens in text with the cl100k encoding. Falls back
// to a chars/4 heuristic when the tokenizer is unavailable.
func EstimateTokens(text string) int {
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			codec = c
		}
	})
	if codec == nil {
		return len(text) / 4
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return len(text) / 4
	}
	return len(ids)
}

// EstimateMessagesTokens sums the token estimate over message contents.
func EstimateMessagesTokens(msgs []provider.Message) int {
	total := 0
	for _, m := range msgs {
		total += EstimateTokens(m.Content)
		for _, tc := range m.ToolCalls {
			total += EstimateTokens(tc.Function.Arguments)
		}
	}
	return total
}
