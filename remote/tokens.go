package remote

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/guiperry/promptfeedback/utils"
)

// TokenCounter measures prompt size before it is sent.
type TokenCounter interface {
	Count(text string) int
}

// TokenCounterFunc adapts a function to TokenCounter.
type TokenCounterFunc func(text string) int

func (f TokenCounterFunc) Count(text string) int { return f(text) }

// WordCounter approximates tokens as whitespace-separated words.
var WordCounter = TokenCounterFunc(func(text string) int {
	return len(strings.Fields(text))
})

// tiktokenCounter loads the model encoding on first use. When no encoding
// can be loaded it degrades to WordCounter.
type tiktokenCounter struct {
	model    string
	logger   utils.Logger
	once     sync.Once
	encoding *tiktoken.Tiktoken
}

func newTiktokenCounter(model string, logger utils.Logger) *tiktokenCounter {
	return &tiktokenCounter{model: model, logger: logger}
}

func (c *tiktokenCounter) load() {
	encoding, err := tiktoken.EncodingForModel(c.model)
	if err != nil {
		c.logger.Warn("Failed to get encoding for model, defaulting to gpt-4o", "model", c.model, "error", err)
		encoding, err = tiktoken.EncodingForModel("gpt-4o")
		if err != nil {
			c.logger.Warn("No token encoding available, counting words instead", "error", err)
			return
		}
	}
	c.encoding = encoding
}

func (c *tiktokenCounter) Count(text string) int {
	c.once.Do(c.load)
	if c.encoding == nil {
		return WordCounter.Count(text)
	}
	return len(c.encoding.Encode(text, nil, nil))
}
