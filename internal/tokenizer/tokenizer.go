// Package tokenizer estimates token counts for the rendered artifacts.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultModel is the tokenizer model used when none is configured.
	DefaultModel = "gpt-4o"

	defaultEncodingName = "cl100k_base"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

type openAICounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter openAICounter) Name() string {
	return counter.name
}

func (counter openAICounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	tokenIDs := counter.encoding.Encode(input, nil, nil)
	return len(tokenIDs), nil
}

// NewCounter returns a Counter for the requested model, falling back to the
// default encoding when the model is unknown to tiktoken.
func NewCounter(model string) (Counter, error) {
	modelName := strings.ToLower(strings.TrimSpace(model))
	if modelName == "" {
		modelName = DefaultModel
	}
	encoding, encodingError := tiktoken.EncodingForModel(modelName)
	if encodingError == nil && encoding != nil {
		return openAICounter{encoding: encoding, name: modelName}, nil
	}
	fallbackEncoding, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, fmt.Errorf("initialize fallback tokenizer: %w", fallbackError)
	}
	return openAICounter{encoding: fallbackEncoding, name: defaultEncodingName}, nil
}
