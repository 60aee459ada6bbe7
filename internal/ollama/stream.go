package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// readStream consumes a streaming /api/chat response line by line and
// concatenates the chunks in arrival order. Partial chunks are never handed
// downstream individually: command extraction needs the full text. The body
// is read to completion (or the context deadline) so the connection is never
// abandoned half-read.
func readStream(ctx context.Context, body io.Reader, onChunk func(string)) (*Response, error) {
	reader := bufio.NewReader(body)

	var content strings.Builder
	var model string

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, &ClientError{Type: ErrTypeUnknown, Message: "stream cancelled", Cause: ctx.Err()}
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, classifyTransportError(err)
		}

		if len(line) > 0 {
			var chunk chatChunk
			if jerr := json.Unmarshal(line, &chunk); jerr == nil {
				if chunk.Error != "" {
					return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: chunk.Error}
				}
				if chunk.Model != "" {
					model = chunk.Model
				}
				if chunk.Message.Content != "" {
					content.WriteString(chunk.Message.Content)
					if onChunk != nil {
						onChunk(chunk.Message.Content)
					}
				}
				if chunk.Done {
					return &Response{Model: model, Content: content.String()}, nil
				}
			}
			// Malformed lines are skipped.
		}

		if errors.Is(err, io.EOF) {
			return &Response{Model: model, Content: content.String()}, nil
		}
	}
}
