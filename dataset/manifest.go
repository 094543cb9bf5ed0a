package dataset

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kbukum/datafeed/errors"
	"github.com/kbukum/datafeed/storage"
)

// maxLineSize bounds a single manifest line.
const maxLineSize = 1 << 20

// Parse reads examples from r. Each non-blank line needs at least
// 1+labelCount tokens. Blank lines are skipped.
func Parse(r io.Reader, labelCount int) ([]Example, error) {
	if labelCount < 0 {
		return nil, errors.InvalidConfig("label_stream_count", "must not be negative")
	}

	var examples []Example
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		tokens := strings.Fields(sc.Text())
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) < 1+labelCount {
			return nil, errors.ParseError(line,
				fmt.Sprintf("expected %d paths, got %d tokens", 1+labelCount, len(tokens)))
		}
		ex := Example{
			Primary: tokens[0],
			Labels:  tokens[1 : 1+labelCount : 1+labelCount],
			Line:    line,
		}
		if extra := tokens[1+labelCount:]; len(extra) > 0 {
			ex.Extras = extra
		}
		examples = append(examples, ex)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.ParseError(line+1, err.Error()).WithCause(err)
	}
	return examples, nil
}

// Load reads and parses the manifest at path. An empty manifest is an
// EMPTY_INDEX error.
func Load(ctx context.Context, store storage.ByteClient, path string, labelCount int) ([]Example, error) {
	data, err := store.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	examples, err := Parse(bytes.NewReader(data), labelCount)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			appErr.WithDetail("source", path)
		}
		return nil, err
	}
	if len(examples) == 0 {
		return nil, errors.EmptyIndex(path)
	}
	return examples, nil
}
