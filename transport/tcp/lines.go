package tcp

import (
	"bytes"
	"log/slog"
)

// lineSplitter is a bufio.SplitFunc source that yields newline-terminated lines
// and drops any line longer than limit instead of failing the scan.
type lineSplitter struct {
	limit      int
	logger     *slog.Logger
	discarding bool
}

func newLineSplitter(limit int, logger *slog.Logger) *lineSplitter {
	return &lineSplitter{limit: limit, logger: logger}
}

func (that *lineSplitter) split(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		if that.discarding {
			that.discarding = false
			return i + 1, nil, nil
		}

		return i + 1, bytes.TrimSuffix(data[:i], []byte{'\r'}), nil
	}

	if atEOF {
		if len(data) == 0 || that.discarding {
			return len(data), nil, nil
		}

		return len(data), bytes.TrimSuffix(data, []byte{'\r'}), nil
	}

	// the scanner buffer is full: throw away what we have and skip to the next newline
	if len(data) >= that.limit {
		if !that.discarding {
			that.logger.Warn("dropping oversized line", "limit", that.limit)
		}
		that.discarding = true

		return len(data), nil, nil
	}

	return 0, nil, nil
}
