// Package parsing turns raw job advert text into a structured record using a Structurer.
package parsing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/advert-optimiser/internal/llm"
	"github.com/jonathan/advert-optimiser/internal/types"
)

// Structurer converts raw advert text into a JSON payload shaped like template.
// The payload is returned unparsed; the Coordinator owns parsing and recovery.
type Structurer interface {
	Structure(ctx context.Context, text string, template types.Record) (string, error)
}

// Coordinator runs one extraction: structurer call, two-step parse, coercion
type Coordinator struct {
	structurer Structurer
	logger     *zap.Logger
}

// NewCoordinator creates a Coordinator. A nil logger disables logging.
func NewCoordinator(structurer Structurer, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{structurer: structurer, logger: logger}
}

// Extract structures sourceText into a full record.
// On any failure it returns the empty record together with an error matching ErrExtractionFailed.
// Empty sourceText returns ErrSourceMissing without calling the structurer.
func (c *Coordinator) Extract(ctx context.Context, sourceText string) (types.Record, error) {
	empty := types.NewRecord()
	if strings.TrimSpace(sourceText) == "" {
		return empty, ErrSourceMissing
	}

	payload, err := c.structurer.Structure(ctx, sourceText, empty)
	if err != nil {
		c.logger.Warn("structurer call failed", zap.Error(err))
		return empty, &APICallError{Message: "structurer returned an error", Cause: err}
	}

	fields, err := decodePayload(payload)
	if err != nil {
		c.logger.Warn("structurer payload unparseable",
			zap.Error(err),
			zap.Int("payload_bytes", len(payload)))
		return empty, err
	}

	record := coerce(fields)
	c.logger.Debug("extraction complete",
		zap.Int("filled", record.Filled()),
		zap.Strings("missing", record.MissingFields()))
	return record, nil
}

// decodePayload parses the payload as a JSON object.
// When the first parse fails, wrapping artifacts are stripped and the payload is parsed exactly once more.
func decodePayload(payload string) (map[string]json.RawMessage, error) {
	fields, err := parseObject(payload)
	if err == nil {
		return fields, nil
	}

	fields, retryErr := parseObject(StripWrapping(payload))
	if retryErr != nil {
		return nil, &ParseError{Message: "structurer payload is not a JSON object", Cause: errors.Join(err, retryErr)}
	}
	return fields, nil
}

func parseObject(s string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("payload is null")
	}
	return fields, nil
}

const wrappingChars = "`'\" \t\r\n"

// StripWrapping removes surrounding whitespace, markdown fences, backticks and quotes
func StripWrapping(s string) string {
	s = strings.Trim(llm.CleanJSONBlock(s), wrappingChars)
	// A fence inside quotes leaves its language tag behind
	if rest, ok := strings.CutPrefix(s, "json"); ok {
		if rest = strings.TrimLeft(rest, " \t\r\n"); strings.HasPrefix(rest, "{") {
			s = rest
		}
	}
	return s
}

// coerce builds a full record from a decoded payload. Unknown keys are dropped;
// absent, null and unusable values all leave the field empty.
func coerce(fields map[string]json.RawMessage) types.Record {
	record := types.NewRecord()
	for _, name := range types.FieldNames() {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if value, ok := coerceValue(raw); ok {
			_ = record.Set(name, value)
		}
	}
	return record
}

// coerceValue renders one payload value as field text.
// Strings are kept as-is, numbers and booleans keep their JSON text, arrays of strings become one line per item.
func coerceValue(raw json.RawMessage) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}

	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return "", false
			}
			lines = append(lines, s)
		}
		return strings.Join(lines, "\n"), true
	default:
		return "", false
	}
}
