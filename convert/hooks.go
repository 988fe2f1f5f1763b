package convert

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// HooksFile is where the converted hook document is written.
const HooksFile = "hooks/hooks.json"

// HookEvents maps Claude Code hook events to Gemini CLI hook events.
// Events missing from the table have no Gemini equivalent.
var HookEvents = map[string]string{
	"PreToolUse":       "BeforeTool",
	"PostToolUse":      "AfterTool",
	"UserPromptSubmit": "BeforeAgent",
	"Stop":             "AfterAgent",
	"SessionStart":     "SessionStart",
	"SessionEnd":       "SessionEnd",
	"PreCompact":       "PreCompress",
	"Notification":     "Notification",
}

// ErrNoHooksObject is returned when a hook document lacks a top-level "hooks" object.
var ErrNoHooksObject = errors.New(`hook document has no "hooks" object`)

type hookDocument struct {
	Hooks *orderedmap.OrderedMap[string, json.RawMessage] `json:"hooks"`
}

// ConvertHooks renames the events of a hooks.json document. Handler arrays are
// substituted in their serialized form. Source events without a mapping are
// dropped and returned in unmapped, in document order.
func ConvertHooks(raw string) (converted string, unmapped []string, err error) {
	var doc hookDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", nil, fmt.Errorf("parsing hooks: %w", err)
	}
	if doc.Hooks == nil {
		return "", nil, ErrNoHooksObject
	}

	mapped := orderedmap.New[string, json.RawMessage]()
	for pair := doc.Hooks.Oldest(); pair != nil; pair = pair.Next() {
		target, ok := HookEvents[pair.Key]
		if !ok {
			unmapped = append(unmapped, pair.Key)
			continue
		}

		var compact bytes.Buffer
		if err := json.Compact(&compact, pair.Value); err != nil {
			return "", nil, fmt.Errorf("hook event %q: %w", pair.Key, err)
		}
		handlers := []byte(Substitute(compact.String(), Vars))
		if !json.Valid(handlers) {
			return "", nil, fmt.Errorf("hook event %q: handlers are not valid JSON after substitution", pair.Key)
		}
		mapped.Set(target, json.RawMessage(handlers))
	}

	data, err := encodeHooks(mapped)
	if err != nil {
		return "", nil, fmt.Errorf("encoding hooks: %w", err)
	}
	return string(data), unmapped, nil
}

// encodeHooks writes {"hooks": {...}} in insertion order. Handler JSON is
// copied as is; json.Marshal would HTML-escape shell redirections.
func encodeHooks(events *orderedmap.OrderedMap[string, json.RawMessage]) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"hooks":{`)
	for pair := events.Oldest(); pair != nil; pair = pair.Next() {
		if pair != events.Oldest() {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(pair.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(pair.Value)
	}
	buf.WriteString("}}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// unmappedWarning formats the warning for a dropped hook event.
func unmappedWarning(event string) string {
	return `Unmapped hook event "` + event + `" — skipped`
}
