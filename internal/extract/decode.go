package extract

import (
	"encoding/json"
	"sort"
	"strings"
)

// shapeDecoder pulls the completion text out of one known response shape.
// ok is false when the body does not have that shape.
type shapeDecoder func(obj map[string]any) (text string, ok bool)

// shapeDecoders are tried in order against a JSON object response.
var shapeDecoders = []shapeDecoder{
	decodeResponseField,
	decodeResultsList,
	decodeChoiceMessage,
	decodeChoiceContent,
	decodeMessageContent,
	decodeContentBlocks,
}

// DecodeText extracts the completion text from a provider response body.
// isJSON is false when body is not JSON at all; callers then use the raw
// body. For JSON bodies the known shapes are tried first, then the first
// non-empty string leaf found depth-first.
func DecodeText(body []byte) (text string, isJSON bool) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "", false
	}
	if obj, ok := v.(map[string]any); ok {
		for _, dec := range shapeDecoders {
			if s, ok := dec(obj); ok {
				return s, true
			}
		}
	}
	return firstStringLeaf(v), true
}

// {"response": "..."}
func decodeResponseField(obj map[string]any) (string, bool) {
	s, ok := obj["response"].(string)
	return s, ok
}

// {"results": [{"text": "..."}, ...]} joins every string value.
func decodeResultsList(obj map[string]any) (string, bool) {
	items, ok := obj["results"].([]any)
	if !ok {
		return "", false
	}
	var texts []string
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, k := range sortedKeys(m) {
			if s, ok := m[k].(string); ok {
				texts = append(texts, s)
			}
		}
	}
	if len(texts) == 0 {
		return "", false
	}
	return strings.Join(texts, "\n"), true
}

func firstChoice(obj map[string]any) map[string]any {
	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return nil
	}
	first, _ := choices[0].(map[string]any)
	return first
}

// {"choices": [{"message": {"content": "..."}}]}
func decodeChoiceMessage(obj map[string]any) (string, bool) {
	first := firstChoice(obj)
	if first == nil {
		return "", false
	}
	msg, ok := first["message"].(map[string]any)
	if !ok {
		return "", false
	}
	s, _ := msg["content"].(string)
	return s, s != ""
}

// {"choices": [{"content": "..."}]}
func decodeChoiceContent(obj map[string]any) (string, bool) {
	first := firstChoice(obj)
	if first == nil {
		return "", false
	}
	s, ok := first["content"].(string)
	return s, ok
}

// {"message": {"content": "..."}}; a message without content decodes to "".
func decodeMessageContent(obj map[string]any) (string, bool) {
	msg, ok := obj["message"].(map[string]any)
	if !ok {
		return "", false
	}
	s, _ := msg["content"].(string)
	return s, true
}

// {"content": [{"type": "text", "text": "..."}]}
func decodeContentBlocks(obj map[string]any) (string, bool) {
	blocks, ok := obj["content"].([]any)
	if !ok {
		return "", false
	}
	var b strings.Builder
	for _, blk := range blocks {
		m, ok := blk.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := m["text"].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

// firstStringLeaf walks v depth-first and returns the first non-empty
// string. Object keys are visited in sorted order.
func firstStringLeaf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		for _, k := range sortedKeys(t) {
			if s := firstStringLeaf(t[k]); s != "" {
				return s
			}
		}
	case []any:
		for _, item := range t {
			if s := firstStringLeaf(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
