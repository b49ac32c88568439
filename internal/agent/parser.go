package agent

import (
	"encoding/json"
	"strings"

	"squire/internal/tools"
)

// ToolCall is the structured directive the model embeds in its text to
// invoke a tool.
type ToolCall struct {
	Action    string     `json:"action"`
	ToolName  string     `json:"tool_name"`
	Arguments tools.Args `json:"arguments"`
}

// ParseToolCall scans model text for a tool-call directive. Models wrap
// the JSON block in prose, so every line starting with '{' is a
// candidate anchor; the first anchor that decodes to a document with
// the use_tool action wins. Decoding stops at the end of the JSON
// value, so trailing prose after the block does not break the call.
// Text without a directive is not an error.
func ParseToolCall(text string) (ToolCall, bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "{") {
			continue
		}
		var call ToolCall
		decoder := json.NewDecoder(strings.NewReader(strings.Join(lines[i:], "\n")))
		if err := decoder.Decode(&call); err != nil {
			continue
		}
		if call.Action == "use_tool" {
			return call, true
		}
	}
	return ToolCall{}, false
}
