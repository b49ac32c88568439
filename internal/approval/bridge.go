package approval

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"squire/internal/tools"
)

// Line prefixes of the bridge wire protocol.
const (
	requestPrefix  = "APPROVAL_REQUEST:"
	responsePrefix = "APPROVAL_RESPONSE:"
)

// wireChange is the IDE-facing change payload. For shell changes the
// path field carries the command, which is what existing extension
// clients expect.
type wireChange struct {
	Operation  string `json:"operation"`
	Path       string `json:"path"`
	Content    string `json:"content"`
	OldContent string `json:"old_content"`
	Reason     string `json:"reason"`
}

type approvalRequest struct {
	ChangeID string     `json:"change_id"`
	Change   wireChange `json:"change"`
}

type approvalResponse struct {
	ChangeID string `json:"change_id"`
	Approved bool   `json:"approved"`
}

// Bridge relays approval traffic over a line protocol so an external
// process can decide changes. It only marshals; decision logic stays
// in the Handler.
type Bridge struct {
	handler *Handler

	mu  sync.Mutex
	out io.Writer
}

// NewBridge creates a bridge emitting requests to out.
func NewBridge(handler *Handler, out io.Writer) *Bridge {
	return &Bridge{handler: handler, out: out}
}

// ChangeProposed implements Notifier by writing an APPROVAL_REQUEST
// line for the change.
func (b *Bridge) ChangeProposed(changeID string, change Change) {
	data, err := json.Marshal(approvalRequest{ChangeID: changeID, Change: toWire(change)})
	if err != nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.out, "%s%s\n", requestPrefix, data)
}

func toWire(change Change) wireChange {
	wire := wireChange{
		Operation:  change.Op,
		Path:       change.Path,
		Content:    change.Content,
		OldContent: change.OldContent,
		Reason:     change.Reason,
	}
	if change.Op == OpExecuteShell {
		wire.Path = change.Command
	}
	return wire
}

// HandleLine applies one inbound line when it is an approval response,
// reporting whether the line was consumed.
func (b *Bridge) HandleLine(ctx context.Context, line string) (tools.Result, bool) {
	payload, ok := strings.CutPrefix(line, responsePrefix)
	if !ok {
		return tools.Result{}, false
	}
	var response approvalResponse
	if err := json.Unmarshal([]byte(payload), &response); err != nil {
		return tools.Errorf("invalid approval response: %v", err), true
	}
	if response.Approved {
		return b.handler.Approve(ctx, response.ChangeID), true
	}
	return b.handler.Reject(response.ChangeID, ""), true
}

// Listen scans lines from r until it is exhausted, consuming approval
// responses and passing every other line to next.
func (b *Bridge) Listen(ctx context.Context, r io.Reader, next func(line string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if _, consumed := b.HandleLine(ctx, line); consumed {
			continue
		}
		if next != nil {
			next(line)
		}
	}
	return scanner.Err()
}
