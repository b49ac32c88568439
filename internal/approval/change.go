package approval

// Operation kinds for a proposed change.
const (
	OpCreate       = "create"
	OpModify       = "modify"
	OpDelete       = "delete"
	OpExecuteShell = "execute_shell"
)

// Change is a proposed mutation awaiting a decision. Shell proposals
// carry their command in Command; the path field never doubles as a
// command except on the wire, where IDE clients expect the overload.
type Change struct {
	Op         string
	Path       string
	Content    string
	OldContent string
	Command    string
	Reason     string
}

// Diff renders a unified diff for modify changes. Other operations
// have nothing to diff.
func (c Change) Diff() string {
	if c.Op != OpModify || c.OldContent == "" {
		return ""
	}
	return unifiedDiff(c.OldContent, c.Content, "a/"+c.Path, "b/"+c.Path)
}
