package sync

// ActionKind identifies one kind of reconciliation step.
type ActionKind uint8

const (
	ActionMkdir ActionKind = iota
	ActionCopy
	ActionDeleteFile
	ActionDeleteDir

	// ActionSkip never appears in a Plan's action list; it tags the
	// events produced for entries the reconciler refuses to touch.
	ActionSkip
)

var actionNames = []string{
	"mkdir",
	"copy",
	"delete_file",
	"delete_dir",
	"skip",
}

func (k ActionKind) String() string {
	return actionNames[k]
}

// Action is one reconciliation step against the replica. Actions are
// generated by Diff and consumed by Apply within the same pass.
type Action struct {
	Kind ActionKind

	// Path is the tree-relative key the action operates on.
	Path string

	// Src is the absolute source path; set for ActionCopy.
	Src string

	// Dst is the absolute replica path.
	Dst string

	// Overwrite marks a copy that replaces an existing replica file.
	Overwrite bool
}

// Skip records an entry the diff refused to act on, such as a symlink in
// the source or an unreadable node.
type Skip struct {
	Path   string
	Kind   EntryKind
	Reason string
}

// Plan is the ordered outcome of one diff: the actions to execute plus
// the entries that were skipped.
type Plan struct {
	Actions []Action
	Skips   []Skip
}

// Empty reports whether the plan has no actions. Skips alone do not make
// a plan non-empty; two identical trees with a symlink still converge.
func (p *Plan) Empty() bool {
	return len(p.Actions) == 0
}
