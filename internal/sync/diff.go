package sync

import (
	"sort"
)

// DiffOptions tunes the comparison. A nil Detector falls back to
// (size, mtime) comparison.
type DiffOptions struct {
	Detector Detector
}

// Diff compares two scans and produces the ordered plan that transforms
// the replica tree into a copy of the source tree.
//
// Ordering guarantees:
//   - deletes come first, child before parent, so a directory is never
//     removed while the plan still owes deletes beneath it
//   - creates and copies follow, parent before child, so a directory
//     exists before anything is placed inside it
//
// A deleted directory subsumes its subtree (the apply primitive removes
// it recursively), so deletes covered by an ancestor directory delete are
// suppressed and the removal is reported once.
func Diff(source, replica *ScanResult, opts DiffOptions) *Plan {
	det := opts.Detector
	if det == nil {
		det = ModTimeDetector{}
	}

	plan := &Plan{}

	srcPaths := source.Paths()
	repPaths := replica.Paths()

	onlySource := srcPaths.Difference(repPaths).ToSlice()
	onlyReplica := repPaths.Difference(srcPaths).ToSlice()
	inBoth := srcPaths.Intersect(repPaths).ToSlice()
	sort.Strings(onlySource)
	sort.Strings(onlyReplica)
	sort.Strings(inBoth)

	deletes := make(map[string]ActionKind)
	var mkdirs []Action
	var copies []Action

	for _, path := range onlyReplica {
		e, _ := replica.Lookup(path)
		switch e.Kind {
		case KindDir:
			deletes[path] = ActionDeleteDir
		case KindFile, KindSymlink:
			deletes[path] = ActionDeleteFile
		case KindOther:
			plan.Skips = append(plan.Skips, Skip{Path: path, Kind: e.Kind, Reason: "unreadable replica entry"})
		}
	}

	for _, path := range onlySource {
		e, _ := source.Lookup(path)
		switch e.Kind {
		case KindDir:
			mkdirs = append(mkdirs, Action{Kind: ActionMkdir, Path: path, Dst: replica.AbsPath(path)})
		case KindFile:
			copies = append(copies, Action{
				Kind: ActionCopy,
				Path: path,
				Src:  source.AbsPath(path),
				Dst:  replica.AbsPath(path),
			})
		case KindSymlink:
			plan.Skips = append(plan.Skips, Skip{Path: path, Kind: e.Kind, Reason: "symlinks are not copied"})
		case KindOther:
			plan.Skips = append(plan.Skips, Skip{Path: path, Kind: e.Kind, Reason: "unreadable source entry"})
		}
	}

	for _, path := range inBoth {
		s, _ := source.Lookup(path)
		r, _ := replica.Lookup(path)

		if s.Kind == r.Kind {
			switch s.Kind {
			case KindDir:
				// structural presence is already correct
			case KindFile:
				modified, err := det.Modified(s, r, source.AbsPath(path), replica.AbsPath(path))
				if err != nil {
					// can't tell, recopy to be safe
					modified = true
				}
				if modified {
					copies = append(copies, Action{
						Kind:      ActionCopy,
						Path:      path,
						Src:       source.AbsPath(path),
						Dst:       replica.AbsPath(path),
						Overwrite: true,
					})
				}
			case KindSymlink:
				plan.Skips = append(plan.Skips, Skip{Path: path, Kind: s.Kind, Reason: "symlinks are not synced"})
			case KindOther:
				plan.Skips = append(plan.Skips, Skip{Path: path, Kind: s.Kind, Reason: "unreadable entry"})
			}
			continue
		}

		// kind changed: remove the replica's version, then recreate as
		// whatever the source has now
		switch r.Kind {
		case KindDir:
			deletes[path] = ActionDeleteDir
		case KindFile, KindSymlink:
			deletes[path] = ActionDeleteFile
		case KindOther:
			// can't safely replace something we couldn't read
			plan.Skips = append(plan.Skips, Skip{Path: path, Kind: r.Kind, Reason: "unreadable replica entry"})
			continue
		}

		switch s.Kind {
		case KindDir:
			mkdirs = append(mkdirs, Action{Kind: ActionMkdir, Path: path, Dst: replica.AbsPath(path)})
		case KindFile:
			copies = append(copies, Action{
				Kind: ActionCopy,
				Path: path,
				Src:  source.AbsPath(path),
				Dst:  replica.AbsPath(path),
			})
		case KindSymlink, KindOther:
			plan.Skips = append(plan.Skips, Skip{Path: path, Kind: s.Kind, Reason: "symlinks are not copied"})
		}
	}

	// Drop deletes already covered by an ancestor directory delete.
	delPaths := make([]string, 0, len(deletes))
	for path := range deletes {
		delPaths = append(delPaths, path)
	}
	sort.Strings(delPaths)

	var kept []string
	var dirRoots []string
	for _, path := range delPaths {
		covered := false
		for _, root := range dirRoots {
			if isUnder(path, root) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		kept = append(kept, path)
		if deletes[path] == ActionDeleteDir {
			dirRoots = append(dirRoots, path)
		}
	}

	// deletes child-before-parent, then directories parent-before-child,
	// then file copies; every copy's parent exists by the time it runs
	sort.Sort(sort.Reverse(sort.StringSlice(kept)))
	for _, path := range kept {
		plan.Actions = append(plan.Actions, Action{Kind: deletes[path], Path: path, Dst: replica.AbsPath(path)})
	}

	sort.Slice(mkdirs, func(i, j int) bool { return mkdirs[i].Path < mkdirs[j].Path })
	plan.Actions = append(plan.Actions, mkdirs...)

	sort.Slice(copies, func(i, j int) bool { return copies[i].Path < copies[j].Path })
	plan.Actions = append(plan.Actions, copies...)

	sort.Slice(plan.Skips, func(i, j int) bool { return plan.Skips[i].Path < plan.Skips[j].Path })
	return plan
}
