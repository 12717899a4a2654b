package workspace

import (
	"os"
	"path/filepath"
)

// Move implements the atomic .meta/.data pair move discipline from
// spec.md §4.3 and original_source/src/workspace.c's
// lmapd_workspace_schedule_move/lmapd_workspace_action_move: only pairs
// where both base+".meta" and base+".data" are regular files in srcDir
// are eligible; the move is link(src,dst) + unlink(src), .data linked
// first, then .meta; if linking .meta fails after .data succeeded, the
// already-linked .data is rolled back via os.Remove(dst .data). This
// guarantees a consumer scanning for .meta files in dstDir never
// observes a .meta whose .data sibling is missing.
//
// Move reports moved=false (with a nil error) when the pair is not
// eligible (one or both files missing, or not a regular file) — this is
// not an error condition, just "nothing to move yet".
func Move(srcDir, dstDir, base string) (moved bool, err error) {
	dataName := base + ".data"
	metaName := base + ".meta"

	srcData := filepath.Join(srcDir, dataName)
	srcMeta := filepath.Join(srcDir, metaName)

	if !isRegularFile(srcData) || !isRegularFile(srcMeta) {
		return false, nil
	}

	dstData := filepath.Join(dstDir, dataName)
	dstMeta := filepath.Join(dstDir, metaName)

	if err := os.Link(srcData, dstData); err != nil {
		return false, err
	}
	if err := os.Link(srcMeta, dstMeta); err != nil {
		_ = os.Remove(dstData) // roll back the .data link, per workspace.c
		return false, err
	}

	if err := os.Remove(srcData); err != nil {
		return false, err
	}
	if err := os.Remove(srcMeta); err != nil {
		return false, err
	}
	return true, nil
}

// Link implements the non-destructive half of the atomic .meta/.data
// pair discipline: link(src,dst) for both files, .data linked first,
// then .meta, with the same .data rollback on a failed .meta link as
// Move — but the source pair is never unlinked. Used when one pair must
// be delivered into more than one destination (spec.md §3: an action's
// destinations are a set, and self-loops are legal), matching
// original_source/src/workspace.c's lmapd_workspace_action_move, which
// links into every destination and leaves source reclamation to the
// action-clean pass rather than unlinking after the first destination.
func Link(srcDir, dstDir, base string) (linked bool, err error) {
	dataName := base + ".data"
	metaName := base + ".meta"

	srcData := filepath.Join(srcDir, dataName)
	srcMeta := filepath.Join(srcDir, metaName)

	if !isRegularFile(srcData) || !isRegularFile(srcMeta) {
		return false, nil
	}

	dstData := filepath.Join(dstDir, dataName)
	dstMeta := filepath.Join(dstDir, metaName)

	if err := os.Link(srcData, dstData); err != nil {
		return false, err
	}
	if err := os.Link(srcMeta, dstMeta); err != nil {
		_ = os.Remove(dstData) // roll back the .data link, per workspace.c
		return false, err
	}
	return true, nil
}

func isRegularFile(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// eligiblePairBases lists every base name in dir with both a ".data" and
// a ".meta" regular-file sibling, skipping "_"/"."-prefixed entries.
func eligiblePairBases(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var bases []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || len(name) == 0 || name[0] == '_' || name[0] == '.' {
			continue
		}
		const suffix = ".meta"
		if len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
			continue
		}
		bases = append(bases, name[:len(name)-len(suffix)])
	}
	return bases, nil
}

// MovePairs scans srcDir for eligible .meta/.data pairs (every regular,
// non-"_"/non-"."-prefixed .meta file whose .data sibling also exists)
// and moves each into dstDir, returning the bases successfully moved.
func MovePairs(srcDir, dstDir string) ([]string, error) {
	bases, err := eligiblePairBases(srcDir)
	if err != nil {
		return nil, err
	}
	var moved []string
	for _, base := range bases {
		ok, err := Move(srcDir, dstDir, base)
		if err != nil {
			return moved, err
		}
		if ok {
			moved = append(moved, base)
		}
	}
	return moved, nil
}

// LinkPairs scans srcDir for eligible .meta/.data pairs and links each
// into dstDir without removing the source, so the same pair can be
// delivered to multiple destinations in turn; the source is reclaimed
// later by CleanAction.
func LinkPairs(srcDir, dstDir string) ([]string, error) {
	bases, err := eligiblePairBases(srcDir)
	if err != nil {
		return nil, err
	}
	var linked []string
	for _, base := range bases {
		ok, err := Link(srcDir, dstDir, base)
		if err != nil {
			return linked, err
		}
		if ok {
			linked = append(linked, base)
		}
	}
	return linked, nil
}
