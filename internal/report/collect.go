// Package report collects completed action results from the queue
// directory and assembles them into model.Result entries ready for
// serialization, matching original_source/src/workspace.c's
// lmapd_workspace_read_results.
package report

import (
	"io"
	"os"
	"path/filepath"

	"github.com/lmapcloud/lmapd/internal/logger"
	"github.com/lmapcloud/lmapd/internal/metacsv"
	"github.com/lmapcloud/lmapd/internal/model"
)

// CollectResults reads the top level of every schedule's workspace
// directory and decodes each .meta/.data pair found there into a
// model.Result, appending it to m.Results. Subdirectories (_incoming and
// the per-action workspaces) are not scanned, so pairs that are still in
// an action workspace or that were delivered into _incoming are not
// collected.
//
// It tolerates per-pair failures the way the original did: a pair this
// function cannot read is logged and skipped rather than aborting the
// whole collection run. CollectResults only returns an error when at
// least one pair or workspace failed to read and no result at all could
// be read from any schedule workspace — empty, error-free workspaces are
// not themselves an error.
func CollectResults(m *model.Model, log logger.Logger) error {
	var hadErrors, validReport bool

	for _, s := range m.Schedules {
		if s.Workspace == "" {
			continue
		}
		bases, err := pairBases(s.Workspace)
		if err != nil {
			log.Errorf("report: read workspace %q: %v", s.Workspace, err)
			hadErrors = true
			continue
		}
		for _, base := range bases {
			res, err := readPair(s.Workspace, base)
			if err != nil {
				log.Errorf("report: read result %q: %v", filepath.Join(s.Workspace, base), err)
				hadErrors = true
				continue
			}
			m.Results = append(m.Results, res)
			validReport = true
		}
	}

	if hadErrors && !validReport {
		return errNoResultsReadable
	}
	return nil
}

var errNoResultsReadable = &collectError{"no result could be read from any schedule workspace"}

type collectError struct{ msg string }

func (e *collectError) Error() string { return e.msg }

// pairBases returns the base names (without suffix) of every
// non-directory ".meta" entry in dir, in directory order.
func pairBases(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var bases []string
	const suffix = ".meta"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
			continue
		}
		bases = append(bases, name[:len(name)-len(suffix)])
	}
	return bases, nil
}

// readPair decodes one base's .meta/.data pair into a model.Result.
func readPair(dir, base string) (*model.Result, error) {
	metaFile, err := os.Open(filepath.Join(dir, base+".meta"))
	if err != nil {
		return nil, err
	}
	defer metaFile.Close()

	rec, err := metacsv.ReadMeta(metaFile)
	if err != nil {
		return nil, err
	}

	dataFile, err := os.Open(filepath.Join(dir, base+".data"))
	if err != nil {
		return nil, err
	}
	defer dataFile.Close()

	// Column names are not recoverable from the CSV payload itself
	// (metacsv.ReadTable's doc comment); a later engine stage may attach
	// them from task metadata when one is available.
	tab, err := metacsv.ReadTable(dataFile, nil)
	if err != nil && err != io.EOF {
		return nil, err
	}

	res := &model.Result{
		Schedule:    rec.Schedule,
		Action:      rec.Action,
		Task:        rec.Task,
		Options:     rec.Options,
		Tags:        rec.Tags,
		Event:       rec.Event.UTC().Format("2006-01-02T15:04:05Z"),
		Start:       rec.Start,
		End:         rec.End,
		CycleNumber: rec.CycleNumber,
		Status:      rec.Status,
	}
	if tab != nil {
		res.Tables = []*model.Table{tab}
	}
	return res, nil
}
