package metacsv

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/lmapcloud/lmapd/internal/model"
)

// Magic is the identifier-and-version string written as the first record
// of every .meta file, spec.md §4.3 step 1.
const Magic = "lmapd-meta-1.0"

// Delimiter is the field delimiter used throughout .meta/.data files.
const Delimiter byte = ';'

// MetaRecord is the decoded form of a .meta file, spec.md §4.3.
type MetaRecord struct {
	Schedule string
	Action   string
	Task     string

	// TaskOptions/ActionOptions are the two option groups written (spec.md
	// §4.3 steps 5-6). WriteMeta writes them as two back-to-back groups;
	// ReadMeta, which has no way to tell where one group ends and the
	// next begins from the file alone, reconstructs them into a single
	// flat, order-preserving Options list — the shape internal/report's
	// model.Result.Options actually needs downstream.
	TaskOptions   []*model.Option
	ActionOptions []*model.Option
	Options       []*model.Option

	Tags []string // task tags, then schedule tags, then action tags, in order

	Event time.Time // schedule's last_invocation
	Start time.Time // action's last_invocation

	CycleNumber model.Optional[string]

	End    model.Optional[time.Time]
	Status model.Optional[int]
}

// WriteMeta writes rec's start-of-run fields (spec.md §4.3 steps 1-10),
// matching original_source/src/workspace.c's
// lmapd_workspace_action_meta_add_start. Completion fields (step 11) are
// appended later via AppendCompletion, once the child process exits.
func WriteMeta(w io.Writer, rec MetaRecord) error {
	cw := NewWriter(w, Delimiter)

	if err := cw.KeyValue("magic", Magic); err != nil {
		return err
	}
	if err := cw.KeyValue("schedule", rec.Schedule); err != nil {
		return err
	}
	if err := cw.KeyValue("action", rec.Action); err != nil {
		return err
	}
	if err := cw.KeyValue("task", rec.Task); err != nil {
		return err
	}

	for _, o := range rec.TaskOptions {
		if err := writeOption(cw, o); err != nil {
			return err
		}
	}
	for _, o := range rec.ActionOptions {
		if err := writeOption(cw, o); err != nil {
			return err
		}
	}

	for _, t := range rec.Tags {
		if err := cw.KeyValue("tag", t); err != nil {
			return err
		}
	}

	if err := cw.KeyValue("event", strconv.FormatInt(rec.Event.Unix(), 10)); err != nil {
		return err
	}
	if err := cw.KeyValue("start", strconv.FormatInt(rec.Start.Unix(), 10)); err != nil {
		return err
	}
	if cycle, ok := rec.CycleNumber.Get(); ok {
		if err := cw.KeyValue("cycle-number", cycle); err != nil {
			return err
		}
	}
	return nil
}

// writeOption writes the three option rows described in spec.md §4.3
// step 5, omitting rows for fields that are not set.
func writeOption(cw *Writer, o *model.Option) error {
	if err := cw.KeyValue("option-id", o.ID); err != nil {
		return err
	}
	if name, ok := o.Name.Get(); ok {
		if err := cw.KeyValue("option-name", name); err != nil {
			return err
		}
	}
	if value, ok := o.Value.Get(); ok {
		if err := cw.KeyValue("option-value", value); err != nil {
			return err
		}
	}
	return nil
}

// AppendCompletion appends the end-of-run fields (spec.md §4.3 step 11:
// end;<epoch>, status;<int>) to an already-written .meta file, matching
// original_source/src/workspace.c's lmapd_workspace_action_meta_add_end.
func AppendCompletion(path string, end time.Time, status int) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := NewWriter(f, Delimiter)
	if err := cw.KeyValue("end", strconv.FormatInt(end.Unix(), 10)); err != nil {
		return err
	}
	return cw.KeyValue("status", strconv.Itoa(status))
}

// ReadMeta parses a .meta file back into a MetaRecord, the inverse of
// WriteMeta/AppendCompletion, matching
// original_source/src/workspace.c's read_result().
func ReadMeta(r io.Reader) (MetaRecord, error) {
	var rec MetaRecord
	cr := NewReader(r, Delimiter)

	var pendingOption *model.Option

	flushOption := func() {
		if pendingOption == nil {
			return
		}
		rec.Options = append(rec.Options, pendingOption)
		pendingOption = nil
	}

	for {
		fields, err := cr.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rec, err
		}
		if len(fields) < 2 {
			continue
		}
		key, value := fields[0], fields[1]
		switch key {
		case "magic":
			// identifier only, not otherwise validated
		case "schedule":
			rec.Schedule = value
		case "action":
			rec.Action = value
		case "task":
			rec.Task = value
		case "option-id":
			flushOption()
			pendingOption = &model.Option{ID: value}
		case "option-name":
			if pendingOption != nil {
				pendingOption.Name = model.Some(value)
			}
		case "option-value":
			if pendingOption != nil {
				pendingOption.Value = model.Some(value)
			}
		case "tag":
			rec.Tags = append(rec.Tags, value)
		case "event":
			flushOption()
			epoch, convErr := strconv.ParseInt(value, 10, 64)
			if convErr != nil {
				return rec, fmt.Errorf("metacsv: invalid event epoch %q", value)
			}
			rec.Event = time.Unix(epoch, 0).UTC()
		case "start":
			epoch, convErr := strconv.ParseInt(value, 10, 64)
			if convErr != nil {
				return rec, fmt.Errorf("metacsv: invalid start epoch %q", value)
			}
			rec.Start = time.Unix(epoch, 0).UTC()
		case "cycle-number":
			rec.CycleNumber = model.Some(value)
		case "end":
			epoch, convErr := strconv.ParseInt(value, 10, 64)
			if convErr != nil {
				return rec, fmt.Errorf("metacsv: invalid end epoch %q", value)
			}
			rec.End = model.Some(time.Unix(epoch, 0).UTC())
		case "status":
			status, convErr := strconv.Atoi(value)
			if convErr != nil {
				return rec, fmt.Errorf("metacsv: invalid status %q", value)
			}
			rec.Status = model.Some(status)
		}
	}
	flushOption()
	return rec, nil
}
