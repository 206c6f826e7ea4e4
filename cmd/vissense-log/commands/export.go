package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/vissense/vissense-go/pkg/log"
)

// RunExport exports the matching events to the specified format.
// An empty output writes to stdout.
func RunExport(path string, filter log.Filter, format, output string) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "monitor_id", "category", "topic", "element_id", "state", "percentage", "old_state", "old_percentage", "retained", "entity", "new_state"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		row := make([]string, len(header))
		row[0] = event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
		row[1] = event.MonitorID
		row[2] = event.Category.String()
		row[3] = event.Topic
		row[4] = event.ElementID

		if s := event.Sample; s != nil {
			row[5] = s.Code.String()
			row[6] = strconv.FormatFloat(s.Percentage, 'f', -1, 64)
			if s.PreviousCode != nil {
				row[7] = s.PreviousCode.String()
			}
			if s.PreviousPercentage != nil {
				row[8] = strconv.FormatFloat(*s.PreviousPercentage, 'f', -1, 64)
			}
			row[9] = strconv.FormatBool(s.Retained)
		}
		if sc := event.StateChange; sc != nil {
			row[7] = sc.OldState
			row[10] = sc.Entity.String()
			row[11] = sc.NewState
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
