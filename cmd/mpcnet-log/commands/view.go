// Package commands implements the mpcnet-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/mpcnet-protocol/mpcnet-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var typeLabel string
	switch {
	case event.Frame != nil:
		typeLabel = "Frame"
	case event.Lane != nil:
		typeLabel = event.Lane.Op.String()
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	if event.ConnectionID != "" {
		fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n",
			ts, shortenConnID(event.ConnectionID), event.Direction.String(),
			event.Category.String(), typeLabel)
	} else {
		fmt.Fprintf(w, "%s %s %s\n", ts, event.Category.String(), typeLabel)
	}

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Lane != nil:
		formatLaneDetails(w, event.Lane)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatLaneDetails(w io.Writer, lane *log.LaneEvent) {
	fmt.Fprintf(w, "  Slot: %d  PoolSize: %d", lane.Slot, lane.PoolSize)
	if lane.Op == log.LaneAcquire || lane.Op == log.LaneBlocked {
		fmt.Fprintf(w, "  Ticket: %d", lane.Ticket)
	}
	fmt.Fprintln(w)
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
}

// ParseDirectionFlag parses a -direction flag value.
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want in or out)", s)
	}
}

// ParseCategoryFlag parses a -category flag value.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "frame":
		return log.CategoryFrame, nil
	case "lane":
		return log.CategoryLane, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q (want frame, lane or error)", s)
	}
}

// ViewOptions specifies filtering criteria for the view command.
type ViewOptions struct {
	ConnID    string
	Direction string
	Category  string
}

// RunView reads the log file and writes matching events to w in
// human-readable form.
func RunView(path string, opts ViewOptions, w io.Writer) error {
	filter := log.Filter{ConnectionID: opts.ConnID}
	if opts.Direction != "" {
		d, err := ParseDirectionFlag(opts.Direction)
		if err != nil {
			return err
		}
		filter.Direction = &d
	}
	if opts.Category != "" {
		c, err := ParseCategoryFlag(opts.Category)
		if err != nil {
			return err
		}
		filter.Category = &c
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}
