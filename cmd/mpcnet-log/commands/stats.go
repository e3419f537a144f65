package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/mpcnet-protocol/mpcnet-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	LaneOps           map[log.LaneOp]int
	Connections       map[string]*ConnectionStats
	Errors            int
	BytesIn           int
	BytesOut          int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ConnectionStats holds statistics for a single connection.
type ConnectionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Bytes     int
}

// CollectStats reads the log file and aggregates statistics.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		LaneOps:           make(map[log.LaneOp]int),
		Connections:       make(map[string]*ConnectionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		switch {
		case event.Frame != nil:
			stats.EventsByDirection[event.Direction]++
			if event.Direction == log.DirectionIn {
				stats.BytesIn += event.Frame.Size
			} else {
				stats.BytesOut += event.Frame.Size
			}
		case event.Lane != nil:
			stats.LaneOps[event.Lane.Op]++
		case event.Error != nil:
			stats.Errors++
		}

		if event.ConnectionID != "" {
			conn, ok := stats.Connections[event.ConnectionID]
			if !ok {
				conn = &ConnectionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
				stats.Connections[event.ConnectionID] = conn
			}
			conn.Events++
			if event.Timestamp.After(conn.LastSeen) {
				conn.LastSeen = event.Timestamp
			}
			if event.Frame != nil {
				conn.Bytes += event.Frame.Size
			}
		}
	}

	return stats, nil
}

// RunStats analyzes the log file and prints statistics to w.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	if !stats.TimeRange.Start.IsZero() {
		fmt.Fprintf(w, "Time range:   %s .. %s (%s)\n",
			stats.TimeRange.Start.UTC().Format(time.RFC3339),
			stats.TimeRange.End.UTC().Format(time.RFC3339),
			stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
	}

	fmt.Fprintln(w, "\nBy category:")
	for _, c := range []log.Category{log.CategoryFrame, log.CategoryLane, log.CategoryError} {
		if n := stats.EventsByCategory[c]; n > 0 {
			fmt.Fprintf(w, "  %-6s %d\n", c.String(), n)
		}
	}

	if stats.EventsByDirection[log.DirectionIn]+stats.EventsByDirection[log.DirectionOut] > 0 {
		fmt.Fprintln(w, "\nFrames:")
		fmt.Fprintf(w, "  IN   %d frames, %d bytes\n", stats.EventsByDirection[log.DirectionIn], stats.BytesIn)
		fmt.Fprintf(w, "  OUT  %d frames, %d bytes\n", stats.EventsByDirection[log.DirectionOut], stats.BytesOut)
	}

	if len(stats.LaneOps) > 0 {
		fmt.Fprintln(w, "\nLane operations:")
		for _, op := range []log.LaneOp{log.LaneAcquire, log.LaneRelease, log.LaneBlocked, log.LaneInsert, log.LaneRemove} {
			if n := stats.LaneOps[op]; n > 0 {
				fmt.Fprintf(w, "  %-8s %d\n", op.String(), n)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintf(w, "\nErrors: %d\n", stats.Errors)
	}

	if len(stats.Connections) > 0 {
		ids := make([]string, 0, len(stats.Connections))
		for id := range stats.Connections {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Fprintf(w, "\nConnections (%d):\n", len(ids))
		for _, id := range ids {
			conn := stats.Connections[id]
			fmt.Fprintf(w, "  %s  %d events, %d bytes, active %s\n",
				shortenConnID(id), conn.Events, conn.Bytes,
				conn.LastSeen.Sub(conn.FirstSeen).Round(time.Millisecond))
		}
	}

	return nil
}
