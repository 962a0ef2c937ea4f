package tle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Parse reads NORAD element sets from r. Both the 3-line format (name line
// followed by the two element lines) and the bare 2-line format are accepted;
// the formats may be mixed within one file. Malformed entries are skipped
// with a warning log rather than failing the whole catalog.
func Parse(r io.Reader, logger *slog.Logger) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	var entries []Entry
	for i := 0; i < len(lines); {
		name := ""
		j := i
		if !isElementLine(lines[j], '1') {
			// Treat as a name line; the element pair must follow.
			name = strings.TrimSpace(lines[j])
			j++
		}
		if j+1 >= len(lines) || !isElementLine(lines[j], '1') || !isElementLine(lines[j+1], '2') {
			logger.Warn("skipping malformed TLE entry", "line_index", i, "name", name)
			i++
			continue
		}
		line1 := lines[j]
		line2 := lines[j+1]
		consumed := j + 2 - i

		entry, err := parseLines(name, line1, line2)
		if err != nil {
			logger.Warn("skipping TLE entry", "name", name, "error", err)
			i += consumed
			continue
		}

		entries = append(entries, entry)
		i += consumed
	}

	return entries, nil
}

func isElementLine(s string, n byte) bool {
	return len(s) >= 2 && s[0] == n && s[1] == ' '
}

func parseLines(name, line1, line2 string) (Entry, error) {
	if len(line1) < 32 {
		return Entry{}, fmt.Errorf("line1 too short (%d chars)", len(line1))
	}

	// NORAD ID occupies columns 3-7 of line 1.
	noradStr := strings.TrimSpace(line1[2:7])
	noradID, err := strconv.Atoi(noradStr)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid NORAD ID %q: %w", noradStr, err)
	}

	// Epoch occupies columns 19-32 of line 1.
	epoch, err := parseEpoch(strings.TrimSpace(line1[18:32]))
	if err != nil {
		return Entry{}, fmt.Errorf("invalid epoch: %w", err)
	}

	return Entry{
		NoradID: noradID,
		Name:    name,
		Epoch:   epoch,
		Line1:   line1,
		Line2:   line2,
	}, nil
}

// parseEpoch converts a TLE epoch in YYDDD.DDDDDDDD form to time.Time.
// Year 00-56 maps to the 2000s, 57-99 to the 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", s[2:], err)
	}

	// Day of year is 1-based: day 1.0 is 0h Jan 1.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}
