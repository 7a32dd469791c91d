package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoCandidates is returned when an input yields no usable targets.
var ErrNoCandidates = errors.New("no valid candidates found in the input")

// grepableLine matches one open-port record of masscan/nmap grepable output (-oG).
var grepableLine = regexp.MustCompile(`Host:\s*([0-9.]+)\s*\(.*\)\s*Ports:\s*([0-9]+)/open/`)

// LoadCandidates reads targets from path. Files ending in .pcap are treated as
// packet captures, everything else as grepable scanner output.
func LoadCandidates(path string, logger *slog.Logger) ([]Target, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open input file %s: %w", path, err)
	}
	defer file.Close()

	var candidates []Target
	if strings.EqualFold(filepath.Ext(path), ".pcap") {
		candidates, err = ReadPcapCandidates(file)
	} else {
		candidates, err = ParseGrepable(file, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read candidates from %s: %w", path, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	return candidates, nil
}

// ParseGrepable extracts targets from grepable scanner output, in input order.
// Comment lines and lines that do not describe an open port are ignored;
// a port number that cannot be used is logged and the line skipped.
func ParseGrepable(r io.Reader, logger *slog.Logger) ([]Target, error) {
	var targets []Target
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.HasPrefix(line, "#") {
			continue
		}
		match := grepableLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		port, err := strconv.Atoi(match[2])
		if err == nil && (port < 1 || port > 65535) {
			err = fmt.Errorf("port %d out of range", port)
		}
		if err != nil {
			if logger != nil {
				logger.Warn("skipping line with unusable port", "line_number", lineNum, "line", line, "error", err)
			}
			continue
		}

		targets = append(targets, Target{Address: match[1], Port: port})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return targets, nil
}
