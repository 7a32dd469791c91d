package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"ollamascout/scanner"
)

// maxCandidates bounds a single request so one task cannot exhaust the store.
const maxCandidates = 1_000_000

// requestCandidates merges explicit targets and parsed grepable text, in that order.
func requestCandidates(req CreateScanRequest, logger *slog.Logger) ([]scanner.Target, error) {
	candidates := make([]scanner.Target, 0, len(req.Targets))
	for i, t := range req.Targets {
		if err := validateTarget(t); err != nil {
			return nil, fmt.Errorf("targets[%d]: %w", i, err)
		}
		candidates = append(candidates, t)
	}

	if strings.TrimSpace(req.Grepable) != "" {
		parsed, err := scanner.ParseGrepable(strings.NewReader(req.Grepable), logger)
		if err != nil {
			return nil, fmt.Errorf("grepable: %w", err)
		}
		candidates = append(candidates, parsed...)
	}

	if len(candidates) == 0 {
		return nil, scanner.ErrNoCandidates
	}
	if len(candidates) > maxCandidates {
		return nil, fmt.Errorf("too many candidates: %d (limit %d)", len(candidates), maxCandidates)
	}
	return candidates, nil
}

func validateTarget(t scanner.Target) error {
	if net.ParseIP(t.Address) == nil {
		return fmt.Errorf("address %q is not an IP literal", t.Address)
	}
	if t.Port < 1 || t.Port > 65535 {
		return errors.New("port must be within 1-65535 range")
	}
	return nil
}
