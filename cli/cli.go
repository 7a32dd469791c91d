package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/fatih/color"

	"ollamascout/config"
	"ollamascout/logging"
	"ollamascout/report"
	"ollamascout/scanner"
)

const rule = "-------------------------------------"

// Run is the main entry point for the CLI application. It parses arguments,
// runs both discovery phases and prints the report. The return value is the
// process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	logger := logging.New(stderr, slog.LevelInfo)
	cfg, err := config.Load(logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if level := logging.ParseLevel(cfg.LogLevel); level != slog.LevelInfo {
		logger = logging.New(stderr, level)
	}

	fs := flag.NewFlagSet("ollamascout", flag.ContinueOnError)
	fs.SetOutput(stderr)
	jsonOutput := fs.Bool("json", false, "Output results in JSON format")
	dispatch := fs.String("dispatch", cfg.DispatchMode, "Phase 1 dispatcher: poll or pool")
	noColor := fs.Bool("no-color", false, "Disable coloured output")
	fs.Usage = func() { printUsage(stderr, cfg) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	positional := fs.Args()
	if len(positional) > 2 {
		fmt.Fprint(stderr, "Error: Too many arguments provided.\n\n")
		printUsage(stderr, cfg)
		return 1
	}

	inputFile := cfg.DefaultInput
	if len(positional) > 0 {
		inputFile = positional[0]
	}
	if len(positional) > 1 {
		n, warning := parseConcurrency(positional[1], cfg.MaxConcurrent)
		if warning != "" {
			fmt.Fprintln(stderr, warning)
			logger.Warn("max_concurrent adjusted", "value", positional[1], "effective", n)
		}
		cfg.MaxConcurrent = n
	}
	cfg.DispatchMode = *dispatch

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Keep stdout clean for the JSON document.
	out := stdout
	if *jsonOutput {
		out = stderr
	}

	fmt.Fprintf(out, "Reading candidates from: %s\n", inputFile)
	candidates, err := scanner.LoadCandidates(inputFile, logger)
	if err != nil {
		if errors.Is(err, scanner.ErrNoCandidates) {
			fmt.Fprintln(stderr, "Error: No valid candidates found in the input file.")
		} else {
			fmt.Fprintf(stderr, "Error: Could not open input file: %s\n", inputFile)
			logger.Error("failed to load candidates", "path", inputFile, "error", err)
		}
		return 1
	}

	fmt.Fprintf(out, "Read %d candidates.\n", len(candidates))
	fmt.Fprintln(out, "--- Phase 1: Initial Verification ---")
	fmt.Fprintf(out, "Using max concurrency: %d\n", cfg.MaxConcurrent)
	fmt.Fprintf(out, "Probing endpoint: %s\n", cfg.ProbePath)
	fmt.Fprintf(out, "Timeout per request: %dms\n", cfg.ProbeTimeout.Milliseconds())
	fmt.Fprintln(out, rule)

	client := scanner.NewHTTPClient()
	opts := scanner.DispatchOptionsFromConfig(cfg)
	opts.OnMatch = func(t scanner.Target) {
		fmt.Fprintf(out, "[POTENTIAL] %s found at %s (Initial probe OK)\n", opts.Signature.Service, t)
	}
	opts.OnProgress = func(p scanner.Progress) {
		fmt.Fprintln(out, report.ProgressLine(p))
	}

	pipeline := scanner.NewPipeline(
		scanner.NewProber(cfg.DispatchMode, client, opts),
		scanner.NewInterrogatorFromConfig(cfg, client),
		consoleHooks(out, cfg),
	)
	discovery := pipeline.Run(candidates)

	logger.Info("scan finished",
		"candidates", discovery.Candidates,
		"matches", discovery.Phase1.Stats.Matches,
		"timeouts", discovery.Phase1.Stats.Timeouts,
		"transport_errors", discovery.Phase1.Stats.TransportErrors,
		"instances", len(discovery.Instances),
		"elapsed_ms", discovery.Elapsed.Milliseconds(),
	)

	if *jsonOutput {
		err = report.RenderJSON(stdout, discovery)
	} else {
		err = report.RenderText(stdout, discovery, report.TextOptions{
			CatalogPath: cfg.CatalogPath,
			RunningPath: cfg.RunningPath,
			Color:       useColor(stdout, *noColor),
		})
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 0
}

func consoleHooks(out io.Writer, cfg config.Config) scanner.Hooks {
	return scanner.Hooks{
		Phase1Done: func(r scanner.Phase1Result) {
			fmt.Fprintln(out, rule)
			fmt.Fprintln(out, "--- Phase 1 Complete ---")
			fmt.Fprintf(out, "Checked %d candidates in %d seconds.\n", r.Stats.Completed, int64(r.Stats.Elapsed.Seconds()))
			fmt.Fprintf(out, "Found %d potential Ollama instances.\n", r.Stats.Matches)
		},
		Phase2Start: func(targets []scanner.Target) {
			fmt.Fprintln(out, "--- Phase 2: Interrogating Potential Instances ---")
			fmt.Fprintf(out, "Timeout per request: %dms\n", cfg.DetailTimeout.Milliseconds())
			fmt.Fprintln(out, "--------------------------------------------------")
			fmt.Fprintf(out, "Unique potential instances to interrogate: %d\n", len(targets))
		},
		Interrogating: func(t scanner.Target) {
			fmt.Fprintf(out, "[Interrogating] %s...\n", t)
		},
		Interrogated: func(done, total int, _ scanner.VerifiedInstance) {
			fmt.Fprintf(out, "[Progress] Interrogated: %d/%d\n", done, total)
		},
		Phase2Done: func([]scanner.VerifiedInstance) {
			fmt.Fprintln(out, "--------------------------------------------------")
			fmt.Fprintln(out, "--- Phase 2 Complete ---")
		},
	}
}

// parseConcurrency interprets the max_concurrent argument. A non-empty
// warning means the value was adjusted.
func parseConcurrency(raw string, def int) (int, string) {
	n, err := strconv.ParseInt(raw, 10, 0)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return def, fmt.Sprintf("Error: Value for max_concurrent out of range: '%s'. Using default: %d.", raw, def)
		}
		return def, fmt.Sprintf("Error: Invalid value for max_concurrent: '%s'. Using default: %d.", raw, def)
	}
	switch {
	case n == 0:
		return 1, "Warning: max_concurrent cannot be 0. Setting to 1."
	case n < 0:
		return def, fmt.Sprintf("Error: Value for max_concurrent out of range: '%s'. Using default: %d.", raw, def)
	}
	return int(n), ""
}

func useColor(w io.Writer, disabled bool) bool {
	return !disabled && w == io.Writer(os.Stdout) && !color.NoColor
}

// printUsage displays the help message.
func printUsage(w io.Writer, cfg config.Config) {
	fmt.Fprintln(w, "Usage: ollamascout [--json] [--dispatch poll|pool] [--no-color] [input_file] [max_concurrent]")
	fmt.Fprintln(w, "       ollamascout serve")
	fmt.Fprintf(w, "  [input_file]:     masscan results (grepable -oG, or a .pcap capture). Default: %s\n", cfg.DefaultInput)
	fmt.Fprintf(w, "  [max_concurrent]: Max parallel initial scan requests. Default: %d\n", cfg.MaxConcurrent)
	fmt.Fprintln(w, "Flags must come before [input_file] and [max_concurrent]; anything after the first positional is read as a positional.")
	fmt.Fprintln(w, "Example: ollamascout masscan_results.txt 1000")
}
