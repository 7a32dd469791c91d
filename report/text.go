package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"ollamascout/scanner"
)

const (
	rule    = "-------------------------------------"
	banner  = "====================================="
	service = "Ollama"
)

// TextOptions controls RenderText.
type TextOptions struct {
	CatalogPath string
	RunningPath string
	Color       bool
}

type palette struct {
	title func(a ...interface{}) string
	good  func(a ...interface{}) string
	bad   func(a ...interface{}) string
	dim   func(a ...interface{}) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		title: mk(color.Bold),
		good:  mk(color.FgGreen),
		bad:   mk(color.FgRed),
		dim:   mk(color.FgHiBlack),
	}
}

// RenderText writes the human-readable final report.
func RenderText(w io.Writer, d scanner.Discovery, opts TextOptions) error {
	p := newPalette(opts.Color)
	var b strings.Builder

	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, p.title("Scan Finished"))
	fmt.Fprintf(&b, "Total duration: %d seconds\n", int64(d.Elapsed/time.Second))

	if len(d.Instances) == 0 {
		fmt.Fprintf(&b, "No verified %s instances found.\n", service)
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Found %d verified %s instances:\n", len(d.Instances), service)
	fmt.Fprintln(&b, rule)
	for _, inst := range d.Instances {
		line := "Instance: " + inst.Target.BaseURL()
		if inst.AnySucceeded {
			fmt.Fprintln(&b, p.good(line))
		} else {
			fmt.Fprintln(&b, p.bad(line+" [unreachable]"))
		}

		fmt.Fprintf(&b, "  Installed Models (%s):\n", opts.CatalogPath)
		writeListing(&b, p, inst.Tags, "(No models installed)", false)

		fmt.Fprintf(&b, "  Running Models (%s):\n", opts.RunningPath)
		writeListing(&b, p, inst.Running, "(No models currently running/loaded)", true)

		fmt.Fprintln(&b, rule)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeListing(b *strings.Builder, p palette, res scanner.Result, empty string, withExpiry bool) {
	if !res.OK() {
		fmt.Fprintf(b, "    %s %s\n", p.bad("Error:"), res.Error)
		return
	}

	models, ok := scanner.Models(res.Data)
	switch {
	case ok && len(models) == 0:
		fmt.Fprintf(b, "    %s\n", p.dim(empty))
	case ok:
		for _, m := range models {
			fmt.Fprintf(b, "    - %s (Size: %s, Quant: %s)", m.Name, m.ParameterSize, m.Quantization)
			if withExpiry && m.HasExpiry() {
				fmt.Fprintf(b, " [Expires: %s]", m.ExpiresAt)
			}
			b.WriteByte('\n')
		}
	case !res.Data.IsNull():
		fmt.Fprintln(b, "    (Unexpected JSON format or no 'models' array)")
	default:
		fmt.Fprintln(b, "    (No data retrieved)")
	}
}

// ProgressLine formats a Phase 1 progress snapshot.
func ProgressLine(pr scanner.Progress) string {
	return fmt.Sprintf("[Progress] Checked: %d/%d, Potential: %d, Rate: %.1f req/s",
		pr.Completed, pr.Total, pr.Matches, pr.Rate)
}

// RenderJSON writes the discovery as indented JSON.
func RenderJSON(w io.Writer, d scanner.Discovery) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
