package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ollamascout/scanner"
)

func doc(t *testing.T, body string) scanner.Document {
	t.Helper()
	d, err := scanner.ParseDocument([]byte(body))
	if err != nil {
		t.Fatalf("ParseDocument(%s): %v", body, err)
	}
	return d
}

var plain = TextOptions{CatalogPath: "/api/tags", RunningPath: "/api/ps"}

func TestRenderText_NoInstances(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, scanner.Discovery{Elapsed: 3500 * time.Millisecond}, plain); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Scan Finished", "Total duration: 3 seconds", "No verified Ollama instances found."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderText_Instances(t *testing.T) {
	d := scanner.Discovery{
		Instances: []scanner.VerifiedInstance{
			{
				Target: scanner.Target{Address: "10.0.0.1", Port: 11434},
				Tags: scanner.Result{Data: doc(t, `{"models":[
					{"name":"llama3:8b","details":{"parameter_size":"8.0B","quantization_level":"Q4_0"}},
					{"name":"mystery"}]}`)},
				Running: scanner.Result{Data: doc(t, `{"models":[
					{"name":"llama3:8b","details":{"parameter_size":"8.0B","quantization_level":"Q4_0"},"expires_at":"2026-10-14T12:00:00Z"},
					{"name":"idle","expires_at":"0001-01-01T00:00:00Z"}]}`)},
				AnySucceeded: true,
			},
			{
				Target:       scanner.Target{Address: "10.0.0.2", Port: 11434},
				Tags:         scanner.Result{Data: doc(t, `{"models":[]}`)},
				Running:      scanner.Result{Error: "PS Request Failed: status=404, error="},
				AnySucceeded: true,
			},
			{
				Target:  scanner.Target{Address: "10.0.0.3", Port: 11434},
				Tags:    scanner.Result{Error: "Tags Request Failed: status=0, error=connection refused"},
				Running: scanner.Result{Data: doc(t, `{"unexpected":true}`)},
			},
		},
	}

	var buf bytes.Buffer
	if err := RenderText(&buf, d, plain); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	wants := []string{
		"Found 3 verified Ollama instances:",
		"Instance: http://10.0.0.1:11434\n",
		"  Installed Models (/api/tags):\n    - llama3:8b (Size: 8.0B, Quant: Q4_0)\n    - mystery (Size: ?, Quant: ?)\n",
		"    - llama3:8b (Size: 8.0B, Quant: Q4_0) [Expires: 2026-10-14T12:00:00Z]\n",
		"    - idle (Size: ?, Quant: ?)\n",
		"    (No models installed)\n",
		"    Error: PS Request Failed: status=404, error=\n",
		"Instance: http://10.0.0.3:11434 [unreachable]\n",
		"    Error: Tags Request Failed: status=0, error=connection refused\n",
		"    (Unexpected JSON format or no 'models' array)\n",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0001-01-01") {
		t.Errorf("unset expiry rendered:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour codes emitted with Color=false:\n%q", out)
	}
}

func TestProgressLine(t *testing.T) {
	got := ProgressLine(scanner.Progress{Completed: 200, Total: 1000, Matches: 3, Rate: 412.345})
	if want := "[Progress] Checked: 200/1000, Potential: 3, Rate: 412.3 req/s"; got != want {
		t.Fatalf("ProgressLine() = %q, want %q", got, want)
	}
}

func TestRenderJSON(t *testing.T) {
	d := scanner.Discovery{
		Candidates: 2,
		Instances: []scanner.VerifiedInstance{{
			Target:       scanner.Target{Address: "10.0.0.1", Port: 11434},
			Tags:         scanner.Result{Data: doc(t, `{"models":[]}`)},
			Running:      scanner.Result{Error: "PS Request Failed: status=404, error="},
			AnySucceeded: true,
		}},
	}
	var buf bytes.Buffer
	if err := RenderJSON(&buf, d); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Candidates int `json:"candidates"`
		Instances  []struct {
			Target scanner.Target `json:"target"`
			Tags   struct {
				Data struct {
					Models []any `json:"models"`
				} `json:"data"`
			} `json:"tags"`
			AnySucceeded bool `json:"any_succeeded"`
			Running      struct {
				Error string `json:"error"`
			} `json:"running"`
		} `json:"instances"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if decoded.Candidates != 2 || len(decoded.Instances) != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}
	inst := decoded.Instances[0]
	if !inst.AnySucceeded || inst.Running.Error == "" || inst.Tags.Data.Models == nil {
		t.Fatalf("instance = %+v", inst)
	}
}
