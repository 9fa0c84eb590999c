// Package repl implements an interactive check loop: the user enters the
// path to a token-stream JSON file (see cmd/emojicodec's tokenRecord), the
// REPL recompiles it against a fresh Session and reports the result. It
// keeps a liner-driven prompt/history loop but replaces an evaluator with
// a round-trip through this package's own pipeline.
package repl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/emojicode/ecc/internal/session"
	"github.com/emojicode/ecc/internal/token"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// LoadTokens decodes path's JSON-encoded token stream. It is supplied by
// the caller so this package stays independent of cmd/emojicodec's record
// format.
type LoadTokens func(path string) ([]token.Token, error)

// REPL is one interactive check session.
type REPL struct {
	packageName string
	namespace   string
	loadTokens  LoadTokens
}

// New builds a REPL that registers declarations under packageName/namespace
// using loadTokens to turn a user-supplied path into a token stream.
func New(packageName, namespace string, loadTokens LoadTokens) *REPL {
	return &REPL{packageName: packageName, namespace: namespace, loadTokens: loadTokens}
}

// Start runs the read-eval-print loop, reading lines from the terminal
// through liner and writing to out, until the user types :quit or the
// prompt returns an error (EOF included).
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".emojicodec_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s\n", bold("emojicodec check REPL"))
	fmt.Fprintln(out, "Type a path to a token-stream JSON file, or :quit to exit.")

	for {
		input, err := line.Prompt("🍇 ")
		if err != nil {
			break
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if input == ":quit" {
			break
		}
		r.checkOne(out, input)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func (r *REPL) checkOne(out io.Writer, path string) {
	tokens, err := r.loadTokens(path)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("error"), err)
		return
	}
	s := session.New(r.packageName, r.namespace)
	stream := token.NewSliceStream(tokens)
	result := s.CompilePackage([]*token.SourceFile{{Name: filepath.Base(path), Stream: stream}})

	for _, rep := range result.Warnings {
		fmt.Fprintf(out, "%s\n", yellow(rep.String()))
	}
	if !result.Success() {
		for _, rep := range result.Errors {
			fmt.Fprintf(out, "%s\n", red(rep.String()))
		}
		return
	}
	fmt.Fprintf(out, "%s %d function(s) compiled\n", green("✓"), len(result.Functions))
}

// ResultJSON renders a one-line JSON summary, for callers that don't want
// to scrape colored text output.
func ResultJSON(r *session.Result) string {
	data, _ := json.Marshal(struct {
		Success   bool `json:"success"`
		Functions int  `json:"functions"`
		Errors    int  `json:"errors"`
	}{r.Success(), len(r.Functions), len(r.Errors)})
	return string(data)
}
