// Command emojicodec drives the front-end pipeline over one package's
// worth of already-lexed tokens, grounded on cmd/ailang/main.go's flag
// parsing, colored-diagnostic, and exit-code conventions. The lexer that
// turns .emoji source text into tokens is an external collaborator (the
// pipeline's own documentation says so), so this binary's input is the
// token stream that lexer would have produced, serialized as JSON — the
// same boundary the compiler's internal Stream interface already draws.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/emojicode/ecc/internal/manifest"
	"github.com/emojicode/ecc/internal/repl"
	"github.com/emojicode/ecc/internal/reporter"
	"github.com/emojicode/ecc/internal/session"
	"github.com/emojicode/ecc/internal/token"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		packageName   = flag.String("package", "🌍", "package name to register declarations under")
		namespace     = flag.String("namespace", "", "default namespace prefix for emitted declarations")
		jsonFlag      = flag.Bool("json", false, "emit the package interface document instead of diagnostics")
		manifestPath  = flag.String("manifest", "", "path to a package.yml sidecar (optional)")
		requireBinary = flag.String("require-binary", "", "name of a native binary the manifest must declare as required")
		replFlag      = flag.Bool("repl", false, "start an interactive check loop instead of compiling one file")
	)
	flag.Parse()

	if *replFlag {
		repl.New(*packageName, *namespace, loadTokens).Start(os.Stdout)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s: usage: emojicodec [flags] <tokens.json>\n", red("error"))
		os.Exit(1)
	}
	tokensPath := flag.Arg(0)

	if *manifestPath != "" {
		m, err := manifest.Load(*manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
			os.Exit(1)
		}
		if *requireBinary != "" {
			if _, ok := m.ResolveBinary(*requireBinary); !ok {
				fmt.Fprintf(os.Stderr, "%s: manifest does not declare required binary %q\n", red("error"), *requireBinary)
				os.Exit(1)
			}
		}
	}

	tokens, err := loadTokens(tokensPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	s := session.New(*packageName, *namespace)
	stream := token.NewSliceStream(tokens)
	result := s.CompilePackage([]*token.SourceFile{{Name: filepath.Base(tokensPath), Stream: stream}})

	for _, rep := range result.Warnings {
		fmt.Fprintf(os.Stderr, "%s\n", yellow(rep.String()))
	}

	if !result.Success() {
		for _, rep := range result.Errors {
			fmt.Fprintf(os.Stderr, "%s\n", red(rep.String()))
		}
		fmt.Fprintf(os.Stderr, "%s\n", bold(fmt.Sprintf("%d error(s)", len(result.Errors))))
		os.Exit(1)
	}

	if *jsonFlag {
		doc := reporter.Report(s.Registry, *packageName)
		encoded, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
			os.Exit(1)
		}
		fmt.Println(string(encoded))
		return
	}

	fmt.Println(bold("no errors found"))
}

// tokenRecord is the JSON shape one lexed token is transmitted in. Kind is
// spelled out (IDENTIFIER, VARIABLE, ...) rather than the internal integer
// so the boundary to the external lexer doesn't leak token.Kind's encoding.
type tokenRecord struct {
	Kind   string `json:"kind"`
	Value  string `json:"value"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

var kindByName = map[string]token.Kind{
	"IDENTIFIER":            token.IDENTIFIER,
	"VARIABLE":              token.VARIABLE,
	"INTEGER":               token.INTEGER,
	"DOUBLE":                token.DOUBLE,
	"STRING":                token.STRING,
	"SYMBOL":                token.SYMBOL,
	"DOCUMENTATION_COMMENT": token.DOCUMENTATION_COMMENT,
}

func loadTokens(path string) ([]token.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading token stream: %w", err)
	}
	var records []tokenRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing token stream %s: %w", path, err)
	}
	tokens := make([]token.Token, 0, len(records))
	for i, rec := range records {
		kind, ok := kindByName[rec.Kind]
		if !ok {
			return nil, fmt.Errorf("token %d: unknown kind %q", i, rec.Kind)
		}
		tokens = append(tokens, token.Token{
			Kind:  kind,
			Value: rec.Value,
			Pos:   token.Pos{File: rec.File, Line: rec.Line, Column: rec.Column},
		})
	}
	return tokens, nil
}
