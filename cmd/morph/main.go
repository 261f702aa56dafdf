// Command morph compiles and evaluates Morph expressions from the command
// line.
//
// Evaluate an expression against JSON on stdin:
//
//	echo '{"user":{"firstName":"John"}}' | morph 'user.firstName'
//
// Print the generated code instead of evaluating:
//
//	morph -emit 'orders[? price > 30].id'
//
// Flags:
//
//	-strict          strict access (missing properties are errors)
//	-native          self-contained output, no helper namespace
//	-emit            print the generated JavaScript and exit
//	-bindings JSON   external values, referenced as $name
//	-input FILE      read input from FILE instead of stdin
//	-pretty          indent the JSON result
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/morphlang/morph"
	"github.com/morphlang/morph/pkg/types"
)

func main() {
	strict := flag.Bool("strict", false, "strict access: missing properties, bad indexes and non-array projections are errors")
	native := flag.Bool("native", false, "emit self-contained code with inlined helpers")
	emit := flag.Bool("emit", false, "print the generated JavaScript instead of evaluating")
	bindingsJSON := flag.String("bindings", "", "bindings as a JSON object, referenced as $name")
	inputFile := flag.String("input", "", "read input JSON from file instead of stdin")
	pretty := flag.Bool("pretty", false, "indent the JSON result")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("morph " + morph.Version)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: morph [flags] <expression>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	source := flag.Arg(0)

	var opts []morph.Option
	if *strict {
		opts = append(opts, morph.WithStrict())
	}
	if *native {
		opts = append(opts, morph.WithNative())
	}

	if *emit {
		prog, err := morph.Parse(source)
		if err != nil {
			fail(err)
		}
		code, err := morph.Generate(prog, opts...)
		if err != nil {
			fail(err)
		}
		fmt.Println(code)
		return
	}

	input, err := readInput(*inputFile)
	if err != nil {
		fail(err)
	}

	if *bindingsJSON != "" {
		var bindings map[string]any
		if err := json.Unmarshal([]byte(*bindingsJSON), &bindings); err != nil {
			fail(fmt.Errorf("invalid -bindings JSON: %w", err))
		}
		opts = append(opts, morph.WithBindings(bindings))
	}

	result, err := morph.Evaluate(source, input, opts...)
	if err != nil {
		fail(err)
	}

	var out []byte
	if *pretty {
		out, err = json.MarshalIndent(result, "", "  ")
	} else {
		out, err = json.Marshal(result)
	}
	if err != nil {
		fail(fmt.Errorf("marshal result: %w", err))
	}
	fmt.Println(string(out))
}

func readInput(path string) (any, error) {
	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("invalid input JSON: %w", err)
	}
	return input, nil
}

// fail prints the error in its most useful form and exits. Parse errors
// carry position; access errors carry path and suggestions, all of which
// the Error methods already render.
func fail(err error) {
	var parseErr *types.ParseError
	var lexErr *types.LexerError
	if errors.As(err, &parseErr) || errors.As(err, &lexErr) {
		fmt.Fprintln(os.Stderr, "morph: syntax error:", err)
	} else {
		fmt.Fprintln(os.Stderr, "morph:", err)
	}
	os.Exit(1)
}
