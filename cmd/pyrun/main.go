package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/wippyai/python-runtime/cpython"
	"github.com/wippyai/python-runtime/runtime"
)

func main() {
	var (
		expr        = flag.String("c", "", "Expression or statements to run")
		scriptFile  = flag.String("f", "", "Path to a script file to execute")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		version     = flag.Bool("version", false, "Print the embedded interpreter version and exit")
	)
	flag.Parse()

	if err := runtime.Initialize(cpython.WithProgramName("pyrun")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer runtime.Finalize()

	if *version {
		fmt.Println(runtime.VersionString())
		return
	}

	// With no explicit mode, a terminal on stdin means the user wants the
	// REPL; anything else is piped source.
	if *expr == "" && *scriptFile == "" && !*interactive {
		*interactive = term.IsTerminal(int(os.Stdin.Fd()))
	}

	if *interactive {
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*expr, *scriptFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(expr, scriptFile string) error {
	switch {
	case expr != "":
		return runSource(expr)

	case scriptFile != "":
		data, err := os.ReadFile(scriptFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		return runtime.Exec(string(data))

	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		if len(data) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: pyrun -c <source> | pyrun -f <file.py> | pyrun -i")
			return nil
		}
		return runtime.Exec(string(data))
	}
}

// runSource evaluates source as an expression when possible, printing the
// value, and falls back to statement execution otherwise.
func runSource(src string) error {
	r, err := runtime.Eval(src)
	if err == nil {
		defer r.Close()
		if !r.IsNone() {
			fmt.Println(r.String())
		}
		return nil
	}
	return runtime.Exec(src)
}
