// cmd/ecmavm is the VM's command-line front end: run a compiled unit,
// disassemble one, or inspect the bytecode cache. Plain os.Args parsing
// and a command table, the way cmd/sentra/main.go does it - no
// third-party CLI framework, because the teacher never reaches for one.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"

	"ecmavm/internal/cache"
)

const version = "0.1.0"

var commandAliases = map[string]string{
	"r": "run",
	"d": "disasm",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Printf("ecmavm %s\n", version)
	case "run":
		if err := runCommand(args[1:]); err != nil {
			log.Fatalf("ecmavm run: %v", err)
		}
	case "disasm":
		if err := disasmCommand(args[1:]); err != nil {
			log.Fatalf("ecmavm disasm: %v", err)
		}
	case "cache":
		if err := cacheCommand(args[1:]); err != nil {
			log.Fatalf("ecmavm cache: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "ecmavm: unknown command %q\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`ecmavm - ECMAScript bytecode virtual machine

Usage:
  ecmavm run <file.ecb>          run a serialized compiled code unit
  ecmavm disasm <file.ecb>       pretty-print its decoded instruction stream
  ecmavm cache stats <kind> <dsn> print bytecode-cache hit/miss counters
  ecmavm version                 print the version
  ecmavm help                    show this message`)
}

// colorEnabled gates ANSI output on whether stdout is a real terminal,
// the way a terminal-aware CLI would even though cmd/sentra's own
// main.go never checks - formatter-adjacent packages elsewhere in the
// pack do.
func colorEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

func cacheStatsLine(st cache.Stats) string {
	return fmt.Sprintf("entries=%d hits=%d misses=%d puts=%d size=%s",
		st.Entries, st.Hits, st.Misses, st.Puts, humanizeBytes(st.TotalSize))
}
