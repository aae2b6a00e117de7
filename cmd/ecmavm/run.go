package main

import (
	"fmt"
	"os"

	"ecmavm/internal/bytecode"
	"ecmavm/internal/value"
	"ecmavm/internal/vmconfig"
)

// runCommand loads a serialized compiled code unit and executes it as a
// top-level script, printing its completion value the way a REPL's
// final-expression echo would.
func runCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ecmavm run <file.ecb>")
	}
	blob, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	unit, err := bytecode.Unmarshal(blob)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	m := vmconfig.Build()
	ret, err := m.Run(unit, nil)
	if err != nil {
		if colorEnabled() {
			return fmt.Errorf("\033[31m%v\033[0m", err)
		}
		return err
	}
	if !ret.IsUndefined() {
		fmt.Println(describeValue(ret))
	}
	return nil
}

// describeValue is a minimal top-level completion-value printer, enough
// for the run subcommand's output without pulling in a full inspect/
// console.log formatter.
func describeValue(v value.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsInt():
		return fmt.Sprintf("%d", v.AsInt())
	case v.IsFloat():
		return fmt.Sprintf("%g", v.AsFloat())
	case v.IsString():
		return v.AsString()
	case v.IsObject():
		return "[object]"
	default:
		return "<value>"
	}
}
