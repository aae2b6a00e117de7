package main

import (
	"fmt"

	"ecmavm/internal/cache"
)

// cacheCommand handles the "cache" subcommand family; currently just
// "stats", with room for "clear"/"list" later the way a real cache CLI
// grows incrementally.
func cacheCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ecmavm cache stats <kind> <dsn>")
	}
	switch args[0] {
	case "stats":
		return cacheStatsCommand(args[1:])
	default:
		return fmt.Errorf("ecmavm cache: unknown subcommand %q", args[0])
	}
}

func cacheStatsCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: ecmavm cache stats <kind> <dsn>")
	}
	store, err := cache.Open(args[0], args[1])
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Stats()
	if err != nil {
		return err
	}
	fmt.Println(cacheStatsLine(st))
	return nil
}
