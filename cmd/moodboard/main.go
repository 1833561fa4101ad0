package main

import (
	"os"
	"strings"

	"moodboard/internal/cli"
)

func isBoardID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "board-") && len(s) > len("board-")
}

// rewriteDirectBoardLookupArgs turns `moodboard <board-id>` into
// `moodboard boards show <board-id>`. Cobra treats the first positional as a
// subcommand, so argv is rewritten before parsing.
func rewriteDirectBoardLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--backend":   true,
		"--redis-url": true,
		"--format":    true,
		"--log-level": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	insert := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "boards", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			// Cobra stops resolving subcommands at "--".
			if i+1 < len(argv) && isBoardID(argv[i+1]) {
				return insert(i)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && !boolFlags[a] && valueFlags[a] {
				i++
			}
			continue
		case isBoardID(a):
			return insert(i)
		default:
			return argv
		}
	}
	return argv
}

func main() {
	os.Args = rewriteDirectBoardLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
