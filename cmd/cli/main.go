package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/helidb/helidb"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	sqlFile := flag.String("sql", "", "SQL file to execute (non-interactive)")
	var storagePath string
	flag.StringVar(&storagePath, "storage-path", "", "Enable persistence at path")
	flag.StringVar(&storagePath, "s", "", "Enable persistence at path (shorthand)")
	reinit := flag.Bool("reinit", false, "Ignore existing storage file; start empty")
	noWriteBack := flag.Bool("no-write-back", false, "Do not persist on exit")
	parallel := flag.Bool("parallel", false, "Enable parallel execution")
	history := flag.Bool("history", false, "Record persisted snapshots as git commits")
	flag.Parse()

	session, err := helidb.NewConfig().
		StoragePath(storagePath).
		Reinit(*reinit).
		WriteBack(!*noWriteBack).
		Parallel(*parallel).
		History(*history).
		Connect()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}

	hadError := false
	if *sqlFile != "" {
		hadError = runFile(session, *sqlFile)
	} else {
		hadError = runREPL(session)
	}

	if err := session.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}
	if hadError {
		os.Exit(1)
	}
}

// runFile executes the file's statements as one batch and reports
// whether anything failed.
func runFile(session *helidb.Session, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", ErrorColor, err, ResetColor)
		return true
	}

	output, err := session.ExecuteSQL(string(data))
	if output != "" {
		fmt.Print(output)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", ErrorColor, err, ResetColor)
		return true
	}
	return false
}

// runREPL reads lines from stdin until EOF, executing each batch once
// a terminating semicolon arrives.
func runREPL(session *helidb.Session) bool {
	interactive := isTerminal(os.Stdin)
	if interactive {
		fmt.Printf("HeliDB v%s\n", Version)
		fmt.Println("Type .help for commands, .quit to exit")
	}

	reader := bufio.NewReader(os.Stdin)
	var buffer strings.Builder
	hadError := false

	for {
		if interactive {
			if buffer.Len() > 0 {
				fmt.Printf("%s   ...>%s ", PromptColor, ResetColor)
			} else {
				fmt.Printf("%shelidb>%s ", PromptColor, ResetColor)
			}
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if strings.TrimSpace(buffer.String()) != "" {
				hadError = execute(session, buffer.String()) || hadError
			}
			if interactive {
				fmt.Println()
			}
			return hadError
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if buffer.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleCommand(session, line); quit {
				return hadError
			}
			continue
		}

		buffer.WriteString(line)
		if !strings.HasSuffix(strings.TrimSpace(buffer.String()), ";") {
			buffer.WriteString(" ")
			continue
		}

		text := buffer.String()
		buffer.Reset()
		hadError = execute(session, text) || hadError
	}
}

func execute(session *helidb.Session, text string) bool {
	output, err := session.ExecuteSQL(text)
	if output != "" {
		fmt.Print(output)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", ErrorColor, err, ResetColor)
		return true
	}
	return false
}

// handleCommand runs a dot-command, reporting whether the REPL
// should exit.
func handleCommand(session *helidb.Session, input string) bool {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case ".quit", ".exit", ".q":
		return true

	case ".help", ".h", ".?":
		printHelp()

	case ".tables":
		for _, name := range session.Tables() {
			fmt.Println(name)
		}

	case ".version":
		fmt.Printf("HeliDB version %s\n", Version)

	default:
		fmt.Fprintf(os.Stderr, "%sUnknown command: %s (type .help for commands)%s\n", ErrorColor, parts[0], ResetColor)
	}
	return false
}

func printHelp() {
	fmt.Println()
	fmt.Println("Special commands:")
	fmt.Println("  .help            Show this help message")
	fmt.Println("  .quit            Exit")
	fmt.Println("  .tables          List tables")
	fmt.Println("  .version         Show version info")
	fmt.Println()
	fmt.Println("SQL commands:")
	fmt.Println("  CREATE TABLE [IF NOT EXISTS] <table> (<column> <type> [PRIMARY KEY|NOT NULL], ...);")
	fmt.Println("  DROP TABLE <table>[, ...];")
	fmt.Println("  INSERT [INTO] <table> [(<cols>)] VALUES (<vals>)[, ...];")
	fmt.Println("  SELECT <cols>|* FROM <table> [WHERE <expr>] [ORDER BY <col> [ASC|DESC], ...];")
	fmt.Println("  UPDATE <table> SET <col>=<expr>[, ...] [WHERE <expr>];")
	fmt.Println("  DELETE FROM <table> [WHERE <expr>];")
	fmt.Println()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
