package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	inFolder() bool
	Ping(ctx context.Context) error
	TestDB(ctx context.Context) error
	Folders(ctx context.Context) error
	Mkdir(ctx context.Context, name string) error
	Rmdir(ctx context.Context, id int64) error
	Open(ctx context.Context, id int64) error
	Unlock(ctx context.Context) error
	Files(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	Rm(ctx context.Context, id int64) error
	View(ctx context.Context, id int64) error
	Link(ctx context.Context, id int64) error
	Back(ctx context.Context) error
}

const (
	helpTop    = "Available commands: ping, testdb, (ls) folders, mkdir <name>, rmdir <id>, open <id>, exit"
	helpFolder = "Available commands: files, unlock, upload <path>, view <id>, link <id>, rm <id>, back, ping, testdb, exit"
)

// runREPL starts a read-eval-print loop for the foldershare CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Commands taking an ID report a
// usage line when it is missing or not a number. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Top level:
//	  - help              show available commands
//	  - ping, testdb      connectivity checks
//	  - folders | ls      list folders
//	  - mkdir <name>      create a folder (asks for an optional password)
//	  - rmdir <id>        delete a folder and its files
//	  - open <id>         open a folder
//	  - exit | quit       leave the program
//
//	Inside a folder:
//	  - files | ls        list files
//	  - unlock            enter the folder password
//	  - upload <path>     upload a local file
//	  - view <id>         download a file through its signed URL
//	  - link <id>         print a shareable signed URL
//	  - rm <id>           delete a file
//	  - back              return to the folder list
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fs %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		withID := func(usage string, fn func(context.Context, int64) error) {
			id, ok := parseID(args)
			if !ok {
				printlnFn("Usage:", usage)
				return
			}
			_ = fn(ctx, id)
		}

		switch cmd {
		case "help":
			if a.inFolder() {
				printlnFn(helpFolder)
			} else {
				printlnFn(helpTop)
			}

		case "ping":
			_ = a.Ping(ctx)

		case "testdb":
			_ = a.TestDB(ctx)

		case "ls":
			if a.inFolder() {
				_ = a.Files(ctx)
			} else {
				_ = a.Folders(ctx)
			}

		case "folders":
			_ = a.Folders(ctx)

		case "mkdir":
			_ = a.Mkdir(ctx, strings.Join(args, " "))

		case "rmdir":
			withID("rmdir <folder-id>", a.Rmdir)

		case "open":
			withID("open <folder-id>", a.Open)

		case "unlock":
			_ = a.Unlock(ctx)

		case "files":
			_ = a.Files(ctx)

		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <path>")
				continue
			}
			_ = a.Upload(ctx, strings.Join(args, " "))

		case "view":
			withID("view <file-id>", a.View)

		case "link":
			withID("link <file-id>", a.Link)

		case "rm":
			withID("rm <file-id>", a.Rm)

		case "back":
			_ = a.Back(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func parseID(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
