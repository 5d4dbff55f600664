package main

import (
	"fmt"
	"os"
	"strings"

	"blog/service"
)

// CliVersion is the version reported by "blog version".
const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the top-level command.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help", "-h", "--help":
		printHelp()
	case "version":
		fmt.Printf("blog version %s\n", CliVersion)
	default:
		exit(service.HandleCommand(os.Args[1:]))
	}
}

func printHelp() {
	helpText := `Usage: blog <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve [-config file.toml]      Run the blog HTTP server.
  migrate                        Apply PostgreSQL schema migrations.
  db <init|clean|backup|restore|seed>
                                 Manage the blog database.
`
	fmt.Println(helpText)
	service.HandleCommand([]string{"help"})
}
