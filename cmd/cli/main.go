package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"LatticeDB/client"
	"LatticeDB/types"
)

// describeValue renders the value FIND returns. This CLI's own ADD always sends
// strings, but FIND may return an int or bool another client wrote.
func describeValue(v types.Value) string {
	switch v.Kind {
	case types.ValueString:
		s, err := v.AsString()
		if err != nil {
			return fmt.Sprintf("(malformed string: %v)", err)
		}
		return s
	case types.ValueInt:
		n, err := v.AsInt()
		if err != nil {
			return fmt.Sprintf("(malformed int: %v)", err)
		}
		return fmt.Sprintf("%d", n)
	case types.ValueBool:
		b, err := v.AsBool()
		if err != nil {
			return fmt.Sprintf("(malformed bool: %v)", err)
		}
		return fmt.Sprintf("%t", b)
	default:
		return fmt.Sprintf("(unknown value kind %s)", v.Kind)
	}
}

var activeClient *client.Client

func main() {
	root := &cobra.Command{
		Use:   "latticedb-cli",
		Short: "Interactive client for a LatticeDB server",
		Run:   runShell,
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runShell(cmd *cobra.Command, args []string) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            "latticedb> ",
		HistoryFile:       "/tmp/latticedb_cli_history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "^D",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer l.Close()

	if activeClient != nil {
		defer activeClient.Close()
	}

	for {
		line, err := l.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				os.Exit(0)
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if dispatch(fields) {
			os.Exit(0)
		}
	}
}

// dispatch executes one tokenized command line and reports whether the CLI
// should exit.
func dispatch(fields []string) (exit bool) {
	command := strings.ToUpper(fields[0])
	args := fields[1:]

	switch command {
	case "HELP":
		printHelp()
	case "EXIT":
		return true
	case "CONNECT":
		runConnect(args)
	case "ADD":
		runAdd(args)
	case "FIND":
		runFind(args)
	case "REMOVE":
		runRemove(args)
	default:
		fmt.Printf("unknown command %q, try HELP\n", fields[0])
	}
	return false
}

func printHelp() {
	fmt.Println("HELP                              show this message")
	fmt.Println("EXIT                              leave the shell")
	fmt.Println("CONNECT <ip> <port> <api-key>     connect and authenticate to a server")
	fmt.Println("ADD <key> <value>                 insert or overwrite a string value")
	fmt.Println("FIND <key>                        look up a key")
	fmt.Println("REMOVE <key>                      delete a key")
}

func runConnect(args []string) {
	if len(args) != 3 {
		fmt.Println("usage: CONNECT <ip> <port> <api-key>")
		return
	}
	addr := fmt.Sprintf("%s:%s", args[0], args[1])
	c, err := client.Connect(addr, args[2])
	if err != nil {
		fmt.Printf("connect failed: %v\n", err)
		return
	}
	if activeClient != nil {
		activeClient.Close()
	}
	activeClient = c
	fmt.Printf("connected to %s\n", addr)
}

func runAdd(args []string) {
	if !requireConnection() {
		return
	}
	if len(args) != 2 {
		fmt.Println("usage: ADD <key> <value>")
		return
	}
	if err := activeClient.Add(args[0], args[1]); err != nil {
		fmt.Printf("add failed: %v\n", err)
		return
	}
	fmt.Println("OK")
}

func runFind(args []string) {
	if !requireConnection() {
		return
	}
	if len(args) != 1 {
		fmt.Println("usage: FIND <key>")
		return
	}
	v, ok, err := activeClient.Find(args[0])
	if err != nil {
		fmt.Printf("find failed: %v\n", err)
		return
	}
	if !ok {
		fmt.Println("(not found)")
		return
	}
	fmt.Println(describeValue(v))
}

func runRemove(args []string) {
	if !requireConnection() {
		return
	}
	if len(args) != 1 {
		fmt.Println("usage: REMOVE <key>")
		return
	}
	if err := activeClient.Remove(args[0]); err != nil {
		fmt.Printf("remove failed: %v\n", err)
		return
	}
	fmt.Println("OK")
}

func requireConnection() bool {
	if activeClient == nil {
		fmt.Println("not connected, try CONNECT <ip> <port> <api-key>")
		return false
	}
	return true
}
