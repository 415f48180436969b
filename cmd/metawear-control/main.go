package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/google/shlex"
	"golang.org/x/term"

	"github.com/metawear-go/metawear/internal/log"
	"github.com/metawear-go/metawear/pkg/cli"
	"github.com/metawear-go/metawear/pkg/connector/ble"
	"github.com/metawear-go/metawear/pkg/discovery"
	"github.com/metawear-go/metawear/pkg/metawear"
	"github.com/metawear-go/metawear/pkg/protocol"
)

func writeErr(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n")
}

const usage = `
 * Commands other than scan connect to a board. The board address is taken from -address,
   $METAWEAR_ADDRESS, the device cache, or a scan, in that order.
 * Without a COMMAND, commands are read from standard input.`

func Usage() {
	fmt.Printf("Usage: %s [OPTION...] COMMAND [ARG...]\n", os.Args[0])
	fmt.Printf("\nRun %s help COMMAND for more information. Valid COMMANDs are listed below.", os.Args[0])
	fmt.Println("")
	fmt.Println(usage)
	fmt.Println("")

	fmt.Printf("Available OPTIONs:\n")
	flag.PrintDefaults()
	fmt.Println("")
	fmt.Printf("Available COMMANDs:\n")
	maxLength := 0
	var labels []string
	for command := range commands {
		labels = append(labels, command)
		if len(command) > maxLength {
			maxLength = len(command)
		}
	}
	sort.Strings(labels)
	for _, command := range labels {
		info := commands[command]
		fmt.Printf("  %s%s %s\n", command, strings.Repeat(" ", maxLength-len(command)), info.help)
	}
}

func runCommand(ctx context.Context, config *cli.Config, client *metawear.Client, args []string, timeout time.Duration) int {
	// Long-running commands bound themselves and stop on interrupt.
	if info, ok := commands[args[0]]; !ok || !info.longRunning {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := execute(ctx, config, client, args); err != nil {
		if errors.Is(err, protocol.ErrNotInitialized) {
			writeErr("The board did not finish initializing: %s", err)
		} else if protocol.Temporary(err) {
			writeErr("Failed to execute command (try again): %s", err)
		} else {
			writeErr("Failed to execute command: %s", err)
		}
		return 1
	}
	return 0
}

func runInteractiveShell(ctx context.Context, config *cli.Config, client *metawear.Client, timeout time.Duration) int {
	prompt := ""
	if term.IsTerminal(int(os.Stdin.Fd())) {
		prompt = "> "
	}
	scanner := bufio.NewScanner(os.Stdin)
	for fmt.Print(prompt); scanner.Scan(); fmt.Print(prompt) {
		args, err := shlex.Split(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			return 0
		}
		if err != nil {
			writeErr("Invalid command: %s", err)
			continue
		}
		runCommand(ctx, config, client, args, timeout)
	}
	if err := scanner.Err(); err != nil {
		writeErr("Error reading command: %s", err)
		return 1
	}
	return 0
}

func connectionHelp(err error) {
	switch {
	case errors.Is(err, protocol.ErrMissingCapabilities):
		writeErr("\nTry again after granting hcitool the capabilities it needs:\n\n\tsudo setcap 'cap_net_raw,cap_net_admin+eip' \"$(which hcitool)\"\n")
	case errors.Is(err, protocol.ErrLibraryUnavailable):
		writeErr("\nSet -lib or $%s to the location of libmetawear.so.", cli.EnvMetaWearLibrary)
	case ble.IsAdapterError(err):
		writeErr("%s", ble.AdapterErrorHelpMessage(err))
	}
}

func main() {
	status := 1
	defer func() {
		os.Exit(status)
	}()

	var (
		debug          bool
		logLevel       string
		commandTimeout time.Duration
		initTimeout    time.Duration
	)
	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %s\n", err)
		os.Exit(1)
	}
	flag.Usage = Usage
	flag.BoolVar(&debug, "debug", false, "Enable verbose debugging messages")
	flag.StringVar(&logLevel, "log-level", "", "Log `level` (none, error, warn, info or debug). -debug implies debug.")
	flag.DurationVar(&commandTimeout, "command-timeout", 10*time.Second, "Set timeout for commands sent to the board.")
	flag.DurationVar(&initTimeout, "init-timeout", 20*time.Second, "Set timeout for connecting to and initializing the board.")

	config.RegisterCommandLineFlags()
	flag.Parse()
	config.ReadFromEnvironment()
	if err := config.ReadConfigFile(); err != nil {
		writeErr("Error: %s", err)
		return
	}
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			writeErr("Error: %s", err)
			return
		}
		log.SetLevel(level)
	}
	if debug || config.Verbose {
		log.SetLevel(log.LevelDebug)
	}

	args := flag.Args()
	if len(args) > 0 {
		if args[0] == "help" {
			if len(args) == 1 {
				Usage()
				return
			}
			info, ok := commands[args[1]]
			if !ok {
				writeErr("Unrecognized command: %s", args[1])
				return
			}
			info.Usage(args[1])
			status = 0
			return
		}
		if _, ok := commands[args[0]]; !ok {
			writeErr("Unrecognized command: %s", args[0])
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var client *metawear.Client
	if len(args) == 0 || commands[args[0]].requiresBoard {
		connectCtx, cancel := context.WithTimeout(ctx, initTimeout)
		defer cancel()

		client, err = config.Connect(connectCtx)
		if err != nil {
			writeErr("Error: %s", err)
			connectionHelp(err)
			return
		}
		defer client.Close()

		log.Info("Waiting for %s to initialize...", client)
		if err := client.WaitInitialized(connectCtx); err != nil {
			writeErr("Error: %s", err)
			return
		}
	}

	if len(args) > 0 {
		status = runCommand(ctx, config, client, args, commandTimeout)
	} else {
		status = runInteractiveShell(ctx, config, client, commandTimeout)
	}
}

// scanTimeout is the scan duration used when neither the command nor the configuration sets one.
func scanTimeout(config *cli.Config) time.Duration {
	if config.ScanTimeout > 0 {
		return config.ScanTimeout
	}
	return discovery.DefaultTimeout
}
