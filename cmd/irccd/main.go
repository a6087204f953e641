// Command irccd is the bot daemon: it loads a configuration document,
// builds the composition root and runs until signalled to stop
// (spec.md §1, §6.1).
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/irccd/irccd/internal/bot"
	"github.com/irccd/irccd/internal/config"
	"github.com/irccd/irccd/internal/logging"
)

var (
	version = "dev"
)

func main() {
	foreground := flag.Bool("x", false, "run in the foreground instead of daemonizing")
	configPath := flag.String("c", "/etc/irccd.conf", "path to the configuration file")
	showVersion := flag.Bool("v", false, "show version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("irccd %s\n", version)
		os.Exit(0)
	}

	doc, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "irccd: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	for _, w := range doc.Warnings {
		fmt.Fprintf(os.Stderr, "irccd: warning: %s\n", w)
	}

	if !*foreground && !doc.General.Foreground {
		daemonize()
		return
	}

	run(doc)
}

// daemonize re-execs the process detached from the controlling
// terminal and exits the parent, so the child inherits no tty.
func daemonize() {
	args := append(append([]string(nil), os.Args[1:]...), "-x")
	cmd := exec.Command(os.Args[0], args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "irccd: failed to daemonize: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	if !filepath.IsAbs(path) {
		wd, _ := os.Getwd()
		path = filepath.Join(wd, path)
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}

func run(doc *config.Document) {
	log := logging.New(logging.Options{
		Sink:    logging.Sink(doc.Logs.Sink),
		Verbose: doc.Logs.Verbose,
		Path:    doc.Logs.Path,
	})

	if err := writePIDFile(doc.General.PIDFile); err != nil {
		log.Warn().Err(err).Msg("failed to write pid file")
	}

	b, err := bot.New(doc, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build bot from configuration")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	b.Run()
	log.Info().Msg("irccd started")

	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")
	b.Shutdown()
}
