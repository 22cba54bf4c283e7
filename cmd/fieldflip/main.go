package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/zeusync/fieldflip/internal/config"
	"github.com/zeusync/fieldflip/internal/core/observability/log"
	"github.com/zeusync/fieldflip/internal/core/observation"
	"github.com/zeusync/fieldflip/internal/core/symmetry"
	"github.com/zeusync/fieldflip/internal/injector"
)

const usage = `usage: fieldflip <command> [flags]

commands:
  mirror    mirror one observation (JSON) onto the other side
  action    mirror action codes or names
  actions   list the configured action set
  serve     run the websocket mirror service
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "mirror":
		err = runMirror(args, os.Stdin, os.Stdout)
	case "action":
		err = runAction(args, os.Stdout)
	case "actions":
		err = runActions(args, os.Stdout)
	case "serve":
		err = runServe(args)
	case "-h", "-help", "help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "fieldflip:", err)
		os.Exit(1)
	}
}

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", "", "YAML configuration file")
	return fs, path
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runMirror(args []string, stdin io.Reader, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("mirror")
	in := fs.String("in", "-", "observation file, - for stdin")
	out := fs.String("out", "-", "output file, - for stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	set, err := cfg.ActionSet()
	if err != nil {
		return err
	}

	var raw []byte
	if *in == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(*in)
	}
	if err != nil {
		return err
	}

	o, err := observation.Decode(raw)
	if err != nil {
		return err
	}
	mirrored, err := symmetry.MirrorObservation(o, set)
	if err != nil {
		return err
	}
	encoded, err := observation.Encode(mirrored)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return err
	}

	if *out == "-" {
		return writeJSON(stdout, doc)
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := writeJSON(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	// the final flush to disk can fail here
	return f.Close()
}

func writeJSON(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func runAction(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("action")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("action: at least one action code or name is required")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	set, err := cfg.ActionSet()
	if err != nil {
		return err
	}

	codes := make([]int, fs.NArg())
	for i, arg := range fs.Args() {
		var raw any = arg
		if code, err := strconv.Atoi(arg); err == nil {
			raw = code
		}
		a, err := set.Canonical(raw)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		if codes[i], err = set.Code(a); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}

	mirrored, err := symmetry.MirrorCodes(codes, set)
	if err != nil {
		return err
	}
	actions := set.Actions()
	for i, code := range mirrored {
		fmt.Fprintf(stdout, "%s\t%s\t%d\n", fs.Arg(i), actions[code], code)
	}
	return nil
}

func runActions(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("actions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	set, err := cfg.ActionSet()
	if err != nil {
		return err
	}

	sticky := make(map[string]int, len(set.StickyActions()))
	for i, a := range set.StickyActions() {
		sticky[a.String()] = i
	}

	fmt.Fprintf(stdout, "# %s digest=%016x\n", set.Name(), set.Digest())
	for code, a := range set.Actions() {
		mirror := symmetry.MirrorSymbol(a)
		if slot, ok := sticky[a.String()]; ok {
			fmt.Fprintf(stdout, "%d\t%s\t-> %s\tsticky[%d]\n", code, a, mirror, slot)
			continue
		}
		fmt.Fprintf(stdout, "%d\t%s\t-> %s\n", code, a, mirror)
	}
	return nil
}

func runServe(args []string) error {
	fs, cfgPath := newFlagSet("serve")
	addr := fs.String("addr", "", "listen address, overrides server.addr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	srv, err := injector.InitializeServer(cfg)
	if err != nil {
		return err
	}
	logger := log.Provide()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return srv.Close()
}
