// Command judgectl drives the judge core directly from the command
// line: evaluate one submission against one package, inspect compile
// cache occupancy, or drop into an interactive shell for repeated runs
// against the same package during problem-setting.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/shlex"
	"github.com/google/uuid"

	"simjudge/internal/compilecache"
	"simjudge/internal/compilecache/disk"
	"simjudge/internal/compilecache/memory"
	"simjudge/internal/judge"
	"simjudge/internal/language"
	"simjudge/internal/sandbox/engine"
	"simjudge/internal/sandbox/security"

	apperrors "simjudge/pkg/errors"
	"simjudge/pkg/logging"
)

type globalConfig struct {
	workRoot   string
	scratchDir string
	profileDir string
	cacheKind  string
	cacheDir   string
	cacheMaxMB int64
	logLevel   string
}

func main() {
	cfg := globalConfig{}
	fs := flag.NewFlagSet("judgectl", flag.ExitOnError)
	fs.StringVar(&cfg.workRoot, "work-root", "/tmp/judgectl/work", "scratch root for per-submission directories")
	fs.StringVar(&cfg.scratchDir, "scratch-dir", "/tmp/judgectl/scratch", "scratch root for shared build artifacts (default checker, etc.)")
	fs.StringVar(&cfg.profileDir, "profile-dir", "configs/isolation-profiles", "directory of isolation profile JSON descriptors")
	fs.StringVar(&cfg.cacheKind, "cache", "memory", "compile cache backend: memory|disk")
	fs.StringVar(&cfg.cacheDir, "cache-dir", "/tmp/judgectl/cache", "disk cache root (when -cache=disk)")
	fs.Int64Var(&cfg.cacheMaxMB, "cache-max-mb", 512, "disk cache size bound in MB (when -cache=disk)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	fs.Parse(firstArgSet(os.Args))

	if err := logging.Init(logging.Config{Level: cfg.logLevel, Format: "console", Service: "judgectl"}); err != nil {
		fmt.Fprintf(os.Stderr, "init logging failed: %v\n", err)
		os.Exit(1)
	}

	args := fs.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(int(apperrors.CLIUsageError.ExitCode()))
	}

	worker, cache, err := buildWorker(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init judge core failed: %v\n", err)
		os.Exit(int(apperrors.GetCode(err).ExitCode()))
	}

	switch args[0] {
	case "eval":
		runEval(worker, cfg, args[1:])
	case "cache":
		runCache(cache, args[1:])
	case "repl":
		runRepl(worker, cache, cfg)
	default:
		printUsage()
		os.Exit(int(apperrors.CLIUsageError.ExitCode()))
	}
}

// firstArgSet strips the program name, leaving global flags and the
// subcommand + its own arguments for fs.Parse to split.
func firstArgSet(argv []string) []string {
	if len(argv) <= 1 {
		return nil
	}
	return argv[1:]
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: judgectl [global flags] <command> [args]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  eval <package-dir-or-zip> <source-file> [language-id]")
	fmt.Fprintln(os.Stderr, "  cache stats")
	fmt.Fprintln(os.Stderr, "  repl")
}

func buildWorker(cfg globalConfig) (*judge.Worker, compilecache.Cache, error) {
	resolver := security.NewFileResolver(cfg.profileDir)
	eng, err := engine.NewEngine(engine.Config{
		EnableSeccomp:        true,
		EnableCgroup:         true,
		EnableNamespaces:     true,
		StdoutStderrMaxBytes: 4 << 20,
	}, resolver)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.SandboxSetupFailed)
	}

	var cache compilecache.Cache
	switch cfg.cacheKind {
	case "", "memory":
		cache = memory.New()
	case "disk":
		diskCache, err := disk.New(cfg.cacheDir, cfg.cacheMaxMB<<20)
		if err != nil {
			return nil, nil, err
		}
		cache = diskCache
	default:
		return nil, nil, apperrors.Newf(apperrors.ConfigInvalid, "unknown cache backend %q", cfg.cacheKind)
	}

	worker := &judge.Worker{
		Engine:            eng,
		Languages:         language.NewDefaultRegistry(),
		Cache:             cache,
		ScratchDir:        cfg.scratchDir,
		CheckerProfile:    "checker",
		InteractorProfile: "checker",
	}
	return worker, cache, nil
}

func runEval(worker *judge.Worker, cfg globalConfig, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: judgectl eval <package-dir-or-zip> <source-file> [language-id]")
		os.Exit(int(apperrors.CLIUsageError.ExitCode()))
	}
	req := judge.EvalRequest{
		SubmissionID: uuid.NewString(),
		PackagePath:  args[0],
		SourcePath:   args[1],
		WorkRoot:     cfg.workRoot,
	}
	if len(args) >= 3 {
		req.LanguageID = args[2]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := worker.Evaluate(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluate failed: %v\n", err)
		os.Exit(int(apperrors.GetCode(err).ExitCode()))
	}

	encoded, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(encoded))
}

func runCache(cache compilecache.Cache, args []string) {
	if len(args) == 0 || args[0] != "stats" {
		fmt.Fprintln(os.Stderr, "usage: judgectl cache stats")
		os.Exit(int(apperrors.CLIUsageError.ExitCode()))
	}
	stats := cache.Stats()
	encoded, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(encoded))
}

// runRepl is only reachable by the operator's own interactive
// invocation; readline gives it history and line editing the same way
// an hand-rolled bufio loop could not.
func runRepl(worker *judge.Worker, cache compilecache.Cache, cfg globalConfig) {
	rl, err := newReadline()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init readline failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("judgectl interactive shell. type 'help' for commands, 'exit' to quit.")
	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		tokens, err := shlex.Split(line)
		if err != nil || len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "exit", "quit":
			return
		case "help":
			printUsage()
		case "eval":
			runEval(worker, cfg, tokens[1:])
		case "cache":
			runCache(cache, tokens[1:])
		default:
			fmt.Printf("unknown command: %s\n", tokens[0])
		}
	}
}
