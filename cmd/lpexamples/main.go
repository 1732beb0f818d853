// Command lpexamples builds one of the example problems, solves it with the
// configured backend and prints the results.
//
//	lpexamples -example transportation -backend cbc
//	lpexamples -example paperroll -config gurobi.yaml -lp-dir out/
//	lpexamples -example pools -backend glpk -plot pools.png
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"

	"github.com/costela/lpmodel"
	"github.com/costela/lpmodel/backend"
	"github.com/costela/lpmodel/examples"
)

var (
	exampleName = flag.String("example", "", "example to run (see -list)")
	backendName = flag.String("backend", string(backend.CBC), "solver backend: "+kindList())
	configPath  = flag.String("config", "", "YAML solver configuration; overrides -backend")
	executable  = flag.String("executable", "", "solver executable, if not the backend's default on PATH")
	lpDir       = flag.String("lp-dir", "", "directory receiving the LP file of each scenario")
	plotPath    = flag.String("plot", "", "file receiving the solution diagram (.png, .svg, .pdf)")
	jsonOutput  = flag.Bool("json", false, "print results as JSON")
	list        = flag.Bool("list", false, "list the examples and exit")
)

func kindList() string {
	kinds := backend.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// glogLogger forwards model and solver output to glog.
type glogLogger struct{}

func (glogLogger) Print(v ...interface{}) {
	glog.InfoDepth(1, v...)
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if *list {
		for _, ex := range examples.All() {
			fmt.Printf("%-16s %s\n", ex.Name, ex.Title)
		}
		return
	}

	ex, ok := examples.Lookup(*exampleName)
	if !ok {
		glog.Exitf("unknown example %q; use -list", *exampleName)
	}

	cfg, err := config()
	if err != nil {
		glog.Exit(err)
	}
	cfg = cfg.Merge(ex.SolverOptions[cfg.Kind])
	cfg.Logger = glogLogger{}

	solver, err := backend.New(cfg)
	if err != nil {
		glog.Exitf("setting up %s: %v", cfg.Kind, err)
	}

	if *lpDir != "" {
		if err := os.MkdirAll(*lpDir, 0o755); err != nil {
			glog.Exit(err)
		}
	}

	results, err := ex.Run(context.Background(), solver, os.Stdout, examples.RunOptions{
		ModelOptions: []lpmodel.Option{lpmodel.WithLogger(glogLogger{})},
		LPDir:        *lpDir,
		PlotPath:     *plotPath,
		JSON:         *jsonOutput,
	})
	if err != nil {
		glog.Exitf("running %s: %v", ex.Name, err)
	}
	for _, r := range results {
		glog.Infof("%s/%s: %s in %s (run %s)", ex.Name, r.Scenario, r.Result.Status(), r.Result.Duration(), r.Result.RunID())
	}
}

func config() (backend.Config, error) {
	var cfg backend.Config
	if *configPath != "" {
		c, err := backend.LoadConfig(*configPath)
		if err != nil {
			return cfg, err
		}
		cfg = c
	} else {
		kind, err := backend.ParseKind(*backendName)
		if err != nil {
			return cfg, err
		}
		cfg.Kind = kind
	}
	if *executable != "" {
		cfg.Executable = *executable
	}
	return cfg, nil
}
