package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/version"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/grafana/tracetiming/pkg/appcontext"
	"github.com/grafana/tracetiming/pkg/util"
)

var cfg struct {
	verbose     bool
	configFile  string
	output      string
	thread      string
	mode        string
	concurrency int
}

var consoleOutput = os.Stderr

func main() {
	app := kingpin.New(filepath.Base(os.Args[0]), "Timing analysis of Chrome trace event files.").UsageWriter(os.Stdout)
	app.Version(version.Print("tracecli"))
	app.HelpFlag.Short('h')
	app.Flag("verbose", "Enable verbose logging.").Short('v').Default("0").BoolVar(&cfg.verbose)
	app.Flag("config.file", "YAML file with the log and timeline configuration.").StringVar(&cfg.configFile)
	app.Flag("output", "Output format: table or json.").Short('o').Default(outputTable).EnumVar(&cfg.output, outputTable, outputJSON)
	app.Flag("thread", "Only process threads whose name or pid:tid contains the given string.").StringVar(&cfg.thread)
	app.Flag("mode", "Override the timeline mode of the configuration: markers or tracer.").EnumVar(&cfg.mode, "markers", "tracer")
	app.Flag("concurrency", "Override the number of threads processed concurrently.").IntVar(&cfg.concurrency)

	intervalsCmd := app.Command("intervals", "List the intervals paired from the trace events.")
	intervalsParams := addTraceParams(intervalsCmd)

	sliceCmd := app.Command("slice", "List the events relevant to a time range.")
	sliceParams := addSliceParams(sliceCmd)

	selfTimeCmd := app.Command("self-time", "Report the self time of every call stack.")
	selfTimeParams := addSelfTimeParams(selfTimeCmd)

	rowsCmd := app.Command("rows", "Pack the intervals into marker chart rows.")
	rowsParams := addTraceParams(rowsCmd)

	stackTimingCmd := app.Command("stack-timing", "Lay out the calls as flame chart rows.")
	stackTimingParams := addStackTimingParams(stackTimingCmd)

	// parse command line arguments
	parsedCmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	conf, err := loadConfig(cfg.configFile)
	if err != nil {
		os.Exit(checkError(err))
	}
	applyFlags(&conf)
	appLogger, err := util.NewLogger(conf.Log, consoleOutput)
	if err != nil {
		os.Exit(checkError(err))
	}

	ctx := appcontext.WithLogger(context.Background(), appLogger)
	ctx = appcontext.WithRegistry(ctx, prometheus.NewRegistry())
	ctx = withOutput(ctx, os.Stdout)

	switch parsedCmd {
	case intervalsCmd.FullCommand():
		err = intervals(ctx, conf, intervalsParams)
	case sliceCmd.FullCommand():
		err = slice(ctx, sliceParams)
	case selfTimeCmd.FullCommand():
		err = selfTime(ctx, conf, selfTimeParams)
	case rowsCmd.FullCommand():
		err = markerRows(ctx, conf, rowsParams)
	case stackTimingCmd.FullCommand():
		err = stackTiming(ctx, conf, stackTimingParams)
	default:
		err = fmt.Errorf("unknown command %q", parsedCmd)
	}
	os.Exit(checkError(err))
}

func checkError(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 1
}

type contextKey uint8

const (
	contextKeyOutput contextKey = iota
)

func withOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, contextKeyOutput, w)
}

func output(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(contextKeyOutput).(io.Writer); ok {
		return w
	}
	return os.Stdout
}

func logger(ctx context.Context) log.Logger {
	return appcontext.Logger(ctx)
}
