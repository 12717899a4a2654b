// Command lmapd is the LMAP measurement agent daemon, spec.md §6.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lmapcloud/lmapd/internal/build"
	"github.com/lmapcloud/lmapd/internal/config"
	"github.com/lmapcloud/lmapd/internal/control"
	"github.com/lmapcloud/lmapd/internal/evaluator"
	"github.com/lmapcloud/lmapd/internal/logger"
	"github.com/lmapcloud/lmapd/internal/model"
	"github.com/lmapcloud/lmapd/internal/runner"
	"github.com/lmapcloud/lmapd/internal/serialize"
	"github.com/lmapcloud/lmapd/internal/serialize/jsonengine"
	"github.com/lmapcloud/lmapd/internal/serialize/xmlengine"
	"github.com/lmapcloud/lmapd/internal/workspace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "lmapd",
		Short:         "LMAP measurement agent daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v)
		},
	}

	flags := cmd.Flags()
	flags.BoolP("daemonize", "f", false, "daemonize")
	flags.BoolP("noop", "n", false, "validate config and dump rendered config, then exit")
	flags.BoolP("state", "s", false, "validate and dump state, then exit")
	flags.BoolP("zap", "z", false, "zap workspace before starting")
	flags.StringArrayP("config", "c", []string{"+"}, "config search path entry (repeatable; + means built-in default)")
	flags.StringP("capability", "b", "", "capability document path")
	flags.StringP("queue", "q", "", "queue directory")
	flags.StringP("rundir", "r", "", "run directory")
	flags.BoolP("json", "j", false, "use the JSON serialization engine")
	flags.BoolP("xml", "x", false, "use the XML serialization engine")
	flags.BoolP("version", "v", false, "print version and exit")

	_ = v.BindPFlags(flags)
	v.SetEnvPrefix("LMAPD")
	v.AutomaticEnv()

	return cmd
}

func run(ctx context.Context, v *viper.Viper) error {
	if v.GetBool("version") {
		fmt.Println(build.Banner())
		return nil
	}

	h, err := logger.NewHandler(logger.NewHandlerArgs{
		Debug:     v.GetBool("debug"),
		Daemonize: v.GetBool("daemonize"),
		Stderr:    os.Stderr,
	})
	if err != nil {
		return err
	}
	log := logger.New(h)

	queueDir := v.GetString("queue")
	if queueDir == "" {
		queueDir = config.DefaultRunDir() + "/queue"
	}
	runDir := v.GetString("rundir")
	if runDir == "" {
		runDir = config.DefaultRunDir()
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}

	engine := pickEngine(v)

	searchPath := joinConfigPath(v.GetStringSlice("config"))
	m, err := config.Load(config.Options{SearchPath: searchPath, Engine: engine})
	if err != nil {
		return err
	}
	if err := m.ValidateErr(); err != nil {
		return err
	}

	if v.GetBool("noop") {
		out, err := engine.RenderConfig(m)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	if v.GetBool("zap") {
		if err := workspace.Zap(queueDir); err != nil {
			return err
		}
	}
	if err := workspace.Init(m, queueDir); err != nil {
		return err
	}

	if v.GetBool("state") {
		out, err := engine.RenderState(m)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	if v.GetBool("daemonize") {
		if err := control.Daemonize(); err != nil {
			return err
		}
	}

	ev := evaluator.New(nil)
	rn := runner.New(runner.Config{Model: m, QueueDir: queueDir, Log: log})

	daemon := control.New(control.Config{
		Model:    m,
		QueueDir: queueDir,
		ConfigFn: func() (*model.Model, error) {
			next, err := config.Load(config.Options{SearchPath: searchPath, Engine: engine})
			if err != nil {
				return nil, err
			}
			if err := next.ValidateErr(); err != nil {
				return nil, err
			}
			return next, nil
		},
		Engine:    engine,
		StatePath: runDir + "/state" + extensionFor(engine),
		PIDPath:   runDir + "/lmapd.pid",
		Log:       log,
		Evaluator: ev,
		Runner:    rn,
	})

	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT)
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- daemon.Run(runCtx) }()
	go func() { errCh <- daemon.ServeAPI(runCtx, runDir+"/lmapd.sock") }()

	return <-errCh
}

func pickEngine(v *viper.Viper) serialize.Engine {
	if v.GetBool("xml") {
		return xmlengine.Engine{}
	}
	return jsonengine.Engine{}
}

func extensionFor(engine serialize.Engine) string {
	if engine.Kind() == "xml" {
		return ".xml"
	}
	return ".json"
}

func joinConfigPath(entries []string) string {
	out := ""
	for i, e := range entries {
		if i > 0 {
			out += ":"
		}
		out += e
	}
	return out
}

