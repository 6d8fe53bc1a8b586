package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/viant/worker"
	"github.com/viant/worker/internal/logging"
	"github.com/viant/worker/model/task"
	"github.com/viant/worker/tracing"
	"go.uber.org/zap"
)

var Version = "v0.1.0"

func main() {
	configURL := flag.String("config", "config.yaml", "worker config URL (file, mem://, s3://, gs://)")
	register := flag.Bool("register", false, "announce the echo block before polling")
	flag.Parse()

	ctx := context.Background()
	cfg, err := worker.LoadConfig(ctx, *configURL)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var options = []worker.Option{worker.WithConfig(cfg), worker.WithLogger(logger)}
	if t := cfg.Tracing; t != nil {
		version := t.ServiceVersion
		if version == "" {
			version = Version
		}
		options = append(options, worker.WithTracing(t.ServiceName, version, t.OutputFile))
	}
	srv, err := worker.New(ctx, options...)
	if err != nil {
		logger.Fatal("init worker", zap.Error(err))
	}

	echo := func(ctx context.Context, t *task.Task) task.Result {
		output := map[string]interface{}{"success": true}
		for k, v := range t.InputData {
			output[k] = v
		}
		return task.Completed(output)
	}
	if *register {
		block := task.Block{
			"name":   "echo",
			"input":  []interface{}{map[string]interface{}{"name": "text"}},
			"output": []interface{}{map[string]interface{}{"name": "success"}, map[string]interface{}{"name": "text"}},
		}
		if err = srv.RegisterBlock(ctx, block, echo); err != nil {
			logger.Error("block registration failed", zap.Error(err))
			os.Exit(1)
		}
	} else {
		srv.Register("echo", echo)
	}

	logger.Info("worker started", zap.String("version", Version), zap.Strings("types", srv.Registry().Types()))
	runErr := srv.Run(ctx)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = tracing.Shutdown(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("worker stopped with error", zap.Error(runErr))
		os.Exit(1)
	}
}
