package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"SNCatalog/internal/adapter/astrocats"
	"SNCatalog/internal/api"
	"SNCatalog/internal/db"
	"SNCatalog/internal/metrics"
	"SNCatalog/internal/repository"
	"SNCatalog/internal/service"
	"SNCatalog/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gdb, err := a.openDB()
			if err != nil {
				return err
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(registry)

			stats := service.NewStatsService(repository.NewStatsRepository(gdb), repository.NewEventRepository(gdb), a.logger)
			refresh := func() {
				if err := stats.RefreshGauges(ctx, m); err != nil {
					a.logger.WithError(err).Warn("刷新目录统计指标失败")
				}
			}
			refresh()

			var scheduler *cron.Cron
			if a.cfg.Stats.Cron != "" {
				scheduler = cron.New()
				if _, err := scheduler.AddFunc(a.cfg.Stats.Cron, refresh); err != nil {
					return fmt.Errorf("解析 stats.cron 失败: %w", err)
				}
				scheduler.Start()
				defer scheduler.Stop()
			}

			gin.SetMode(a.cfg.Server.Mode)
			router := api.NewRouter(gdb, a.logger, a.cfg, m, registry)
			a.logger.Infof("Gin运行模式: %s", a.cfg.Server.Mode)

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
				Handler:           router,
				ReadHeaderTimeout: 15 * time.Second,
				IdleTimeout:       120 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				a.logger.Infof("服务启动成功，端口：%d", a.cfg.Server.Port)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("启动服务失败: %w", err)
				}
				return nil
			case <-ctx.Done():
			}
			a.logger.Info("收到退出信号，正在关闭服务")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func importCmd(a *app) *cobra.Command {
	var (
		dataDir string
		oscDir  string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Clear the catalog and bulk-load sources, subtypes, galaxies and supernova.json, or load exported OSC files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataDir != "" && oscDir != "" {
				return fmt.Errorf("--data-dir 与 --osc-dir 不能同时指定")
			}
			gdb, err := a.openDB()
			if err != nil {
				return err
			}
			if dataDir == "" {
				dataDir = a.cfg.Import.DataDir
			}
			// 一次性命令不暴露 /metrics，只写审计记录
			importer := service.NewImporter(
				repository.NewImportRepository(gdb),
				repository.NewImportRunRepository(gdb),
				nil,
				a.logger,
				a.cfg.Import.BatchSize,
			)
			run := importer.Run
			dir := dataDir
			if oscDir != "" {
				run, dir = importer.RunOSC, oscDir
			}
			result, err := run(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "import %s finished: %s\n", result.RunUUID, string(result.Stats))
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding sources.json, subtypes.json, galaxies.json and supernova.json")
	cmd.Flags().StringVar(&oscDir, "osc-dir", "", "Directory of exported <name>.json OSC files; loaded without clearing, references must already exist")
	return cmd
}

func extractCmd(a *app) *cobra.Command {
	var (
		inDir      string
		outDir     string
		maxRecords int
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Convert a directory of raw OSC event files into an import dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = a.cfg.Import.DataDir
			}
			summary, err := service.NewExtractor(a.logger, maxRecords).Extract(cmd.Context(), inDir, outDir)
			if summary != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "records=%d events=%d sources=%d galaxies=%d subtypes=%d\n",
					summary.Records, summary.Events, summary.Sources, summary.Galaxies, summary.SubTypes)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&inDir, "in", "", "Directory of raw OSC event files")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default import.data_dir)")
	cmd.Flags().IntVar(&maxRecords, "max-records", service.DefaultMaxRecords, "Global record budget")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var (
		outDir string
		toS3   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every event as an OSC document to a directory or S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := a.openDB()
			if err != nil {
				return err
			}
			sink, err := storage.NewSink(cmd.Context(), a.cfg.Export, toS3, outDir)
			if err != nil {
				return err
			}
			// 一次性命令不暴露 /metrics；serve 下的 POST /api/export 记录指标
			exporter := service.NewExporter(repository.NewEventRepository(gdb), nil, a.logger, a.cfg.Export.PageSize)
			n, err := exporter.Export(cmd.Context(), sink)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d events to %s\n", n, sink.Name())
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default export.output_dir)")
	cmd.Flags().BoolVar(&toS3, "s3", false, "Upload to the configured S3 bucket instead of a directory")
	return cmd
}

func fetchCmd(a *app) *cobra.Command {
	var (
		names  []string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download raw OSC event files from the OSC API for later extraction",
		RunE: func(cmd *cobra.Command, args []string) error {
			names = append(names, args...)
			if len(names) == 0 {
				return fmt.Errorf("至少指定一个事件名")
			}
			svc := service.NewFetchService(astrocats.NewAdapter(a.cfg.Fetch, a.logger), a.logger)
			n, err := svc.FetchAll(cmd.Context(), names, outDir)
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d/%d events into %s\n", n, len(names), outDir)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&names, "names", nil, "Event names, comma separated")
	cmd.Flags().StringVar(&outDir, "out", "./raw", "Directory for raw event files")
	return cmd
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Database.AutoMigrate = false
			gdb, err := a.openDB()
			if err != nil {
				return err
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			a.logger.Info("数据库表结构迁移完成")
			return nil
		},
	}
}
