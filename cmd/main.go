package main

import (
	"fmt"
	"os"
	"strings"

	"SNCatalog/internal/config"
	"SNCatalog/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app 各子命令共享的配置、日志与数据库
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *logrus.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "snapi",
		Short: "Supernova catalog service",
		Long: `snapi catalogs supernova events together with the literature sources
behind every classification, host galaxy and measured attribute.

It serves events in the Open Supernova Catalog (OSC) schema, bulk-imports
OSC-shaped datasets and computes cross-event uncertainty statistics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (default ./config/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(a),
		importCmd(a),
		fetchCmd(a),
		extractCmd(a),
		exportCmd(a),
		migrateCmd(a),
	)
	return cmd
}

// init 加载配置并初始化日志
func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("加载配置文件失败: %w", err)
	}
	a.cfg = cfg

	a.logger = logrus.New()
	level := cfg.Server.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	a.logger.SetLevel(lvl)
	a.logger.Info("配置文件加载成功")
	return nil
}

func (a *app) openDB() (*gorm.DB, error) {
	return db.Open(a.cfg.Database, a.logger)
}
