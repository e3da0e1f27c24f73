package main

import (
	"fmt"
	"io"

	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/provider"
	"github.com/openingclouds/internal/service"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "blogctl",
	Short:         "blogctl - OpeningClouds 博客运维命令",
	Long:          "blogctl 在本地执行笔记库同步、对账、文档池索引、远端推送与检索索引重建。",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认查找 ./config.yml）")
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(searchRebuildCmd)
}

// loadConfig 读取配置并按服务端方式初始化日志
func loadConfig() *config.Config {
	cfg := config.LoadFrom(configPath)
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	return cfg
}

// openContainer 初始化数据库并构建依赖容器，调用方负责 Close
func openContainer() (*provider.Container, error) {
	cfg := loadConfig()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return provider.NewContainer(cfg), nil
}

func printVaultStats(w io.Writer, stats *service.VaultSyncStats) {
	if stats == nil {
		return
	}
	if stats.DryRun {
		fmt.Fprintln(w, "Dry-run mode: no database changes")
	}
	fmt.Fprintf(w, "files=%d created=%d updated=%d skipped_unpublished=%d skipped_unchanged=%d skipped_mode=%d skipped_invalid=%d failed=%d drafted=%d deleted=%d\n",
		stats.Files, stats.Created, stats.Updated,
		stats.SkippedUnpublished, stats.SkippedUnchanged, stats.SkippedMode, stats.SkippedInvalid,
		stats.Failed, stats.Drafted, stats.Deleted)
	for _, failure := range stats.Failures {
		fmt.Fprintf(w, "  failed %s: %s\n", failure.Path, failure.Error)
	}
}
