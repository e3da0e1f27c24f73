package main

import (
	"context"
	"strings"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/service"

	"github.com/spf13/cobra"
)

var syncFlags struct {
	mode       string
	dryRun     bool
	force      bool
	include    []string
	exclude    []string
	publishTag string
	reconcile  string
	scope      []string
}

var syncCmd = &cobra.Command{
	Use:   "sync [vault]",
	Short: "同步笔记库中带发布标签的笔记并对账",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := openContainer()
		if err != nil {
			return err
		}
		defer container.Close()

		input := service.VaultSyncInput{
			IncludeRoots:      syncFlags.include,
			ExcludedDirs:      syncFlags.exclude,
			PublishTag:        strings.TrimSpace(syncFlags.publishTag),
			Mode:              syncFlags.mode,
			DryRun:            syncFlags.dryRun,
			Force:             syncFlags.force,
			ReconcileBehavior: syncFlags.reconcile,
			ScopePrefixes:     syncFlags.scope,
			Source:            constants.SyncLogSourceCommand,
		}
		if len(args) > 0 {
			input.SourceDir = args[0]
		}
		stats, err := container.VaultSyncService.Run(context.Background(), input)
		printVaultStats(cmd.OutOrStdout(), stats)
		return err
	},
}

func init() {
	flags := syncCmd.Flags()
	flags.StringVar(&syncFlags.mode, "mode", "", "同步模式: overwrite / skip / merge（默认取配置）")
	flags.BoolVar(&syncFlags.dryRun, "dry-run", false, "只计算不写入")
	flags.BoolVar(&syncFlags.force, "force", false, "忽略修改时间，强制同步全部已发布笔记")
	flags.StringSliceVar(&syncFlags.include, "include", nil, "仅扫描的子目录，可重复")
	flags.StringSliceVar(&syncFlags.exclude, "exclude", nil, "排除的目录名，可重复")
	flags.StringVar(&syncFlags.publishTag, "publish-tag", "", "发布标签（默认 publish）")
	flags.StringVar(&syncFlags.reconcile, "reconcile", "", "对账行为: draft / delete / none")
	flags.StringSliceVar(&syncFlags.scope, "scope", nil, "对账范围前缀，可重复（默认同 --include）")
}
