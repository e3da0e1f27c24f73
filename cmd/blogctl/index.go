package main

import (
	"context"
	"fmt"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/service"

	"github.com/spf13/cobra"
)

var indexFlags struct {
	trigger    string
	missing    string
	autoUpdate bool
	repoURL    string
	repoBranch string
	repoCommit string
}

var indexCmd = &cobra.Command{
	Use:   "index [vault]",
	Short: "扫描笔记库并刷新文档池",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := openContainer()
		if err != nil {
			return err
		}
		defer container.Close()

		input := service.DocumentPoolInput{
			Trigger:         indexFlags.trigger,
			MissingBehavior: indexFlags.missing,
			RepoURL:         indexFlags.repoURL,
			RepoBranch:      indexFlags.repoBranch,
			RepoCommit:      indexFlags.repoCommit,
		}
		if len(args) > 0 {
			input.SourceDir = args[0]
		}
		if cmd.Flags().Changed("auto-update") {
			autoUpdate := indexFlags.autoUpdate
			input.AutoUpdatePublished = &autoUpdate
		}

		result, err := container.DocumentPoolService.Index(context.Background(), input)
		if result != nil && result.Run != nil {
			run := result.Run
			fmt.Fprintf(cmd.OutOrStdout(), "run=%d status=%s scanned=%d created=%d updated=%d missing=%d published_updated=%d drafted=%d duration_ms=%d\n",
				run.ID, run.Status, run.ScannedCount, run.CreatedCount, run.UpdatedCount,
				run.MissingCount, run.PublishedUpdatedCount, run.DraftedCount, run.DurationMs)
			if run.Message != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "message: %s\n", run.Message)
			}
		}
		return err
	},
}

func init() {
	flags := indexCmd.Flags()
	flags.StringVar(&indexFlags.trigger, "trigger", constants.SyncRunTriggerManual, "触发方式: manual / scheduled")
	flags.StringVar(&indexFlags.missing, "missing", "", "缺失文件处理: draft / none（默认取配置）")
	flags.BoolVar(&indexFlags.autoUpdate, "auto-update", false, "自动刷新已发布文章（默认取配置）")
	flags.StringVar(&indexFlags.repoURL, "repo-url", "", "笔记库仓库地址")
	flags.StringVar(&indexFlags.repoBranch, "repo-branch", "", "笔记库分支")
	flags.StringVar(&indexFlags.repoCommit, "repo-commit", "", "笔记库提交")
}
