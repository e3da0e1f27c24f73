package main

import (
	"context"
	"time"

	"github.com/openingclouds/internal/remote"

	"github.com/spf13/cobra"
)

var pushFlags struct {
	remoteURL string
	token     string
	mode      string
	dryRun    bool
	include   []string
	exclude   []string
	behavior  string
}

var pushCmd = &cobra.Command{
	Use:   "push [vault]",
	Short: "将本地笔记库推送到远端博客实例",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		baseURL := cfg.Remote.BaseURL
		if pushFlags.remoteURL != "" {
			baseURL = pushFlags.remoteURL
		}
		token := cfg.Remote.Token
		if pushFlags.token != "" {
			token = pushFlags.token
		}
		client, err := remote.NewClient(baseURL, token, time.Duration(cfg.Remote.TimeoutSeconds)*time.Second)
		if err != nil {
			return err
		}

		input := remote.PushInput{
			SourceDir:         cfg.Obsidian.VaultPath,
			IncludeRoots:      cfg.Obsidian.IncludeRoots,
			ExcludedDirs:      cfg.Obsidian.ExcludedDirs,
			PublishTag:        cfg.Obsidian.PublishTag,
			DefaultCategory:   cfg.Obsidian.DefaultCategory,
			Mode:              pushFlags.mode,
			DryRun:            pushFlags.dryRun,
			ReconcileBehavior: pushFlags.behavior,
		}
		if len(args) > 0 {
			input.SourceDir = args[0]
		}
		if len(pushFlags.include) > 0 {
			input.IncludeRoots = pushFlags.include
		}
		if len(pushFlags.exclude) > 0 {
			input.ExcludedDirs = pushFlags.exclude
		}

		stats, err := remote.Push(context.Background(), client, input)
		printVaultStats(cmd.OutOrStdout(), stats)
		return err
	},
}

func init() {
	flags := pushCmd.Flags()
	flags.StringVar(&pushFlags.remoteURL, "remote", "", "远端实例地址（默认取 remote.base_url）")
	flags.StringVar(&pushFlags.token, "token", "", "同步令牌（默认取 remote.token）")
	flags.StringVar(&pushFlags.mode, "mode", "", "同步模式: overwrite / skip / merge")
	flags.BoolVar(&pushFlags.dryRun, "dry-run", false, "远端只计算不写入")
	flags.StringSliceVar(&pushFlags.include, "include", nil, "仅扫描的子目录，可重复")
	flags.StringSliceVar(&pushFlags.exclude, "exclude", nil, "排除的目录名，可重复")
	flags.StringVar(&pushFlags.behavior, "behavior", "", "对账行为: draft / delete / none")
}
