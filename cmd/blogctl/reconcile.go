package main

import (
	"context"
	"fmt"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/service"

	"github.com/spf13/cobra"
)

var reconcileFlags struct {
	paths    []string
	scope    []string
	behavior string
	dryRun   bool
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "将不在已发布路径列表中的同步文章转为草稿或删除",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := openContainer()
		if err != nil {
			return err
		}
		defer container.Close()

		result, err := container.ObsidianSyncService.Reconcile(context.Background(), service.ReconcileInput{
			PublishedPaths: reconcileFlags.paths,
			ScopePrefixes:  reconcileFlags.scope,
			Behavior:       reconcileFlags.behavior,
			Source:         constants.SyncLogSourceCommand,
			DryRun:         reconcileFlags.dryRun,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if reconcileFlags.dryRun {
			fmt.Fprintln(out, "Dry-run mode: no database changes")
		}
		fmt.Fprintf(out, "behavior=%s matched=%d drafted=%d deleted=%d sync_log_id=%d\n",
			result.Behavior, result.Matched, result.Drafted, result.Deleted, result.LogID)
		return nil
	},
}

func init() {
	flags := reconcileCmd.Flags()
	flags.StringArrayVar(&reconcileFlags.paths, "path", nil, "已发布笔记的相对路径，可重复")
	flags.StringSliceVar(&reconcileFlags.scope, "scope", nil, "对账范围前缀，可重复")
	flags.StringVar(&reconcileFlags.behavior, "behavior", constants.ReconcileBehaviorDraft, "对账行为: draft / delete / none")
	flags.BoolVar(&reconcileFlags.dryRun, "dry-run", false, "只计算不写入")
}
