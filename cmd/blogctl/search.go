package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchRebuildCmd = &cobra.Command{
	Use:   "search-rebuild",
	Short: "以数据库中已发布文章重建全文检索索引",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := openContainer()
		if err != nil {
			return err
		}
		defer container.Close()

		count, err := container.PostService.RebuildSearchIndex()
		if err != nil {
			return fmt.Errorf("rebuild search index: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "indexed=%d\n", count)
		return nil
	},
}
