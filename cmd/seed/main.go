package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/repository"
	"github.com/openingclouds/internal/service"
)

// 导入时间线、旅行足迹、社交关系、高光时刻等结构化数据
func main() {
	var (
		source   string
		dryRun   bool
		truncate bool
	)
	flag.StringVar(&source, "file", "", "JSON / YAML 数据文件路径")
	flag.BoolVar(&dryRun, "dry-run", false, "只校验不写入")
	flag.BoolVar(&truncate, "truncate", false, "导入前清空已有数据")
	flag.Parse()
	if source == "" && flag.NArg() > 0 {
		source = flag.Arg(0)
	}

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if source == "" {
		stdLog.Fatalf("缺少数据文件，用法: seed -file data.json [-dry-run] [-truncate]")
	}

	raw, err := os.ReadFile(source)
	if err != nil {
		stdLog.Fatalf("读取数据文件失败: %v", err)
	}
	file, err := service.DecodeContentImport(raw, source)
	if err != nil {
		stdLog.Fatalf("解析数据文件失败: %v", err)
	}
	fmt.Printf("Loaded: timeline=%d, travel=%d, social=%d, highlights=%d\n",
		len(file.TimelineNodes), len(file.TravelPlaces), len(file.SocialFriends), len(file.HighlightStages))

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	importer := service.NewContentImportService(repository.NewContentImportRepository(models.DB))
	result, err := importer.Import(file, dryRun, truncate)
	if err != nil {
		stdLog.Fatalf("导入失败: %v", err)
	}
	if result.DryRun {
		fmt.Println("Dry-run mode: no database changes")
	}
	fmt.Printf("Imported timeline=%d, travel=%d, social=%d, highlight_stages=%d, highlight_items=%d\n",
		result.Timeline, result.Travel, result.Social, result.HighlightStages, result.HighlightItems)
}
