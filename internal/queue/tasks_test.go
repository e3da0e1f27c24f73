package queue

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/constants"
)

func TestNewDocumentIndexTask(t *testing.T) {
	autoUpdate := true
	task, err := NewDocumentIndexTask(DocumentIndexPayload{Trigger: constants.SyncRunTriggerScheduled, AutoUpdatePublished: &autoUpdate})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskObsidianIndex {
		t.Fatalf("task type want %s got %s", TaskObsidianIndex, task.Type())
	}
	var payload DocumentIndexPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.Trigger != constants.SyncRunTriggerScheduled || payload.AutoUpdatePublished == nil || !*payload.AutoUpdatePublished {
		t.Fatalf("payload mismatch: %+v", payload)
	}
}

func TestDisabledClientRejectsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if _, err := client.EnqueueVaultSync(VaultSyncPayload{}); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("want ErrQueueDisabled got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestNewSchedulerSkipsWithoutCron(t *testing.T) {
	scheduler, err := NewScheduler(&config.QueueConfig{Enabled: true}, "  ")
	if err != nil || scheduler != nil {
		t.Fatalf("empty cron should not build a scheduler: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" || cfg.Concurrency != 1 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("defaults mismatch: %+v %+v", opt, cfg)
	}
}
