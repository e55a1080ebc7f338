package cron

import (
	"context"
	"sync"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/belmontdev/mailbot/config"
	"github.com/belmontdev/mailbot/interfaces"
	cron_config "github.com/belmontdev/mailbot/internal/cron/config"
	"github.com/belmontdev/mailbot/internal/logger"
	"github.com/belmontdev/mailbot/internal/tracing"
)

const (
	// GroupInboxScan is the group for inbox scanning jobs
	GroupInboxScan = "inbox_scan"
)

// LOCK MANAGEMENT
var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupInboxScan: new(sync.Mutex),
	},
}

type CronManager struct {
	cfg     *config.Config
	log     logger.Logger
	cron    *cronv3.Cron
	stopCh  chan struct{}
	jobIDs  map[string]cronv3.EntryID
	scanner interfaces.Scanner
}

func NewCronManager(cfg *config.Config, log logger.Logger, scanner interfaces.Scanner) *CronManager {
	return &CronManager{
		cfg:     cfg,
		log:     log,
		stopCh:  make(chan struct{}),
		jobIDs:  make(map[string]cronv3.EntryID),
		scanner: scanner,
	}
}

// StartCron registers and starts the scheduled jobs.
func (cm *CronManager) StartCron() {
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Error parsing cron schedules: %v", err)
	}

	cm.cron = cronv3.New()

	id, err := cm.cron.AddFunc(cronConfig.CronScheduleInboxScan, func() {
		lockAndRunJob(cm, GroupInboxScan, cm.scanInboxes)
	})
	if err != nil {
		cm.log.Fatalf("Could not add inbox scan job: %v", err)
	}
	cm.jobIDs["inbox_scan"] = id

	cm.log.Infof("Inbox scan scheduled: %s", cronConfig.CronScheduleInboxScan)
	cm.cron.Start()
}

func lockAndRunJob(cm *CronManager, groupName string, job func()) {
	jobLocks.Lock()
	lock := jobLocks.locks[groupName]
	jobLocks.Unlock()

	lock.Lock()
	defer lock.Unlock()

	job()
}

// Stop gracefully shuts down the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cronCtx := cm.cron.Stop()
		<-cronCtx.Done()
	}
	close(cm.stopCh)
	cm.log.Info("Cron manager stopped")
}

// scanInboxes runs one scheduled scan across every configured account.
func (cm *CronManager) scanInboxes() {
	span, ctx := tracing.StartTracerSpan(context.Background(), "CronManager.scanInboxes")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	for _, account := range cm.cfg.IMAP.Accounts() {
		if err := cm.scanner.Scan(ctx, account.Key); err != nil {
			cm.log.Errorf("[%s] Scheduled scan failed: %v", account.Key, err)
		}
	}
}
