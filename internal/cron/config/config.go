package cron_config

type Config struct {
	// Every 20 minutes
	CronScheduleInboxScan string `env:"CRON_SCHEDULE_INBOX_SCAN" envDefault:"*/20 * * * *"`
}
