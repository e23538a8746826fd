package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"assistcal/internal/assistant"
	"assistcal/internal/config"
	appLog "assistcal/internal/log"
	"assistcal/internal/model"
	"assistcal/internal/notify"
	"assistcal/internal/reminder"
	"assistcal/internal/schedule"
	"assistcal/internal/store"
	"assistcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	importPath string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("assistcal starting",
		"listen", conf.Listen,
		"database", conf.Database,
		"reminder_cron", conf.ReminderCron,
		"reminder_policy", conf.ReminderPolicy,
		"search_mode", conf.SearchMode,
		"once", flags.once,
	)

	st, err := store.Open(conf.Database)
	if err != nil {
		appLog.Error("failed to open database", err, "database", conf.Database)
		os.Exit(1)
	}
	defer st.Close()

	feed := notify.NewFeed(conf.FeedSize)
	svc := assistant.New(st, assistant.Options{
		Notifier: notify.Multi{notify.LogNotifier{}, feed},
		Policy:   reminder.PolicyByName(conf.ReminderPolicy),
		Mode:     schedule.ParseMode(conf.SearchMode),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if flags.importPath != "" {
		if err := importCalendar(ctx, svc, flags.importPath); err != nil {
			appLog.Error("calendar import failed", err, "path", flags.importPath)
			os.Exit(1)
		}
	}

	if flags.once {
		if _, err := svc.SendReminders(ctx); err != nil {
			appLog.Error("reminder evaluation failed", err)
			os.Exit(1)
		}
		return
	}

	c := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := c.AddFunc(conf.ReminderCron, func() { pollReminders(ctx, svc) }); err != nil {
		appLog.Error("invalid reminder schedule", err, "reminder_cron", conf.ReminderCron)
		os.Exit(1)
	}
	c.Start()

	if err := web.NewServer(conf, svc, feed).Run(ctx); err != nil {
		appLog.Error("HTTP server failed", err)
		cancel()
	}

	<-c.Stop().Done()
	appLog.Info("assistcal exiting")
}

func pollReminders(ctx context.Context, svc *assistant.Service) {
	rep, err := svc.SendReminders(ctx)
	if err != nil {
		appLog.Error("reminder poll failed", err)
		return
	}
	if len(rep.Due) == 0 {
		appLog.Debug("reminder poll: nothing due", "pending", len(rep.Pending))
	}
}

func importCalendar(ctx context.Context, svc *assistant.Service, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rep, err := svc.ImportCalendar(ctx, body, svc.DefaultMode())
	if err != nil {
		return err
	}
	for _, out := range rep.Meetings {
		if out.Status != schedule.Free {
			appLog.Warn("imported meeting not scheduled",
				"time", model.FormatTimestamp(out.Candidate),
				"status", out.Status,
				"alternatives", len(out.Alternatives),
			)
		}
	}
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./assistcal.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Evaluate and send reminders once, then exit")
	flag.StringVar(&cfg.importPath, "import", "", "Import tasks and meetings from an .ics file before starting")

	flag.Parse()

	return cfg
}
