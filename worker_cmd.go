package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Neuro316/Neuro-progeny-university/worker"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Poll the email retry queue and resend failed emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			if a.retryQ == nil {
				return errors.New("worker: EMAIL_RETRY_QUEUE_URL and AWS configuration are required")
			}
			return worker.NewEmailRetryWorker(a.mailer, log).Run(ctx, a.retryQ)
		},
	}
}
