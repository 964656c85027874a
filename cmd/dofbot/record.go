package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/gwillem/dofbot/pkg/capture"
	"github.com/gwillem/dofbot/pkg/dofbot"
	"github.com/gwillem/dofbot/pkg/logging"
)

type RecordCommand struct {
	Hz      int    `long:"hz" default:"30" description:"Sampling frequency"`
	Output  string `long:"output" short:"o" default:"episode.jsonl" description:"Episode output file"`
	LogFile string `long:"log-file" description:"Also write logs to this file"`
}

func (c *RecordCommand) Execute(args []string) error {
	cfg, err := dofbot.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "No configuration found. Run 'dofbot setup' first.")
		os.Exit(1)
	}

	log := logging.New(logging.Config{
		Level: "info",
		File:  logging.FileConfig{Filename: c.LogFile, MaxSizeMB: 10, MaxBackups: 3},
	})
	defer log.Sync()

	arm := dofbot.NewArm(*cfg, log)
	if err := arm.Connect(true); err != nil && arm.State() != dofbot.Ready {
		return fmt.Errorf("connect: %w", err)
	}
	defer arm.Disconnect()

	rec, err := capture.NewRecorder(c.Output)
	if err != nil {
		return err
	}

	// Hand-guided recording: torque is released while sampling.
	ctrl := capture.NewController(arm, capture.Config{
		Hz:          c.Hz,
		Kinesthetic: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := ctrl.Start(ctx); err != nil && err != context.Canceled {
			log.Error("capture loop", zap.Error(err))
		}
	}()

	fmt.Printf("Recording to %s at %d Hz. Guide the arm by hand; press Ctrl-C to stop.\n", c.Output, ctrl.Hz())

	for {
		select {
		case <-ctx.Done():
			if err := rec.Close(); err != nil {
				return fmt.Errorf("close episode: %w", err)
			}
			fmt.Printf("\nRecorded %d frames to %s\n", rec.Frames(), c.Output)
			return nil
		case s := <-ctrl.Samples():
			if err := rec.Record(s); err != nil {
				rec.Close()
				return err
			}
		case msg := <-ctrl.Logs():
			fmt.Println(msg)
		}
	}
}
