package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gwillem/dofbot/pkg/dofbot"
	"github.com/gwillem/dofbot/pkg/logging"
)

type HomeCommand struct{}

func (c *HomeCommand) Execute(args []string) error {
	cfg, err := dofbot.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "No configuration found. Run 'dofbot setup' first.")
		os.Exit(1)
	}

	arm := dofbot.NewArm(*cfg, logging.Quiet())
	if err := arm.Connect(true); err != nil && arm.State() != dofbot.Ready {
		return fmt.Errorf("connect: %w", err)
	}
	defer arm.Disconnect()

	fmt.Println("Moving to rest pose...")
	if err := arm.MoveHome(); err != nil {
		return fmt.Errorf("move home: %w", err)
	}
	time.Sleep(dofbot.HomeMoveDuration)
	fmt.Println("Done.")

	return nil
}
