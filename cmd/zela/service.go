package main

import (
	"context"
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// program adapts the app lifecycle to the system service manager.
type program struct {
	cfgPath string
	cancel  context.CancelFunc
	done    chan error
}

func (p *program) Start(service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)

	a, err := newApp(ctx, p.cfgPath)
	if err != nil {
		cancel()
		return err
	}

	go func() { p.done <- a.run(ctx) }()
	return nil
}

func (p *program) Stop(service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "service [install|uninstall|start|stop|run]",
		Short:     "Run or manage zela as a system service",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"install", "uninstall", "start", "stop", "run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := configPathFlag(cmd)
			if err != nil {
				return err
			}

			svcConfig := &service.Config{
				Name:        "zela",
				DisplayName: "zela chat relay",
				Description: "Zalo chat bot backed by Gemini models",
				Arguments:   []string{"service", "run", "--config", cfgPath},
			}

			svc, err := service.New(&program{cfgPath: cfgPath}, svcConfig)
			if err != nil {
				return err
			}

			action := args[0]
			if action == "run" {
				return svc.Run()
			}
			if err := service.Control(svc, action); err != nil {
				return err
			}
			fmt.Printf("Service %s: done\n", action)
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}
