//go:build windows

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"paperpitch/core"

	"github.com/kardianos/service"
)

// Program implements service.Interface for Windows service integration.
// It runs watch mode under the service lifecycle: Start launches the
// pipeline, Stop cancels it and waits for the graceful shutdown to drain.
type Program struct {
	// ctx is the context used to signal shutdown
	ctx context.Context
	// cancel is the function to trigger shutdown
	cancel context.CancelFunc
	// exit is the channel to signal service exit
	exit chan struct{}
}

// Start is called when the service is started. It must not block.
func (p *Program) Start(s service.Service) error {
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.exit = make(chan struct{})

	go p.run()

	return nil
}

// Stop is called when the service is stopped. It signals the pipeline to
// shut down and waits for the run in flight to finish.
func (p *Program) Stop(s service.Service) error {
	p.cancel()

	select {
	case <-p.exit:
		// Clean shutdown completed
	case <-time.After(30 * time.Second):
		return fmt.Errorf("timeout waiting for service to stop")
	}

	return nil
}

// run executes watch mode until Stop cancels the context.
func (p *Program) run() {
	defer close(p.exit)

	code := runService(p.ctx)
	if code != core.ExitCodeSuccess && p.ctx.Err() == nil {
		// Failed before being asked to stop. Exit so the service manager
		// records the failure and applies its recovery policy.
		os.Exit(code)
	}
}

// ServiceConfig returns the Windows service definition.
func ServiceConfig() *service.Config {
	return &service.Config{
		Name:        "PaperPitch",
		DisplayName: "PaperPitch Report Service",
		Description: "Watches the uploads directory and turns each new PDF paper into an investor one-pager report",
		Option: service.KeyValue{
			"StartType": "automatic",
		},
	}
}

// RunAsService runs the application as a Windows service.
// Returns true if running as a service, false if running interactively.
func RunAsService() (bool, error) {
	s, err := newService()
	if err != nil {
		return false, err
	}

	if service.Interactive() {
		return false, nil
	}

	if err := s.Run(); err != nil {
		return true, fmt.Errorf("service run failed: %w", err)
	}

	return true, nil
}

// InstallService registers paperpitch as a Windows service set to start
// automatically at boot.
func InstallService() error {
	s, err := newService()
	if err != nil {
		return err
	}

	if err := s.Install(); err != nil {
		return fmt.Errorf("failed to install service: %w", err)
	}

	fmt.Println("Service installed successfully")
	return nil
}

// UninstallService removes the Windows service registration.
func UninstallService() error {
	s, err := newService()
	if err != nil {
		return err
	}

	if err := s.Uninstall(); err != nil {
		return fmt.Errorf("failed to uninstall service: %w", err)
	}

	fmt.Println("Service uninstalled successfully")
	return nil
}

// StartService starts the installed Windows service.
func StartService() error {
	s, err := newService()
	if err != nil {
		return err
	}

	if err := s.Start(); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	fmt.Println("Service started successfully")
	return nil
}

// StopService stops the installed Windows service.
func StopService() error {
	s, err := newService()
	if err != nil {
		return err
	}

	if err := s.Stop(); err != nil {
		return fmt.Errorf("failed to stop service: %w", err)
	}

	fmt.Println("Service stopped successfully")
	return nil
}

// RestartService stops and then starts the Windows service.
func RestartService() error {
	s, err := newService()
	if err != nil {
		return err
	}

	if err := s.Restart(); err != nil {
		return fmt.Errorf("failed to restart service: %w", err)
	}

	fmt.Println("Service restarted successfully")
	return nil
}

// ServiceStatus returns the current status of the Windows service.
func ServiceStatus() (service.Status, error) {
	s, err := newService()
	if err != nil {
		return service.StatusUnknown, err
	}

	status, err := s.Status()
	if err != nil {
		return service.StatusUnknown, fmt.Errorf("failed to get service status: %w", err)
	}

	return status, nil
}

func newService() (service.Service, error) {
	s, err := service.New(&Program{}, ServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return s, nil
}

// HandleServiceCommand handles service management command-line arguments.
// Returns true if a service command was handled, false otherwise.
func HandleServiceCommand(args []string) bool {
	if len(args) < 2 {
		return false
	}

	var err error
	switch args[1] {
	case "install":
		err = InstallService()
	case "uninstall", "remove":
		err = UninstallService()
	case "start":
		err = StartService()
	case "stop":
		err = StopService()
	case "restart":
		err = RestartService()
	case "status":
		status, statusErr := ServiceStatus()
		if statusErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", statusErr)
			os.Exit(core.ExitCodeError)
		}
		switch status {
		case service.StatusRunning:
			fmt.Println("Service is running")
		case service.StatusStopped:
			fmt.Println("Service is stopped")
		default:
			fmt.Println("Service status unknown")
		}
		return true
	default:
		return false
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(core.ExitCodeError)
	}

	return true
}
