package main

import (
	"runtime"
	"testing"
)

func TestHandleServiceCommand_NoArgs(t *testing.T) {
	if HandleServiceCommand([]string{}) {
		t.Error("HandleServiceCommand should return false for empty args")
	}
}

func TestHandleServiceCommand_SingleArg(t *testing.T) {
	if HandleServiceCommand([]string{"paperpitch"}) {
		t.Error("HandleServiceCommand should return false for a bare invocation")
	}
}

func TestHandleServiceCommand_PipelineModesFallThrough(t *testing.T) {
	// Watch, one-shot, validate, and version invocations must reach the
	// normal entry path, not the service command handler.
	args := [][]string{
		{"paperpitch", "validate"},
		{"paperpitch", "version"},
		{"paperpitch", "paper.pdf"},
	}
	for _, a := range args {
		if HandleServiceCommand(a) {
			t.Errorf("HandleServiceCommand(%q) should return false", a[1])
		}
	}
}

func TestHandleServiceCommand_ServiceCommandsAreWindowsOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("on Windows these commands manage a real service")
	}

	commands := []string{"install", "uninstall", "remove", "start", "stop", "restart", "status"}
	for _, cmd := range commands {
		if HandleServiceCommand([]string{"paperpitch", cmd}) {
			t.Errorf("HandleServiceCommand(%q) should return false on %s", cmd, runtime.GOOS)
		}
	}
}

func TestRunAsService_Interactive(t *testing.T) {
	ranAsService, err := RunAsService()
	if err != nil {
		t.Errorf("RunAsService returned error: %v", err)
	}
	if ranAsService {
		t.Error("RunAsService should return false in an interactive test run")
	}
}
