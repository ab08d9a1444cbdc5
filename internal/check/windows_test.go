package check

import (
	"testing"

	"mauicli/internal/config"
	"mauicli/internal/host"
	"mauicli/internal/probe/probetest"
)

func TestCheckWindowsSDK(t *testing.T) {
	tests := []struct {
		name       string
		version    host.OSVersion
		wantStatus Status
		wantMsg    string
	}{
		{"windows 11", host.OSVersion{Major: 10, Build: 22631}, StatusOK, "Windows 10.0 Build 22631"},
		{"1809", host.OSVersion{Major: 10, Build: 17763}, StatusOK, "Windows 10.0 Build 17763"},
		{"1803", host.OSVersion{Major: 10, Build: 17134}, StatusWarning, "Windows 10 Build 17134 detected"},
		{"windows 8.1", host.OSVersion{Major: 6, Minor: 3, Build: 9600}, StatusError, "Windows 6 detected"},
		{"unknown", host.OSVersion{}, StatusError, "Could not determine Windows version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReconciler(probetest.New(), host.New(host.Windows, tt.version), config.EnvFromMap(nil), nil)
			got := r.checkWindowsSDK(newRun(true))
			if got.Status != tt.wantStatus || got.Message != tt.wantMsg {
				t.Errorf("got %s %q, want %s %q", got.Status, got.Message, tt.wantStatus, tt.wantMsg)
			}
			if err := got.Validate(); err != nil {
				t.Error(err)
			}
			if got.Details["VisualStudioMinimum"] != "17.8" {
				t.Errorf("details = %v", got.Details)
			}
		})
	}
}

func TestCheckWindowsSDK_NotApplicable(t *testing.T) {
	r := NewReconciler(probetest.New(), host.New(host.MacOS, host.OSVersion{}), config.EnvFromMap(nil), nil)
	if got := r.checkWindowsSDK(newRun(false)); got.Status != StatusNotApplicable {
		t.Errorf("status = %s", got.Status)
	}
}
