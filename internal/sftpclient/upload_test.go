package sftpclient

import (
	"context"
	"strings"
	"testing"
)

func TestUploadArtifactsValidation(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name          string
		cfg           Config
		paths         []string
		errorContains string
	}{
		{
			name:          "Missing credentials",
			cfg:           Config{},
			paths:         []string{"tutor_course.json"},
			errorContains: "sftp: missing env SFTP_HOST / SFTP_USER / SFTP_PASS",
		},
		{
			name: "Unreachable host fails at dial",
			cfg: Config{
				Host: "test-host",
				User: "test-user",
				Pass: "test-pass",
			},
			paths:         []string{"tutor_course.json"},
			errorContains: "sftp: dial error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := UploadArtifacts(ctx, tc.cfg, tc.paths...)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.errorContains) {
				t.Errorf("Expected error to contain %q, got %q", tc.errorContains, err.Error())
			}
		})
	}
}

func TestUploadFileValidation(t *testing.T) {
	err := UploadFile(context.Background(), Config{}, "report.json", "report.json")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "missing env") {
		t.Errorf("Expected credential validation error, got %q", err.Error())
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{
		Host: "test-host",
		User: "test-user",
		Pass: "test-pass",
	}

	// Port and RemoteDir are defaulted inside the upload calls.
	if cfg.Port != 0 {
		t.Errorf("Expected zero Port before defaulting, got %d", cfg.Port)
	}
	if cfg.RemoteDir != "" {
		t.Errorf("Expected empty RemoteDir before defaulting, got %q", cfg.RemoteDir)
	}
}
