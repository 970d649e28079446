package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Output
	OutputDir string
	AssetBase string
	Workers   int
	Compress  bool

	// Tutor LMS import API
	TutorBaseURL string
	TutorToken   string

	// SFTP hand-off
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPInsecureIgnoreHostKey bool
}

func Load() Config {
	return Config{
		// Output
		OutputDir: getenv("MIGRATE_OUTPUT_DIR", "tutor_lms_output"),
		AssetBase: getenv("MIGRATE_ASSET_BASE", "../../assets/"),
		Workers:   getenvInt("MIGRATE_WORKERS", 8),
		Compress:  getenvBool("MIGRATE_COMPRESS", false),

		// Tutor LMS
		TutorBaseURL: getenv("TUTOR_BASE_URL", ""),
		TutorToken:   os.Getenv("TUTOR_API_TOKEN"),

		// SFTP
		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/inbound"),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOSTKEY", true),
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
