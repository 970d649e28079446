// Command migrate converts a Canvas course export directory into a
// Tutor LMS import bundle: tutor_course.json, migration_report.json and
// the referenced asset files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"course-migrate/internal/config"
	"course-migrate/internal/export"
	"course-migrate/internal/inventory"
	"course-migrate/internal/pipeline"
	"course-migrate/internal/report"
	"course-migrate/internal/sftpclient"
	"course-migrate/internal/tutorapi"
)

func main() {
	cfg := config.Load()

	out := flag.String("out", cfg.OutputDir, "output directory for the import bundle")
	assetBase := flag.String("assets-base", cfg.AssetBase, "asset base path rewritten into lesson content")
	workers := flag.Int("workers", cfg.Workers, "max parallel content extractions")
	compress := flag.Bool("compress", cfg.Compress, "write brotli copies of the JSON artifacts")
	upload := flag.Bool("upload", false, "upload the artifacts over SFTP (needs SFTP_* env)")
	push := flag.Bool("push", false, "push the course to the Tutor API (needs TUTOR_* env)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <course-export-dir>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	root := flag.Arg(0)

	log := newLogger(*verbose)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outDir := *out
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(root, outDir)
	}

	course, rep := pipeline.Run(ctx, root, pipeline.Options{
		OutputDir: outDir,
		AssetBase: *assetBase,
		Workers:   *workers,
		Logger:    log,
	})

	// The report is written even for a failed run so the failure is
	// inspectable.
	reportPath, err := export.WriteReportJSON(outDir, rep.Snapshot())
	if err != nil {
		log.Fatal("write report", zap.Error(err))
	}
	log.Info("report written", zap.String("path", reportPath))

	if rep.Status() == report.StatusFailed || course == nil {
		log.Error("migration failed", zap.String("report", reportPath))
		os.Exit(1)
	}

	coursePath, err := export.WriteCourseJSON(outDir, course)
	if err != nil {
		log.Fatal("write course", zap.Error(err))
	}
	log.Info("course written", zap.String("path", coursePath))

	if inv, err := inventory.Scan(root, filepath.Base(outDir)); err == nil {
		n, err := export.CopyAssets(root, outDir, inv)
		if err != nil {
			log.Fatal("copy assets", zap.Error(err))
		}
		log.Info("assets copied", zap.Int("count", n))
	}

	artifacts := []string{coursePath, reportPath}
	if *compress {
		for _, p := range []string{coursePath, reportPath} {
			br, err := export.CompressFile(p)
			if err != nil {
				log.Fatal("compress", zap.String("path", p), zap.Error(err))
			}
			artifacts = append(artifacts, br)
		}
	}

	if *upload {
		err := sftpclient.UploadArtifacts(ctx, sftpclient.Config{
			Host:                  cfg.SFTPHost,
			Port:                  cfg.SFTPPort,
			User:                  cfg.SFTPUser,
			Pass:                  cfg.SFTPPass,
			RemoteDir:             cfg.SFTPDir,
			InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
		}, artifacts...)
		if err != nil {
			log.Fatal("sftp upload", zap.Error(err))
		}
		log.Info("artifacts uploaded", zap.Int("count", len(artifacts)))
	}

	if *push {
		resp, err := tutorapi.New(cfg.TutorBaseURL, cfg.TutorToken).PushCourse(ctx, course)
		if err != nil {
			log.Fatal("course push", zap.Error(err))
		}
		log.Info("course pushed", zap.Int("course_id", resp.CourseID), zap.String("status", resp.Status))
	}

	log.Info("done", zap.String("status", string(rep.Status())))
	if rep.Status() == report.StatusSuccessWithWarnings {
		log.Warn("completed with warnings", zap.Int("warnings", rep.TotalBySeverity(report.SeverityWarning)))
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	return log
}
