// Package sftpclient hands the migration artifacts off to the import
// host over SFTP.
package sftpclient

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type Config struct {
	Host                  string
	Port                  int
	User                  string
	Pass                  string
	RemoteDir             string
	InsecureIgnoreHostKey bool
}

// UploadArtifacts uploads the given local files into cfg.RemoteDir over
// a single SFTP session, keeping their base names.
func UploadArtifacts(ctx context.Context, cfg Config, localPaths ...string) error {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return fmt.Errorf("sftp: missing env SFTP_HOST / SFTP_USER / SFTP_PASS")
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}

	sshClient, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer sshClient.Close()

	cli, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("sftp: new client: %w", err)
	}
	defer cli.Close()

	if err := cli.MkdirAll(cfg.RemoteDir); err != nil {
		return fmt.Errorf("sftp: mkdir %s: %w", cfg.RemoteDir, err)
	}

	for _, local := range localPaths {
		if err := uploadOne(cli, local, path.Join(cfg.RemoteDir, filepath.Base(local))); err != nil {
			return err
		}
	}
	return nil
}

// UploadFile uploads a single local file under the given remote name.
func UploadFile(ctx context.Context, cfg Config, localPath, remoteFileName string) error {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return fmt.Errorf("sftp: missing env SFTP_HOST / SFTP_USER / SFTP_PASS")
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}

	sshClient, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer sshClient.Close()

	cli, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("sftp: new client: %w", err)
	}
	defer cli.Close()

	if err := cli.MkdirAll(cfg.RemoteDir); err != nil {
		return fmt.Errorf("sftp: mkdir %s: %w", cfg.RemoteDir, err)
	}
	return uploadOne(cli, localPath, path.Join(cfg.RemoteDir, remoteFileName))
}

func dial(ctx context.Context, cfg Config) (*ssh.Client, error) {
	cb := ssh.InsecureIgnoreHostKey()
	if !cfg.InsecureIgnoreHostKey {
		// TODO: load known_hosts once the import host publishes a stable key.
		cb = ssh.InsecureIgnoreHostKey()
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         20 * time.Second,
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	type dialRes struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("sftp: dial error: %w", r.err)
		}
		return r.client, nil
	}
}

func uploadOne(cli *sftp.Client, localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("sftp: open local file: %w", err)
	}
	defer src.Close()

	dst, err := cli.Create(remotePath)
	if err != nil {
		return fmt.Errorf("sftp: create remote file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("sftp: upload copy: %w", err)
	}
	return nil
}
