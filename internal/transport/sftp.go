// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transport moves the feed document and its exports over SFTP.
//
// The engine itself never touches the network: this package hands it the
// downloaded text and writes its output back. Connection, auth, and
// path-discovery concerns live here.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/pdiddy/bifeed/pkg/types"
)

// Client is an open SFTP session against the feed drop.
type Client struct {
	conn *ssh.Client
	sftp *sftp.Client
}

// Connect opens an SFTP session using password auth. Host keys are not
// verified, matching the posture of the legacy job this replaces; the
// drop lives on a private marketing-cloud endpoint.
func Connect(cfg types.TransportConfig) (*Client, error) {
	port := cfg.Port
	if port == 0 {
		port = 22
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, port)
	conn, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("starting sftp subsystem: %w", err)
	}

	return &Client{conn: conn, sftp: client}, nil
}

// Close releases the SFTP session and the underlying SSH connection.
func (c *Client) Close() error {
	c.sftp.Close()
	return c.conn.Close()
}

// Download reads the remote file and returns its contents as text.
// Invalid UTF-8 sequences are replaced rather than failing the run; the
// feed occasionally carries stray bytes.
func (c *Client) Download(remotePath string) (string, error) {
	f, err := c.sftp.Open(remotePath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", remotePath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return "", fmt.Errorf("downloading %s: %w", remotePath, err)
	}
	return strings.ToValidUTF8(buf.String(), "�"), nil
}

// Upload writes content to remotePath, creating parent directories
// best-effort. Some drops pre-create the directory tree with permissions
// that reject MkdirAll; the subsequent write decides success.
func (c *Client) Upload(remotePath, content string) error {
	if dir := path.Dir(remotePath); dir != "." && dir != "/" {
		_ = c.sftp.MkdirAll(dir)
	}

	f, err := c.sftp.Create(remotePath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", remotePath, err)
	}
	defer f.Close()

	if _, err := f.Write([]byte(content)); err != nil {
		return fmt.Errorf("uploading %s: %w", remotePath, err)
	}
	return nil
}
