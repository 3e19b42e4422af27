package offload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// dialTimeout bounds connecting to a remote sink.
const dialTimeout = 30 * time.Second

// Auth holds remote sink credentials. A zero Port selects the protocol
// default. KnownHosts names an OpenSSH known_hosts file used to verify the
// SFTP server; when empty any host key is accepted.
type Auth struct {
	Host       string
	Port       int
	User       string
	Password   string
	KnownHosts string
}

func (a Auth) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if a.KnownHosts == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(a.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("offload: known_hosts: %w", err)
	}
	return cb, nil
}

func (a Auth) addr(defaultPort int) string {
	port := a.Port
	if port == 0 {
		port = defaultPort
	}
	return fmt.Sprintf("%s:%d", a.Host, port)
}

// NewSink creates a sink of the given kind ("local", "sftp" or "ftp")
// storing files under target. Remote sinks connect on first use.
func NewSink(kind, target string, auth *Auth) (Sink, error) {
	switch kind {
	case "local":
		if target == "" {
			return nil, fmt.Errorf("offload: local sink needs a target directory")
		}
		return &LocalSink{Dir: target}, nil
	case "sftp", "ftp":
		if auth == nil || auth.Host == "" {
			return nil, fmt.Errorf("offload: %s sink needs a host", kind)
		}
		if kind == "sftp" {
			return &SFTPSink{Auth: *auth, Dir: target}, nil
		}
		return &FTPSink{Auth: *auth, Dir: target}, nil
	}
	return nil, fmt.Errorf("offload: unknown sink %q", kind)
}

// checkName rejects names that would leave the target directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("offload: invalid file name %q", name)
	}
	return nil
}

// LocalSink stores files in a directory of the host filesystem.
type LocalSink struct {
	Dir string
}

// Put writes the file, creating Dir if needed. An existing file is replaced.
func (l *LocalSink) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return err
	}

	final := filepath.Join(l.Dir, name)
	tmp, err := os.CreateTemp(l.Dir, "."+name+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if n != size {
		return fmt.Errorf("offload: %s: wrote %d of %d bytes", name, n, size)
	}
	return os.Rename(tmp.Name(), final)
}

// Close implements Sink.
func (l *LocalSink) Close() error {
	return nil
}

// SFTPSink stores files on an SSH server with password authentication.
type SFTPSink struct {
	Auth Auth
	Dir  string

	mu      sync.Mutex
	sshConn *ssh.Client
	client  *sftp.Client
}

func (s *SFTPSink) connect() error {
	if s.client != nil {
		return nil
	}

	hostKey, err := s.Auth.hostKeyCallback()
	if err != nil {
		return err
	}
	config := &ssh.ClientConfig{
		User: s.Auth.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(s.Auth.Password),
		},
		HostKeyCallback: hostKey,
		Timeout:         dialTimeout,
	}

	conn, err := ssh.Dial("tcp", s.Auth.addr(22), config)
	if err != nil {
		return fmt.Errorf("offload: ssh dial %s: %w", s.Auth.Host, err)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("offload: sftp session: %w", err)
	}

	s.sshConn = conn
	s.client = client
	return nil
}

// Put uploads the file, creating Dir if needed.
func (s *SFTPSink) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connect(); err != nil {
		return err
	}
	if s.Dir != "" {
		if err := s.client.MkdirAll(s.Dir); err != nil {
			return err
		}
	}

	f, err := s.client.Create(path.Join(s.Dir, name))
	if err != nil {
		s.reset()
		return err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.reset()
		return err
	}
	if n != size {
		return fmt.Errorf("offload: %s: uploaded %d of %d bytes", name, n, size)
	}
	return nil
}

// reset drops the connection so the next Put reconnects.
func (s *SFTPSink) reset() {
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
	if s.sshConn != nil {
		s.sshConn.Close()
		s.sshConn = nil
	}
}

// Close implements Sink.
func (s *SFTPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// FTPSink stores files on an FTP server.
type FTPSink struct {
	Auth Auth
	Dir  string

	mu   sync.Mutex
	conn *ftp.ServerConn
}

func (f *FTPSink) connect() error {
	if f.conn != nil {
		return nil
	}

	c, err := ftp.Dial(f.Auth.addr(21), ftp.DialWithTimeout(dialTimeout))
	if err != nil {
		return fmt.Errorf("offload: ftp dial %s: %w", f.Auth.Host, err)
	}
	if err := c.Login(f.Auth.User, f.Auth.Password); err != nil {
		c.Quit()
		return fmt.Errorf("offload: ftp login: %w", err)
	}

	f.conn = c
	return nil
}

// makeDirs creates Dir one level at a time. Existing levels make MakeDir
// fail, so errors are ignored; Stor reports a missing directory.
func (f *FTPSink) makeDirs() {
	var dirs []string
	for cur := path.Clean(f.Dir); cur != "." && cur != "/" && cur != ""; cur = path.Dir(cur) {
		dirs = append(dirs, cur)
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = f.conn.MakeDir(dirs[i])
	}
}

// Put uploads the file, creating Dir if needed.
func (f *FTPSink) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.connect(); err != nil {
		return err
	}
	f.makeDirs()

	if err := f.conn.Stor(path.Join(f.Dir, name), r); err != nil {
		f.conn.Quit()
		f.conn = nil
		return fmt.Errorf("offload: ftp store %s: %w", name, err)
	}
	return nil
}

// Close implements Sink.
func (f *FTPSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn == nil {
		return nil
	}
	err := f.conn.Quit()
	f.conn = nil
	return err
}
