package main

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"syscall"
	"testing"
	"time"

	"aesdsocket/internal/config"
	"aesdsocket/internal/daemon"
	"aesdsocket/internal/testutil"
)

// helperEnv переключает тестовый бинарник в режим aesdsocket:
// "foreground" запускает run(nil), "daemon" запускает run([-d]).
// Дочерний процесс демона наследует переменную и попадает сюда же.
const helperEnv = "AESDSOCKET_TEST_HELPER"

const processTimeout = 10 * time.Second

var forkedPID = regexp.MustCompile(`Forked daemon process (\d+)\. Exiting`)

func TestHelperProcess(t *testing.T) {
	var args []string
	switch os.Getenv(helperEnv) {
	case "":
		return
	case "daemon":
		args = []string{"-d"}
	}
	os.Exit(run(args, os.Stderr))
}

type processFixture struct {
	addr     string
	dataFile string
	config   string
}

// newProcessFixture пишет конфиг со свободным портом и файлом данных
// во временном каталоге.
func newProcessFixture(t *testing.T) processFixture {
	t.Helper()

	free, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := free.Addr().(*net.TCPAddr).Port
	free.Close()

	dir := t.TempDir()
	fx := processFixture{
		addr:     net.JoinHostPort("127.0.0.1", strconv.Itoa(port)),
		dataFile: filepath.Join(dir, "aesdsocketdata"),
		config:   filepath.Join(dir, "aesdsocket.yaml"),
	}
	yaml := "port: " + strconv.Itoa(port) + "\n" +
		"data_file: " + strconv.Quote(fx.dataFile) + "\n" +
		"log:\n  level: debug\n  syslog: false\n"
	if err := os.WriteFile(fx.config, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	return fx
}

func (fx processFixture) command(t *testing.T, mode string, stderr io.Writer) *exec.Cmd {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command(exe, "-test.run=^TestHelperProcess$")
	cmd.Env = append(os.Environ(),
		helperEnv+"="+mode,
		config.EnvVar+"="+fx.config,
		daemon.EnvVar+"=",
	)
	cmd.Stderr = stderr
	return cmd
}

// exchange шлёт строку и читает ответ до закрытия соединения сервером.
// Пока процесс стартует, соединение может быть отклонено, поэтому
// dial повторяется.
func (fx processFixture) exchange(t *testing.T, msg string) string {
	t.Helper()
	var conn net.Conn
	testutil.Eventually(t, processTimeout, func() bool {
		var err error
		conn, err = net.DialTimeout("tcp", fx.addr, time.Second)
		return err == nil
	}, "dial %s", fx.addr)
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(processTimeout))
	if _, err := io.WriteString(conn, msg); err != nil {
		t.Fatalf("write %q: %v", msg, err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read reply to %q: %v", msg, err)
	}
	return string(reply)
}

func (fx processFixture) dataFileGone() bool {
	_, err := os.Stat(fx.dataFile)
	return errors.Is(err, os.ErrNotExist)
}

func TestForegroundSIGTERMExitsCleanly(t *testing.T) {
	fx := newProcessFixture(t)
	var stderr bytes.Buffer
	cmd := fx.command(t, "foreground", &stderr)
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	t.Cleanup(func() { cmd.Process.Kill() })

	if got := fx.exchange(t, "fg1\n"); got != "fg1\n" {
		t.Fatalf("expected %q, got %q", "fg1\n", got)
	}
	if got := fx.exchange(t, "fg2\n"); got != "fg1\nfg2\n" {
		t.Fatalf("expected %q, got %q", "fg1\nfg2\n", got)
	}
	if fx.dataFileGone() {
		t.Fatal("data file must exist while the server runs")
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	if err := testutil.RequireReceive(t, exited, processTimeout, "exit after SIGTERM"); err != nil {
		t.Fatalf("expected exit %d, got %v\n%s", exitOK, err, stderr.String())
	}
	if !fx.dataFileGone() {
		t.Fatal("data file must be removed on SIGTERM")
	}
	if !bytes.Contains(stderr.Bytes(), []byte("Caught signal, exiting")) {
		t.Fatalf("expected shutdown log, got:\n%s", stderr.String())
	}
}

func TestDaemonChildServesAndExitsOnSIGTERM(t *testing.T) {
	fx := newProcessFixture(t)
	var stderr bytes.Buffer
	cmd := fx.command(t, "daemon", &stderr)

	// Родитель выходит сразу после fork.
	if err := cmd.Run(); err != nil {
		t.Fatalf("expected parent exit %d, got %v\n%s", exitOK, err, stderr.String())
	}
	m := forkedPID.FindSubmatch(stderr.Bytes())
	if m == nil {
		t.Fatalf("parent did not report the child pid:\n%s", stderr.String())
	}
	pid, err := strconv.Atoi(string(m[1]))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { syscall.Kill(pid, syscall.SIGKILL) })

	// Сокет привязал родитель, принимает уже потомок.
	if got := fx.exchange(t, "d1\n"); got != "d1\n" {
		t.Fatalf("expected %q, got %q", "d1\n", got)
	}
	if got := fx.exchange(t, "d2\n"); got != "d1\nd2\n" {
		t.Fatalf("expected %q, got %q", "d1\nd2\n", got)
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	testutil.Eventually(t, processTimeout, fx.dataFileGone, "data file removed by daemon %d", pid)
	testutil.Eventually(t, processTimeout, func() bool {
		conn, err := net.DialTimeout("tcp", fx.addr, time.Second)
		if err != nil {
			return true
		}
		conn.Close()
		return false
	}, "daemon %d stops listening", pid)
}
