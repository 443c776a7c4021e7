// Package daemon уводит сервер в фон после bind.
//
// fork(2) в многопоточном рантайме Go небезопасен, поэтому «форк»
// сделан перезапуском собственного бинарника: дочерний процесс получает
// уже привязанный сокет как fd 3 и метку в окружении, родитель выходит.
package daemon

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"syscall"
)

// EnvVar — метка дочернего процесса.
const EnvVar = "AESDSOCKET_DAEMON"

// listenerFD — первый из ExtraFiles всегда получает номер 3.
const listenerFD = 3

// IsChild сообщает, что процесс запущен через Detach.
func IsChild() bool {
	return os.Getenv(EnvVar) == "1"
}

type fileListener interface {
	File() (*os.File, error)
}

// Detach запускает копию текущего процесса с теми же аргументами
// и передаёт ей ln. Возвращает pid потомка. ln в родителе остаётся открытым.
func Detach(ln net.Listener) (int, error) {
	fl, ok := ln.(fileListener)
	if !ok {
		return 0, fmt.Errorf("daemon: listener %T cannot be passed to a child", ln)
	}
	f, err := fl.File()
	if err != nil {
		return 0, fmt.Errorf("daemon: dup listener: %w", err)
	}
	defer f.Close()

	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("daemon: resolve executable: %w", err)
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), EnvVar+"=1")
	cmd.ExtraFiles = []*os.File{f}
	// Stdin/Stdout/Stderr == nil → /dev/null
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("daemon: start child: %w", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("daemon: release child: %w", err)
	}
	return pid, nil
}

// InheritedListener восстанавливает сокет, переданный родителем.
func InheritedListener() (net.Listener, error) {
	if !IsChild() {
		return nil, errors.New("daemon: not a detached child")
	}
	f := os.NewFile(listenerFD, "aesdsocket-listener")
	if f == nil {
		return nil, errors.New("daemon: inherited descriptor is invalid")
	}
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("daemon: inherited listener: %w", err)
	}
	return ln, nil
}
