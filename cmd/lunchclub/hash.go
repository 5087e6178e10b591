package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/lunchclub/internal/auth"
)

// hashPassword prints a bcrypt hash for auth.password_hash.
func (a *app) hashPassword(args []string) error {
	fs := a.newFlagSet("hash-password", "hash-password < password.txt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return errors.New("no password on stdin")
	}

	hash, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, hash)
	return err
}
