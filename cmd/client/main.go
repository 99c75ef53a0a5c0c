// Package main runs the interactive account shell for the habit
// tracker. It restores the session from the state file, verifies it
// against the server, and accepts identity commands.
package main

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matthewvu2719/Journey-sub002/internal/client/api"
	"github.com/matthewvu2719/Journey-sub002/internal/client/session"
	"github.com/matthewvu2719/Journey-sub002/internal/client/store"
	"github.com/matthewvu2719/Journey-sub002/internal/config"
	"github.com/matthewvu2719/Journey-sub002/internal/logger"
	"github.com/matthewvu2719/Journey-sub002/internal/models"
)

const requestTimeout = 10 * time.Second

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop, accepting account commands.
func repl(mgr *session.Manager) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("journey> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, login <email>, signup <email> [name], guest, whoami, logout, exit")
		case "login":
			if len(args) < 2 {
				fmt.Println("Usage: login <email>")
				continue
			}
			password := promptPassword(scanner)
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			u, err := mgr.Login(ctx, args[1], password)
			cancel()
			if err != nil {
				fmt.Println(session.DisplayMessage(err))
				continue
			}
			fmt.Printf("Logged in as %s\n", describe(u))
		case "signup":
			if len(args) < 2 {
				fmt.Println("Usage: signup <email> [name]")
				continue
			}
			name := ""
			if len(args) > 2 {
				name = strings.Join(args[2:], " ")
			}
			password := promptPassword(scanner)
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			u, err := mgr.SignUp(ctx, args[1], password, name)
			cancel()
			if err != nil {
				fmt.Println(session.DisplayMessage(err))
				continue
			}
			fmt.Printf("Account created for %s\n", describe(u))
		case "guest":
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			u, err := mgr.GuestLogin(ctx)
			cancel()
			if err != nil {
				fmt.Println(session.DisplayMessage(err))
				continue
			}
			fmt.Printf("Continuing as guest (%s)\n", u.ID)
		case "whoami":
			snap := mgr.Snapshot()
			switch {
			case !snap.IsAuthenticated():
				fmt.Println("Not signed in")
			case snap.IsGuest():
				fmt.Printf("Guest account %s\n", snap.User.ID)
			default:
				fmt.Printf("Signed in as %s\n", describe(snap.User))
			}
		case "logout":
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			err := mgr.Logout(ctx)
			cancel()
			if err != nil {
				fmt.Println(session.DisplayMessage(err))
				continue
			}
			fmt.Println("Signed out")
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// promptPassword reads a password line from stdin.
func promptPassword(scanner *bufio.Scanner) string {
	fmt.Print("Password: ")
	scanner.Scan()
	return strings.TrimSpace(scanner.Text())
}

// describe renders a user for shell output.
func describe(u *models.User) string {
	email := "(no email)"
	if u.Email != nil {
		email = *u.Email
	}
	if u.Name != nil {
		return fmt.Sprintf("%s <%s>", *u.Name, email)
	}
	return email
}

// main parses configuration, restores the session and starts the shell.
func main() {
	options := config.Parse()

	fmt.Printf("Journey Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))

	lg := logger.New()
	defer func() { _ = lg.Log.Sync() }()
	if err := lg.Init(options.LogLevel); err != nil {
		log.Fatal(err)
	}

	stateDir := options.StateDir
	if stateDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			log.Fatal(err)
		}
		stateDir = filepath.Join(configDir, "journey")
	}

	kv, err := store.Open(filepath.Join(stateDir, "state.json"))
	if err != nil {
		log.Fatal(err)
	}

	authAPI := api.New(options.ServerURL, requestTimeout)
	mgr := session.NewManager(authAPI, kv, lg.Log)

	// Restore and verify the previous session before taking commands.
	mgr.Bootstrap(context.Background())
	if snap := mgr.Snapshot(); snap.IsAuthenticated() {
		fmt.Printf("Welcome back, %s\n", describe(snap.User))
	}

	repl(mgr)
}
