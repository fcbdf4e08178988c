// ABOUTME: Admin CLI for liftlog user and exercise management
// ABOUTME: Operates directly on the SQLite database, bypassing the HTTP API

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/liftlog/liftlog/internal/auth"
	"github.com/liftlog/liftlog/internal/config"
	"github.com/liftlog/liftlog/internal/store"
)

const banner = `
 _ _  __ _   _                          _           _
| (_)/ _| |_| | ___   __ _        __ _  __| |_ __ ___ (_)_ __
| | | |_| __| |/ _ \ / _' |_____ / _' |/ _' | '_ ' _ \| | '_ \
| | |  _| |_| | (_) | (_| |_____| (_| | (_| | | | | | | | | | |
|_|_|_|  \__|_|\___/ \__, |      \__,_|\__,_|_| |_| |_|_|_| |_|
                     |___/
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "user":
		err = cmdUser(ctx, args)
	case "exercise":
		err = cmdExercise(ctx, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: liftlog-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  user list                       List all users")
	fmt.Println("  user create <name> [roles...]   Create a user (default role: USER)")
	fmt.Println("  user passwd <name>              Reset a user's password")
	fmt.Println("  user roles <name> <roles...>    Replace a user's roles")
	fmt.Println("  user enable <name>              Enable a user")
	fmt.Println("  user disable <name>             Disable a user")
	fmt.Println("  user delete <name>              Delete a user")
	fmt.Println("  exercise list                   List the exercise catalog")
	fmt.Println("  exercise add <name> [group]     Add an exercise to the catalog")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  LIFTLOG_CONFIG    Config file path (default: ~/.config/liftlog/liftlog.yaml)")
	fmt.Println("  LIFTLOG_DB        SQLite database path (overrides config)")
}

// openStore resolves the database path from LIFTLOG_DB or the config file.
func openStore() (*store.SQLiteStore, error) {
	if dbPath := os.Getenv("LIFTLOG_DB"); dbPath != "" {
		return store.NewSQLiteStore(dbPath)
	}

	configPath := os.Getenv("LIFTLOG_CONFIG")
	if configPath == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolving config path: %w", err)
			}
			configDir = filepath.Join(homeDir, ".config")
		}
		configPath = filepath.Join(configDir, "liftlog", "liftlog.yaml")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return store.NewSQLiteStore(cfg.Database.Path)
}

func cmdUser(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: liftlog-admin user <list|create|passwd|roles|enable|disable|delete>")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	switch args[0] {
	case "list":
		return userList(ctx, st)
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: liftlog-admin user create <name> [roles...]")
		}
		return userCreate(ctx, st, args[1], args[2:])
	case "passwd":
		if len(args) != 2 {
			return fmt.Errorf("usage: liftlog-admin user passwd <name>")
		}
		return userPasswd(ctx, st, args[1])
	case "roles":
		if len(args) < 3 {
			return fmt.Errorf("usage: liftlog-admin user roles <name> <roles...>")
		}
		return userSetRoles(ctx, st, args[1], args[2:])
	case "enable":
		if len(args) != 2 {
			return fmt.Errorf("usage: liftlog-admin user enable <name>")
		}
		return userSetEnabled(ctx, st, args[1], true)
	case "disable":
		if len(args) != 2 {
			return fmt.Errorf("usage: liftlog-admin user disable <name>")
		}
		return userSetEnabled(ctx, st, args[1], false)
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: liftlog-admin user delete <name>")
		}
		return userDelete(ctx, st, args[1])
	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

func userList(ctx context.Context, st store.Store) error {
	users, err := st.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tROLES\tENABLED\tCREATED")
	for _, u := range users {
		enabled := "yes"
		if !u.Enabled {
			enabled = color.YellowString("no")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			u.Username,
			strings.Join(u.Roles, ","),
			enabled,
			u.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

func userCreate(ctx context.Context, st store.Store, username string, roles []string) error {
	if len(roles) == 0 {
		roles = []string{"USER"}
	}
	for i, r := range roles {
		roles[i] = strings.ToUpper(strings.TrimSpace(r))
	}

	password := uuid.NewString()
	hasher := auth.BcryptHasher{}
	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	err = st.CreateUser(ctx, &store.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Roles:        roles,
		Enabled:      true,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("user %q already exists", username)
		}
		return fmt.Errorf("creating user: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Created user %s", username)
	fmt.Printf(" with roles %s\n", strings.Join(roles, ","))
	fmt.Println("Initial password (shown once):")
	fmt.Printf("  %s\n", password)
	return nil
}

func userPasswd(ctx context.Context, st store.Store, username string) error {
	password := uuid.NewString()
	hasher := auth.BcryptHasher{}
	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := st.SetUserPassword(ctx, username, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return fmt.Errorf("setting password: %w", err)
	}

	fmt.Printf("New password for %s (shown once):\n", username)
	fmt.Printf("  %s\n", password)
	return nil
}

func userSetRoles(ctx context.Context, st store.Store, username string, roles []string) error {
	for i, r := range roles {
		roles[i] = strings.ToUpper(strings.TrimSpace(r))
	}

	if err := st.SetUserRoles(ctx, username, roles); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return fmt.Errorf("setting roles: %w", err)
	}

	fmt.Printf("Roles for %s set to %s\n", username, strings.Join(roles, ","))
	fmt.Println("Note: tokens issued before this change keep their old roles until they expire.")
	return nil
}

func userSetEnabled(ctx context.Context, st store.Store, username string, enabled bool) error {
	if err := st.SetUserEnabled(ctx, username, enabled); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return fmt.Errorf("updating user: %w", err)
	}

	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Printf("User %s %s\n", username, state)
	return nil
}

func userDelete(ctx context.Context, st store.Store, username string) error {
	if err := st.DeleteUser(ctx, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return fmt.Errorf("deleting user: %w", err)
	}

	fmt.Printf("Deleted user %s\n", username)
	return nil
}

func cmdExercise(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: liftlog-admin exercise <list|add>")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	switch args[0] {
	case "list":
		exercises, err := st.ListExercises(ctx)
		if err != nil {
			return fmt.Errorf("listing exercises: %w", err)
		}
		if len(exercises) == 0 {
			fmt.Println("No exercises.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tMUSCLE GROUP\tID")
		for _, e := range exercises {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.MuscleGroup, e.ID)
		}
		return w.Flush()

	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: liftlog-admin exercise add <name> [group]")
		}
		group := ""
		if len(args) >= 3 {
			group = args[2]
		}
		ex := &store.Exercise{
			ID:          uuid.NewString(),
			Name:        args[1],
			MuscleGroup: group,
		}
		if err := st.CreateExercise(ctx, ex); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("exercise %q already exists", args[1])
			}
			return fmt.Errorf("creating exercise: %w", err)
		}
		color.Green("Added exercise %s\n", args[1])
		return nil

	default:
		return fmt.Errorf("unknown exercise subcommand: %s", args[0])
	}
}
