// Command cmsuser manages CMS sign-in credentials: it stores bcrypt password
// hashes in the YAML credentials file, or in PostgreSQL when -d is given.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/atinyakov/gophcms/internal/config"
	"github.com/atinyakov/gophcms/internal/db"
	"github.com/atinyakov/gophcms/internal/repository"
	"github.com/atinyakov/gophcms/internal/service"
)

var (
	version   string
	buildDate string
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run parses args and dispatches to the set or check commands. Passwords are
// read from in, one per line.
func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	_, usersFile := config.Paths(os.Getenv("APP_ENV"))

	var (
		cmd       string
		login     string
		dsn       string
		usersPath string
		showVer   bool
	)

	fs := flag.NewFlagSet("cmsuser", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&cmd, "cmd", "", "command: set | check")
	fs.StringVar(&login, "login", "", "username")
	fs.StringVar(&dsn, "d", "", "postgres DSN (optional)")
	fs.StringVar(&usersPath, "users", usersFile, "YAML credentials file")
	fs.BoolVar(&showVer, "version", false, "show build version and date")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		fmt.Fprintf(out, "CMS user tool\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return nil
	}
	if login == "" {
		return errors.New("please provide -login=username")
	}

	var repo service.AuthRepository
	if dsn != "" {
		postgresDB, err := db.InitPostgres(dsn)
		if err != nil {
			return err
		}
		defer postgresDB.Close()
		repo = repository.NewPostgresAuthRepository(postgresDB)
	} else {
		repo = repository.NewFileAuthRepository(usersPath)
	}
	auth := service.NewAuthService(repo)

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "Enter password: ")
	scanner.Scan()
	password := strings.TrimRight(scanner.Text(), "\r")

	switch cmd {
	case "set":
		if err := auth.SetPassword(ctx, login, password); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nPassword for %s saved\n", login)
	case "check":
		ok, err := auth.Verify(ctx, login, password)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("invalid credentials")
		}
		fmt.Fprintln(out, "\nCredentials OK")
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
	return nil
}
