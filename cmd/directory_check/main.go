package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"school-auth/internal/config"
	"school-auth/internal/directory"
	"school-auth/internal/domain"
)

// directory_check resuelve emails contra el directorio escolar sin escribir nada.
// Uso: directory_check [-timeout 15s] email...  (sin argumentos lee emails de stdin)
func main() {
	timeout := flag.Duration("timeout", 15*time.Second, "timeout por consulta")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadDirectoryConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	resolver, studentDB, err := directory.Build(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	if studentDB != nil {
		defer studentDB.Close()
	}

	emails := flag.Args()
	if len(emails) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				emails = append(emails, line)
			}
		}
	}

	failed := false
	for _, addr := range emails {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		person, err := resolver.Resolve(ctx, strings.TrimSpace(addr))
		cancel()
		switch {
		case err == nil:
			printPerson(addr, person)
		case errors.Is(err, directory.ErrNotFound):
			fmt.Printf("%s\tnot found\n", addr)
		default:
			failed = true
			fmt.Printf("%s\tunavailable: %v\n", addr, err)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func printPerson(addr string, p domain.Person) {
	fmt.Printf("%s\t%s\t%s\t%s", addr, p.Role, p.ExternalID, p.DisplayName)
	if len(p.LeaderClasses) > 0 {
		fmt.Printf("\tclasses=%s", strings.Join(p.LeaderClasses, ","))
	}
	fmt.Println()
}
