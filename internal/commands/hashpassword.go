package commands

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/klabast/wb-services/holiday-lookup/internal/app"
)

// HashPassword handles the hash-password subcommand
func HashPassword(args []string) {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	overwrite := fs.Bool("overwrite", false, "Overwrite existing auth file without asking")
	insecureUnmask := fs.Bool("insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s hash-password [OPTIONS]\n\n", app.AppName)
		fmt.Fprintf(os.Stderr, "Creates the auth file guarding POST /api/refresh (Argon2id).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  AUTH_FILE    Path to auth file (default: auth.secret next to the binary)\n")
	}
	_ = fs.Parse(args)

	path, err := app.AuthFilePath()
	if err != nil {
		fatalf("Error: %v\n", err)
	}

	// Prompt for username
	fmt.Print("Enter username: ")
	var username string
	if _, err := fmt.Scanln(&username); err != nil {
		fatalf("Error reading username: %v\n", err)
	}
	if username == "" {
		fatalf("Username cannot be empty\n")
	}

	// Prompt for password
	var password, confirm string
	if *insecureUnmask {
		// Plain text mode (insecure!)
		fmt.Fprintf(os.Stderr, "⚠️  WARNING: Password will be visible on screen!\n")
		password = readLine("Enter password:   ")
		confirm = readLine("Confirm password: ")
	} else {
		// Masked mode with asterisks
		password = readPasswordWithMask("Enter password:   ")
		confirm = readPasswordWithMask("Confirm password: ")
	}

	if password == "" {
		fatalf("Password cannot be empty\n")
	}
	if password != confirm {
		fatalf("Passwords do not match\n")
	}

	// Create auth file
	if err := app.CreateAuthFile(path, username, password, *overwrite); err != nil {
		fatalf("Error: %v\n", err)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func readLine(prompt string) string {
	fmt.Print(prompt)
	var s string
	if _, err := fmt.Scanln(&s); err != nil {
		fatalf("Error reading input: %v\n", err)
	}
	return s
}

// readPasswordWithMask reads a password in raw mode and echoes asterisks
func readPasswordWithMask(prompt string) string {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())

	// Set terminal to raw mode
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// not a terminal we can switch to raw mode; read hidden instead
		password, _ := term.ReadPassword(fd)
		fmt.Println()
		return string(password)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	var password []rune
	reader := bufio.NewReader(os.Stdin)
	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			break
		}

		// Handle different key presses
		switch char {
		case '\n', '\r':
			fmt.Print("\r\n")
			return string(password)
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Print("\b \b")
			}
		case 3: // Ctrl+C
			_ = term.Restore(fd, oldState)
			fmt.Println()
			os.Exit(1)
		default:
			// Only accept printable characters
			if char >= 32 && char != 127 {
				password = append(password, char)
				fmt.Print("*")
			}
		}
	}

	fmt.Print("\r\n")
	return string(password)
}
