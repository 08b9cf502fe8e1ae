package app

import (
	"bufio"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	DefaultAuthFile = "auth.secret"
	AuthRealm       = "Holiday Lookup Admin"
)

// Argon2id parameters (OWASP recommended)
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

var (
	ErrHashFormat    = errors.New("invalid hash format")
	ErrNotArgon2id   = errors.New("not an argon2id hash")
	ErrAuthFileEntry = errors.New("invalid auth file format (expected: username:hash)")
)

// Credentials guard the admin endpoints. A nil Hash disables authentication.
type Credentials struct {
	User string
	Hash []byte
	File string
}

// Admin holds the loaded admin credentials
var Admin Credentials

// AuthFilePath returns AUTH_FILE or auth.secret next to the binary
func AuthFilePath() (string, error) {
	if path := os.Getenv("AUTH_FILE"); path != "" {
		return path, nil
	}
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(execPath), DefaultAuthFile), nil
}

// LoadAuthCredentials reads username:hash from path into Admin. A missing
// file leaves the refresh endpoint unprotected and logs a warning.
func LoadAuthCredentials(path string) error {
	Admin = Credentials{File: path}

	// Try to read auth file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			Logger.Warnf("⚠️  No auth file found at %s: POST /api/refresh is UNPROTECTED (run '%s hash-password' to create one)", path, AppName)
			return nil
		}
		return fmt.Errorf("failed to read auth file: %w", err)
	}

	// Parse auth file (format: username:hash)
	user, hash, ok := strings.Cut(strings.TrimSpace(string(data)), ":")
	if !ok || user == "" || hash == "" {
		return ErrAuthFileEntry
	}

	Admin.User = user
	Admin.Hash = []byte(hash)
	Logger.Infof("✅ Basic Auth enabled for admin endpoints (user: %s, file: %s)", user, path)
	return nil
}

// HashPassword creates an Argon2id hash of the password encoded as
// $argon2id$v=19$m=65536,t=1,p=4$salt$hash
func HashPassword(password string) (string, error) {
	// Generate random salt
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	// Hash password with Argon2id
	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword verifies a password against an Argon2id hash
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, ErrHashFormat
	}
	if parts[1] != "argon2id" {
		return false, ErrNotArgon2id
	}

	// Parse parameters
	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("failed to parse hash parameters: %w", err)
	}

	// Decode salt and hash
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	// Hash the provided password with same parameters
	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// RequireAuth enforces Basic Auth against Admin
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// no auth file loaded (dev mode)
		if Admin.Hash == nil {
			next(w, r)
			return
		}

		// Get credentials from request
		user, pass, ok := r.BasicAuth()
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(Admin.User)) == 1

		passMatch := false
		if ok && userMatch {
			var err error
			// Verify password with Argon2id
			passMatch, err = VerifyPassword(pass, string(Admin.Hash))
			if err != nil {
				Logger.Errorf("Error verifying password: %v", err)
			}
		}

		if !ok || !userMatch || !passMatch {
			w.Header().Set("WWW-Authenticate", `Basic realm="`+AuthRealm+`"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			Logger.Warnf("⚠️  Failed auth attempt from %s (user: %s)", r.RemoteAddr, user)
			return
		}

		next(w, r)
	}
}

// CreateAuthFile writes username:hash to path with mode 0400. Without
// overwrite an existing file is only replaced after confirmation on stdin.
func CreateAuthFile(path, username, password string, overwrite bool) error {
	// Check if file exists
	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			fmt.Printf("Auth file already exists: %s\n", path)
			fmt.Print("Overwrite? (y/N): ")
			response, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				return fmt.Errorf("aborted")
			}
		}
		// the file is read-only, so replace rather than truncate
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing auth file: %w", err)
		}
	}

	// Hash password
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := os.WriteFile(path, []byte(username+":"+hash+"\n"), 0400); err != nil {
		return fmt.Errorf("failed to write auth file: %w", err)
	}

	fmt.Printf("✅ Auth file created: %s (mode: 0400 read-only)\n", path)
	fmt.Printf("   Username: %s\n", username)
	return nil
}
