package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"p12kdf/internal/config"
	"p12kdf/pkg/kdf"
)

var (
	configPath   = flag.String("config", "", "Path to profile configuration file")
	profileName  = flag.String("profile", "", "Named profile from the configuration file")
	kdfName      = flag.String("kdf", "pkcs12", "Derivation function (pkcs12, pbkdf2)")
	hashName     = flag.String("hash", "sha256", "Hash algorithm (md5, sha1, sha224, sha256, sha384, sha512)")
	iterations   = flag.Int("iterations", 2048, "Iteration count")
	keyLength    = flag.Int("length", 32, "Derived key length in bytes")
	purposeName  = flag.String("purpose", "key", "Derivation purpose (key, iv, mac); pkcs12 only")
	password     = flag.String("password", "", "Password (prefer -password-file or stdin)")
	passwordFile = flag.String("password-file", "", "Read the password from this file ('-' for stdin)")
	saltHex      = flag.String("salt", "", "Salt as a hex string")
	saltLength   = flag.Int("salt-length", 8, "Length of the generated salt when -salt is not given")
	logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	version      = flag.Bool("version", false, "Show version and exit")
)

const (
	toolVersion = "1.0.0"
	toolName    = "p12kdf"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s version %s\n", toolName, toolVersion)
		os.Exit(0)
	}

	if err := setupLogging(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	hash, iters, length, purpose := *hashName, *iterations, *keyLength, *purposeName
	genSaltLength := *saltLength

	// A named profile replaces the individual parameter flags.
	if *profileName != "" {
		if *configPath == "" {
			logrus.Fatal("-profile requires -config")
		}
		cfg, err := config.NewParser(*configPath).Load()
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load configuration")
		}
		profile, err := cfg.Profile(*profileName)
		if err != nil {
			logrus.WithError(err).Fatal("Unknown profile")
		}
		hash = profile.Hash
		iters = profile.Iterations
		length = profile.KeyLength
		purpose = profile.Purpose
		genSaltLength = profile.SaltLength

		logrus.WithFields(logrus.Fields{
			"profile":    profile.Name,
			"hash":       hash,
			"iterations": iters,
			"length":     length,
			"purpose":    purpose,
		}).Info("Profile loaded")
	}

	h, err := kdf.ParseHash(hash)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid hash algorithm")
	}

	pw, err := readPassword()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read password")
	}

	salt, generated, err := resolveSalt(genSaltLength)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to resolve salt")
	}
	if generated {
		logrus.WithField("salt", hex.EncodeToString(salt)).Info("Generated random salt")
	}

	var derived []byte
	switch strings.ToLower(*kdfName) {
	case "pkcs12":
		p, err := kdf.ParsePurpose(purpose)
		if err != nil {
			logrus.WithError(err).Fatal("Invalid purpose")
		}
		derived, err = kdf.Derive(h, pw, salt, iters, length, p)
		if err != nil {
			logrus.WithError(err).Fatal("Derivation failed")
		}
	case "pbkdf2":
		derived, err = kdf.PBKDF2(h, pw, salt, iters, length)
		if err != nil {
			logrus.WithError(err).Fatal("Derivation failed")
		}
	default:
		logrus.WithField("kdf", *kdfName).Fatal("Unknown derivation function")
	}

	logrus.WithFields(logrus.Fields{
		"kdf":        strings.ToLower(*kdfName),
		"hash":       h.String(),
		"iterations": iters,
		"length":     length,
	}).Debug("Derivation complete")

	fmt.Println(hex.EncodeToString(derived))
}

// setupLogging configures the logging system
func setupLogging(level string) error {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: false,
	})
	logrus.SetOutput(os.Stderr)

	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %s: %w", level, err)
	}

	logrus.SetLevel(parsedLevel)
	return nil
}

// readPassword picks the password source: -password-file (or stdin via '-'),
// then the -password flag.
func readPassword() ([]byte, error) {
	if *passwordFile == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read password from stdin: %w", err)
		}
		return trimNewline(data), nil
	}
	if *passwordFile != "" {
		data, err := os.ReadFile(*passwordFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read password file: %w", err)
		}
		return trimNewline(data), nil
	}
	return []byte(*password), nil
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

// resolveSalt decodes -salt, or generates a fresh random salt of the
// configured length when none is given.
func resolveSalt(length int) ([]byte, bool, error) {
	if *saltHex != "" {
		salt, err := hex.DecodeString(*saltHex)
		if err != nil {
			return nil, false, fmt.Errorf("invalid salt hex: %w", err)
		}
		return salt, false, nil
	}

	salt := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, false, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, true, nil
}
