package config

import (
	"bufio"
	"os"
	"strings"
)

// LoadDotenv loads KEY=VALUE pairs from an elicit .env file into the
// process environment. This is how provider API keys (OPENAI_API_KEY,
// ANTHROPIC_API_KEY, ...) reach the ${{ .Env.* }} templates in the
// models config without living in the config file itself. Variables
// already present in the environment always win over file values, and
// a missing file is not an error.
func LoadDotenv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseDotenvLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// parseDotenvLine splits one line into a key/value pair. Blank lines,
// comments and lines without "=" report ok=false. An optional leading
// "export " is accepted so a .env file can double as a shell script.
func parseDotenvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	key, value, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}

	key = strings.TrimSpace(key)
	value = stripQuotes(strings.TrimSpace(value))
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

// stripQuotes removes matching surrounding quotes (single or double).
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
