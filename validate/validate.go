// Command validate provides a small CLI that validates the bot's
// deployment files before it is started. It checks:
//   - The .env file: all TTT_* values parse, the port is usable, durations
//     are positive, and the poll interval is not longer than the time limit
//   - The channel allow-list JSON: structure, empty IDs, duplicates
//   - Unknown TTT_* keys that a typo would otherwise silently ignore
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// channelsFile mirrors the allow-list JSON schema.
type channelsFile struct {
	Channels []string `json:"channels"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

var knownKeys = map[string]bool{
	"TTT_HOST":             true,
	"TTT_PORT":             true,
	"TTT_TIME_LIMIT":       true,
	"TTT_POLL_INTERVAL":    true,
	"TTT_COMMAND_COOLDOWN": true,
	"TTT_CHANNELS_FILE":    true,
	"TTT_DEBUG":            true,
	"NGROK_AUTHTOKEN":      true,
}

// validateEnvFile loads and validates a .env file. A missing file is valid:
// every setting has a default.
func validateEnvFile(path string) ValidationResult {
	result := ValidationResult{
		File:   path,
		Valid:  true,
		Errors: []string{},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		result.Errors = append(result.Errors, "file missing, defaults apply")
		return result
	}

	env, err := godotenv.Read(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to parse: %v", err))
		return result
	}

	for key := range env {
		if strings.HasPrefix(key, "TTT_") && !knownKeys[key] {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Unknown setting %s (typo?)", key))
		}
	}

	if port, ok := env["TTT_PORT"]; ok {
		if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("TTT_PORT must be a port number, got %q", port))
		}
	}

	durations := map[string]time.Duration{}
	for _, key := range []string{"TTT_TIME_LIMIT", "TTT_POLL_INTERVAL", "TTT_COMMAND_COOLDOWN"} {
		raw, ok := env[key]
		if !ok {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s is not a duration: %q", key, raw))
			continue
		}
		if d <= 0 && key != "TTT_COMMAND_COOLDOWN" {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s must be positive, got %s", key, d))
		}
		durations[key] = d
	}

	if limit, ok := durations["TTT_TIME_LIMIT"]; ok {
		if poll, ok := durations["TTT_POLL_INTERVAL"]; ok && poll > limit {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("TTT_POLL_INTERVAL (%s) exceeds TTT_TIME_LIMIT (%s), games would expire late", poll, limit))
		}
	}

	if debug, ok := env["TTT_DEBUG"]; ok {
		if _, err := strconv.ParseBool(debug); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("TTT_DEBUG must be a boolean, got %q", debug))
		}
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ %d settings", len(env)))
	}

	return result
}

// validateChannelsFile loads and validates the channel allow-list. A
// missing file is valid: the bot accepts every channel.
func validateChannelsFile(path string) ValidationResult {
	result := ValidationResult{
		File:   path,
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		result.Errors = append(result.Errors, "file missing, all channels accepted")
		return result
	}
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var file channelsFile
	if err := json.Unmarshal(data, &file); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	seen := map[string]bool{}
	for i, id := range file.Channels {
		if id == "" {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Empty channel ID at index %d", i))
			continue
		}
		if seen[id] {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Duplicate channel ID %q", id))
		}
		seen[id] = true
	}

	if result.Valid {
		if len(file.Channels) == 0 {
			result.Errors = append(result.Errors, "✓ empty list, all channels accepted")
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ %d channels", len(file.Channels)))
		}
	}

	return result
}

func main() {
	envPath := ".env"
	channelsPath := "channels.json"
	if len(os.Args) > 1 {
		envPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		channelsPath = os.Args[2]
	}

	results := []ValidationResult{
		validateEnvFile(envPath),
		validateChannelsFile(channelsPath),
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ Configuration is valid!")
	} else {
		fmt.Println("❌ Configuration has errors")
		os.Exit(1)
	}
}
