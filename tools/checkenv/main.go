// Command checkenv reports which trendwire settings are set in the
// environment or a .env file.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var settings = []string{
	"TRENDWIRE_DB_DRIVER",
	"TRENDWIRE_DB_DSN",
	"TRENDWIRE_ADMIN_TOKEN",
	"DISCORD_TOKEN",
	"DISCORD_CHANNEL_ID",
	"OPENAI_API_KEY",
}

func main() {
	path := ".env"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			fmt.Printf("Error loading %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %s\n", path)
	}

	for _, key := range settings {
		if os.Getenv(key) != "" {
			fmt.Printf("%-24s set\n", key)
		} else {
			fmt.Printf("%-24s not set\n", key)
		}
	}

	var problems []string
	if (os.Getenv("DISCORD_TOKEN") == "") != (os.Getenv("DISCORD_CHANNEL_ID") == "") {
		problems = append(problems, "DISCORD_TOKEN and DISCORD_CHANNEL_ID must be set together")
	}
	switch d := os.Getenv("TRENDWIRE_DB_DRIVER"); d {
	case "", "sqlite":
	case "postgres":
		if os.Getenv("TRENDWIRE_DB_DSN") == "" {
			problems = append(problems, "TRENDWIRE_DB_DSN is required for postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("TRENDWIRE_DB_DRIVER %q is not sqlite or postgres", d))
	}

	if len(problems) > 0 {
		fmt.Println("\nProblems:")
		for _, p := range problems {
			fmt.Printf("- %s\n", p)
		}
		os.Exit(1)
	}
	fmt.Println("\nEnvironment looks good.")
}
