//go:build ignore

// Command generate_blessings writes sample gzip blessing lists for
// BLESSING_FILES. Run with: go run scripts/generate_blessings.go
package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

func main() {
	dataDir := "data/blessings"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	lists := map[string][]string{
		"morning.gz": {
			"早安！願熱騰騰的早餐帶給您滿滿的元氣。",
			"新的一天，從一份用心準備的早餐開始。",
			"願今天的每一口，都是幸福的味道。",
		},
		"family.gz": {
			"一家人一起吃飯，就是最簡單的幸福。",
			"謝謝您為家人準備的每一份心意。",
			"願這份簡單的選擇，帶給您一整天的好心情。",
		},
	}

	for filename, lines := range lists {
		path := filepath.Join(dataDir, filename)
		if err := writeGzip(path, lines); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		fmt.Printf("Created %s with %d blessings\n", path, len(lines))
	}

	fmt.Println("\nSet BLESSING_FILES=data/blessings/morning.gz,data/blessings/family.gz to use them.")
}

func writeGzip(path string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	for _, line := range lines {
		if _, err := fmt.Fprintln(gz, line); err != nil {
			return err
		}
	}
	return gz.Close()
}
