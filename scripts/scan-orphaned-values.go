package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Minimal view of the stored character; only the fields the scan needs.
type characterRecord struct {
	ID                string            `json:"id"`
	Items             []json.RawMessage `json:"items"`
	AdvancementValues map[string]any    `json:"advancement_values"`
}

type itemRecord struct {
	ID string `json:"id"`
}

// Scans stored characters for advancement values whose owning item is no
// longer held. These can appear after a crash between the value sweep and
// the item removal; with -fix the orphans are deleted.
func main() {
	fix := flag.Bool("fix", false, "delete orphaned advancement values instead of just reporting them")
	flag.Parse()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning for orphaned advancement values...")

	var scanned, dirty int
	iter := client.Scan(ctx, 0, "character:*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := client.Get(ctx, key).Result()
		if err != nil {
			log.Printf("Failed to read %s: %v", key, err)
			continue
		}

		var char characterRecord
		if err := json.Unmarshal([]byte(raw), &char); err != nil {
			log.Printf("Failed to parse %s: %v", key, err)
			continue
		}
		scanned++

		held := make(map[string]bool, len(char.Items))
		for _, rawItem := range char.Items {
			var item itemRecord
			if err := json.Unmarshal(rawItem, &item); err != nil {
				continue
			}
			held[item.ID] = true
		}

		var orphans []string
		for valueKey := range char.AdvancementValues {
			itemID, _, ok := strings.Cut(valueKey, ".")
			if !ok || held[itemID] {
				continue
			}
			orphans = append(orphans, valueKey)
		}
		if len(orphans) == 0 {
			continue
		}

		dirty++
		fmt.Printf("%s: %d orphaned value(s): %s\n", char.ID, len(orphans), strings.Join(orphans, ", "))

		if !*fix {
			continue
		}
		var full map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &full); err != nil {
			log.Printf("Failed to reparse %s: %v", key, err)
			continue
		}
		values := map[string]json.RawMessage{}
		if rawValues, ok := full["advancement_values"]; ok {
			if err := json.Unmarshal(rawValues, &values); err != nil {
				log.Printf("Failed to parse values for %s: %v", key, err)
				continue
			}
		}
		for _, orphan := range orphans {
			delete(values, orphan)
		}
		cleaned, err := json.Marshal(values)
		if err != nil {
			log.Printf("Failed to encode values for %s: %v", key, err)
			continue
		}
		full["advancement_values"] = cleaned
		updated, err := json.Marshal(full)
		if err != nil {
			log.Printf("Failed to encode %s: %v", key, err)
			continue
		}
		if err := client.Set(ctx, key, updated, 0).Err(); err != nil {
			log.Printf("Failed to write %s: %v", key, err)
			continue
		}
		fmt.Printf("%s: cleaned\n", char.ID)
	}
	if err := iter.Err(); err != nil {
		log.Fatal("Scan failed:", err)
	}

	fmt.Printf("Scanned %d character(s), %d with orphaned values.\n", scanned, dirty)
	if dirty > 0 && !*fix {
		fmt.Println("Re-run with -fix to delete them.")
	}
}
