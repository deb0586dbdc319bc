package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/courtside-app/courtside/internal/scrape"
)

// Simple test utility to verify the site fetch and table location work
// against the live association site. Pass -render as the first argument to
// exercise the headless browser path.
func main() {
	log.Println("Testing League Site Scraper")
	log.Println("===========================")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	urls := []string{
		"https://ibasketball.co.il/team/5458-%D7%91%D7%A0%D7%99-%D7%99%D7%94%D7%95%D7%93%D7%94-%D7%AA%D7%9C-%D7%90%D7%91%D7%99%D7%91/",
		"https://ibba.one.co.il/team/5458-%D7%91%D7%A0%D7%99-%D7%99%D7%94%D7%95%D7%93%D7%94-%D7%AA%D7%9C-%D7%90%D7%91%D7%99%D7%91/",
	}

	var fetcher scrape.HTMLFetcher
	if len(os.Args) > 1 && os.Args[1] == "-render" {
		log.Println("Using headless browser fetcher")
		rendered := scrape.NewRenderedFetcher(45 * time.Second)
		defer rendered.Close()
		fetcher = rendered
	} else {
		fetcher = scrape.NewFetcher(15*time.Second, "https://ibasketball.co.il/")
	}

	log.Println("\n1. Fetching team page...")
	html, err := fetcher.Fetch(ctx, urls)
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}
	log.Printf("✓ Got %d bytes", len(html))

	doc, err := scrape.ParseHTML(html)
	if err != nil {
		log.Fatalf("Parse failed: %v", err)
	}

	locator := scrape.NewLocator("בני יהודה")

	for _, kind := range []scrape.Kind{scrape.KindStandings, scrape.KindSchedule} {
		log.Printf("\n2. Locating %s table...", kind)
		table, err := locator.Locate(doc, kind)
		if err != nil {
			log.Printf("❌ %v", err)
			continue
		}

		rows := scrape.ExtractRows(table)
		log.Printf("✓ Found table with %d rows", len(rows))
		for i, row := range rows {
			if i >= 5 {
				fmt.Println("  ...")
				break
			}
			fmt.Printf("  %v\n", row)
		}
	}
}
