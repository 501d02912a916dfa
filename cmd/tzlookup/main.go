// Command tzlookup resolves a time zone for address parts the same way the
// webhook does, optionally writing it to a CRM contact.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"

	"ghl-timezone-sync/internal/address"
	"ghl-timezone-sync/internal/cache"
	"ghl-timezone-sync/internal/config"
	"ghl-timezone-sync/internal/ghl"
	"ghl-timezone-sync/internal/google"
	"ghl-timezone-sync/internal/timezone"
	"ghl-timezone-sync/internal/tzsync"
)

func main() {
	var parts address.Parts
	flag.StringVar(&parts.Address, "address", "", "street address")
	flag.StringVar(&parts.City, "city", "", "city")
	flag.StringVar(&parts.State, "state", "", "state code or name")
	flag.StringVar(&parts.PostalCode, "zip", "", "postal code")
	contactID := flag.String("contact", "", "contact id to update (requires -update)")
	update := flag.Bool("update", false, "write the resolved zone to the contact")
	flag.Parse()

	if parts.Empty() {
		log.Fatal("at least one of -address, -city, -state, -zip is required")
	}
	if *update && *contactID == "" {
		log.Fatal("-update requires -contact")
	}

	cfg := config.LoadConfig()
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	googleClient := google.NewClient(cfg.GoogleAPIKey, cfg.GoogleBaseURL, cfg.HTTPTimeout, httpClient)
	crm := ghl.NewClient(cfg, cache.NewFieldIDCache(), httpClient)

	var offline tzsync.OfflineResolver
	if cfg.OfflineTZLookup {
		offline = timezone.Offline{}
	}
	svc := tzsync.NewService(googleClient, googleClient, offline, crm, crm)

	ctx := context.Background()
	var (
		result *tzsync.Result
		err    error
	)
	if *update {
		result, err = svc.Sync(ctx, *contactID, parts)
	} else {
		result, err = svc.Resolve(ctx, parts)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(result); encErr != nil {
		log.Printf("Error encoding result: %v", encErr)
	}
	if err != nil {
		log.Fatalf("Lookup failed: %v", err)
	}
}
