package main

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"go-easyapply-automation/internal/browser"
	"go-easyapply-automation/internal/config"
)

// Checks that the saved LinkedIn session cookie is present and not expired.
func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	path := filepath.Join(cfg.CookiesPath, "cookies-linkedin.json")
	fmt.Printf("🍪 Loading cookies from %s\n", path)

	cookies, err := browser.LoadCookies(path)
	if err != nil {
		log.Fatalf("Failed to load cookies: %v", err)
	}
	fmt.Printf("✅ Loaded %d cookies\n", len(cookies))

	for _, c := range cookies {
		if c.Name != "li_at" {
			continue
		}
		if c.Expires == nil || *c.Expires <= 0 {
			fmt.Println("li_at is a session cookie (no expiry)")
			return
		}
		expires := time.Unix(int64(*c.Expires), 0)
		if time.Now().After(expires) {
			log.Fatalf("❌ li_at expired at %s, sign in again", expires.Format(time.DateTime))
		}
		fmt.Printf("li_at valid until %s\n", expires.Format(time.DateTime))
		return
	}
	log.Fatal("❌ li_at cookie not found, the next run will sign in with credentials")
}
