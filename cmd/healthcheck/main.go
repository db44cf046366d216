package main

import (
	"net/http"
	"os"
	"time"
)

func main() {
	addr := "http://localhost:3000/healthz"
	if v := os.Getenv("XRAY_HEALTHCHECK_URL"); v != "" {
		addr = v
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(addr)
	if err != nil || resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
