package main

import (
	"net"
	"net/http"
	"os"
	"time"

	"github.com/lyonms2/avatar-arena/internal/constants"
)

func main() {
	port := "8080"
	if addr := os.Getenv("ARENA_ADDR"); addr != "" {
		if _, p, err := net.SplitHostPort(addr); err == nil && p != "" {
			port = p
		}
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://127.0.0.1:" + port + constants.RouteHealth)
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
	os.Exit(0)
}
