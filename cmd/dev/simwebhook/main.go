package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"market22hooks/internal/webhook"
)

func main() {
	var (
		url     = flag.String("url", "", "webhook endpoint url (defaults to http://localhost<HTTP_ADDR>/v1/webhooks/market22)")
		secret  = flag.String("secret", os.Getenv("MARKET22_WEBHOOK_SECRET"), "MARKET22_WEBHOOK_SECRET")
		payload = flag.String("payload", "", "path to json payload file")
		skew    = flag.Duration("skew", 0, "shift the signed timestamp (e.g. -5m to test replay rejection)")
	)
	flag.Parse()

	if *url == "" {
		httpAddr := os.Getenv("HTTP_ADDR")
		if httpAddr == "" {
			httpAddr = ":8081"
		}
		if httpAddr[0] == ':' {
			*url = "http://localhost" + httpAddr + "/v1/webhooks/market22"
		} else {
			*url = "http://" + httpAddr + "/v1/webhooks/market22"
		}
	}

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "missing -secret")
		os.Exit(2)
	}
	if *payload == "" {
		fmt.Fprintln(os.Stderr, "missing -payload")
		os.Exit(2)
	}

	b, err := os.ReadFile(*payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read payload: %v\n", err)
		os.Exit(2)
	}

	ts := strconv.FormatInt(time.Now().Add(*skew).UnixMilli(), 10)
	sig := webhook.Sign(*secret, ts, b)

	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(b))
	if err != nil {
		fmt.Fprintf(os.Stderr, "new request: %v\n", err)
		os.Exit(2)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(webhook.TimestampHeader, ts)
	req.Header.Set(webhook.SignatureHeader, sig)

	c := &http.Client{Timeout: 10 * time.Second}
	resp, err := c.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "post: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d\n%s\n", resp.StatusCode, string(body))
}
