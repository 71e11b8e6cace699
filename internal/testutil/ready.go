package testutil

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// WaitForHTTPReady опрашивает url, пока сервер не ответит 200 OK.
// Используется вместо time.Sleep после запуска Serve в горутине.
//
//	go srv.Serve(ctx, ln)
//	if err := testutil.WaitForHTTPReady("http://"+ln.Addr().String()+"/stats", 2*time.Second); err != nil {
//	    t.Fatal(err)
//	}
func WaitForHTTPReady(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %s: %w", url, ctx.Err())
		case <-ticker.C:
			resp, err := client.Get(url)
			if err != nil {
				continue
			}
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
	}
}
