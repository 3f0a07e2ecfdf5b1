// Command loadtest fires concurrent bookings at one event and checks that no
// day admitted more tickets than it had left.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"festpass/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"
)

type options struct {
	BaseURL     string
	EventID     string
	Dates       []string
	BookingType string
	Quantity    int
	Requests    int
	Concurrency int
	Timeout     time.Duration
}

type outcome struct {
	Status   int
	Code     string
	Latency  time.Duration
	Err      error
	Quantity int
}

type Report struct {
	Total     int
	Accepted  int
	SoldOut   int
	Failed    int
	ByCode    map[string]int
	Before    map[string]int
	After     map[string]int
	Admitted  map[string]int
	Oversold  []string
	P50, P99  time.Duration
	WallClock time.Duration
}

func main() {
	_ = godotenv.Load()
	log := logger.GetDefault().WithComponent("loadtest")

	opts := options{}
	var dates string
	flag.StringVar(&opts.BaseURL, "base-url", envOr("LOADTEST_BASE_URL", "http://localhost:8080/api/v1"), "API base URL")
	flag.StringVar(&opts.EventID, "event", os.Getenv("LOADTEST_EVENT_ID"), "event id to book")
	flag.StringVar(&dates, "dates", "", "comma separated YYYY-MM-DD dates for DAILY bookings")
	flag.StringVar(&opts.BookingType, "type", "DAILY", "DAILY or ALL_DAY")
	flag.IntVar(&opts.Quantity, "quantity", 1, "tickets per booking")
	flag.IntVar(&opts.Requests, "requests", 500, "total booking attempts")
	flag.IntVar(&opts.Concurrency, "concurrency", 50, "parallel clients")
	flag.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "per request timeout")
	flag.Parse()

	if opts.EventID == "" {
		log.Error("an event id is required (-event or LOADTEST_EVENT_ID)")
		os.Exit(2)
	}
	if dates != "" {
		opts.Dates = strings.Split(dates, ",")
	}

	client := &http.Client{Timeout: opts.Timeout}
	ctx := context.Background()

	before, err := remainingByDay(ctx, client, opts)
	if err != nil {
		log.Error("failed to read availability", slog.Any("error", err))
		os.Exit(1)
	}

	report := run(ctx, client, opts, before)

	after, err := remainingByDay(ctx, client, opts)
	if err != nil {
		log.Warn("failed to read availability after run", slog.Any("error", err))
	}
	report.After = after
	report.print()

	if len(report.Oversold) > 0 {
		os.Exit(1)
	}
}

func run(ctx context.Context, client *http.Client, opts options, before map[string]int) *Report {
	jobs := make(chan int)
	results := make(chan outcome, opts.Requests)

	var wg sync.WaitGroup
	for w := 0; w < opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- book(ctx, client, opts, i)
			}
		}()
	}

	started := time.Now()
	for i := 0; i < opts.Requests; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)

	report := &Report{
		ByCode:    map[string]int{},
		Before:    before,
		Admitted:  map[string]int{},
		WallClock: time.Since(started),
	}

	var latencies []time.Duration
	for r := range results {
		report.Total++
		latencies = append(latencies, r.Latency)
		switch {
		case r.Err != nil:
			report.Failed++
			report.ByCode["TRANSPORT"]++
		case r.Status == http.StatusOK:
			report.Accepted++
			for _, d := range bookedDays(opts, before) {
				report.Admitted[d] += r.Quantity
			}
		default:
			if r.Code == "SOLD_OUT" {
				report.SoldOut++
			}
			report.ByCode[r.Code]++
		}
	}

	for day, admitted := range report.Admitted {
		if admitted > before[day] {
			report.Oversold = append(report.Oversold, day)
		}
	}
	sort.Strings(report.Oversold)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	if n := len(latencies); n > 0 {
		report.P50 = latencies[n/2]
		report.P99 = latencies[(n*99)/100]
	}
	return report
}

func book(ctx context.Context, client *http.Client, opts options, i int) outcome {
	body, _ := json.Marshal(map[string]interface{}{
		"eventId": opts.EventID,
		"user": map[string]string{
			"name":  fmt.Sprintf("Load Tester %d", i),
			"email": fmt.Sprintf("load+%d@festpass.test", i),
		},
		"quantity":      opts.Quantity,
		"bookingType":   opts.BookingType,
		"selectedDates": opts.Dates,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.BaseURL+"/bookings/initiate", bytes.NewReader(body))
	if err != nil {
		return outcome{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return outcome{Err: err, Latency: latency}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcome{Err: err, Latency: latency}
	}

	return outcome{
		Status:   resp.StatusCode,
		Code:     gjson.GetBytes(raw, "code").String(),
		Latency:  latency,
		Quantity: opts.Quantity,
	}
}

// remainingByDay reads the public availability endpoint.
func remainingByDay(ctx context.Context, client *http.Client, opts options) (map[string]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.BaseURL+"/events/"+opts.EventID+"/availability", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("availability returned %d: %s", resp.StatusCode, gjson.GetBytes(raw, "message").String())
	}

	out := map[string]int{}
	gjson.GetBytes(raw, "data.days").ForEach(func(_, day gjson.Result) bool {
		out[day.Get("date").String()] = int(day.Get("remaining").Int())
		return true
	})
	return out, nil
}

func bookedDays(opts options, span map[string]int) []string {
	if strings.EqualFold(opts.BookingType, "ALL_DAY") {
		days := make([]string, 0, len(span))
		for d := range span {
			days = append(days, d)
		}
		return days
	}
	return opts.Dates
}

func (r *Report) print() {
	fmt.Println("Booking load test")
	fmt.Println("=================")
	fmt.Printf("Requests:   %d in %s\n", r.Total, r.WallClock.Round(time.Millisecond))
	fmt.Printf("Accepted:   %d\n", r.Accepted)
	fmt.Printf("Sold out:   %d\n", r.SoldOut)
	fmt.Printf("Transport:  %d\n", r.Failed)
	fmt.Printf("Latency:    p50 %s, p99 %s\n", r.P50.Round(time.Millisecond), r.P99.Round(time.Millisecond))

	codes := make([]string, 0, len(r.ByCode))
	for c := range r.ByCode {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, c := range codes {
		fmt.Printf("  %-24s %d\n", c, r.ByCode[c])
	}

	days := make([]string, 0, len(r.Before))
	for d := range r.Before {
		days = append(days, d)
	}
	sort.Strings(days)
	fmt.Println("\nDay         before  admitted  after")
	for _, d := range days {
		fmt.Printf("%s  %6d  %8d  %5d\n", d, r.Before[d], r.Admitted[d], r.After[d])
	}

	if len(r.Oversold) > 0 {
		fmt.Printf("\nOVERSOLD on %s\n", strings.Join(r.Oversold, ", "))
		return
	}
	fmt.Println("\nNo day was oversold.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
