// Command drift_check compares every synchronized collection held by the
// dashboard API with the copy held by the remote REST service.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/sma-admin-dashboard/internal/catalog"
)

type record = map[string]interface{}

type drift struct {
	Collection    string
	LocalCount    int
	RemoteCount   int
	OnlyLocal     []int64
	OnlyRemote    []int64
	Changed       []int64
	Pending       int
	Error         error
	DurationLocal time.Duration
}

func (d drift) clean() bool {
	return d.Error == nil && len(d.OnlyLocal) == 0 && len(d.OnlyRemote) == 0 && len(d.Changed) == 0
}

func main() {
	var (
		dashboardBase string
		remoteBase    string
		collections   string
		localOnly     string
		timeout       time.Duration
	)

	flag.StringVar(&dashboardBase, "dashboard-base", "http://localhost:8080/api/v1", "Dashboard API base URL")
	flag.StringVar(&remoteBase, "remote-base", "http://localhost:3001", "Remote REST service base URL")
	flag.StringVar(&collections, "collections", "", "Comma separated collections (default: every synchronized collection)")
	flag.StringVar(&localOnly, "local-only", "attendance,settings", "Collections that never synchronize, skipped by default")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	names := catalog.Names()
	skip := map[string]bool{}
	if collections != "" {
		names = strings.Split(collections, ",")
	} else {
		for _, n := range strings.Split(localOnly, ",") {
			skip[strings.TrimSpace(n)] = true
		}
	}

	client := &http.Client{Timeout: timeout}
	var results []drift
	drifted := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || skip[name] {
			continue
		}
		d := compareCollection(client, dashboardBase, remoteBase, name)
		if !d.clean() {
			drifted++
		}
		results = append(results, d)
	}

	printReport(results)
	fmt.Printf("Collections with drift: %d of %d\n", drifted, len(results))
	if drifted > 0 {
		os.Exit(1)
	}
}

func compareCollection(client *http.Client, dashboardBase, remoteBase, name string) drift {
	d := drift{Collection: name}

	start := time.Now()
	local, pending, err := fetchDashboard(client, dashboardBase, name)
	d.DurationLocal = time.Since(start)
	if err != nil {
		d.Error = fmt.Errorf("dashboard: %w", err)
		return d
	}
	remote, err := fetchRemote(client, remoteBase, name)
	if err != nil {
		d.Error = fmt.Errorf("remote: %w", err)
		return d
	}

	d.LocalCount, d.RemoteCount, d.Pending = len(local), len(remote), pending
	d.OnlyLocal, d.OnlyRemote, d.Changed = diffRecords(local, remote)
	return d
}

func fetchDashboard(client *http.Client, base, name string) ([]record, int, error) {
	body, err := get(client, strings.TrimRight(base, "/")+"/"+name)
	if err != nil {
		return nil, 0, err
	}
	var envelope struct {
		Data []record               `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, 0, err
	}
	pending, _ := envelope.Meta["pending"].(float64)
	return envelope.Data, int(pending), nil
}

func fetchRemote(client *http.Client, base, name string) ([]record, error) {
	body, err := get(client, strings.TrimRight(base, "/")+"/"+name)
	if err != nil {
		return nil, err
	}
	var out []record
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func get(client *http.Client, url string) ([]byte, error) {
	if client == nil {
		return nil, errors.New("nil client")
	}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}
	return body, nil
}

// diffRecords returns ids present only locally, only remotely, and present on
// both sides with different fields.
func diffRecords(local, remote []record) (onlyLocal, onlyRemote, changed []int64) {
	localByID := index(local)
	remoteByID := index(remote)
	for id, l := range localByID {
		r, ok := remoteByID[id]
		if !ok {
			onlyLocal = append(onlyLocal, id)
			continue
		}
		if !reflect.DeepEqual(l, r) {
			changed = append(changed, id)
		}
	}
	for id := range remoteByID {
		if _, ok := localByID[id]; !ok {
			onlyRemote = append(onlyRemote, id)
		}
	}
	sortIDs(onlyLocal)
	sortIDs(onlyRemote)
	sortIDs(changed)
	return onlyLocal, onlyRemote, changed
}

func index(records []record) map[int64]record {
	out := make(map[int64]record, len(records))
	for _, r := range records {
		id, ok := r["id"].(float64)
		if !ok {
			continue
		}
		out[int64(id)] = r
	}
	return out
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func printReport(results []drift) {
	fmt.Println("Sync Drift Report")
	fmt.Println("=================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.clean() {
			status = "DRIFT"
		}
		fmt.Printf("[%s] %s\n", status, res.Collection)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Local: %d (%s, %d pending) | Remote: %d\n", res.LocalCount, res.DurationLocal, res.Pending, res.RemoteCount)
		if !res.clean() {
			fmt.Printf("  Only local: %v | Only remote: %v | Changed: %v\n", res.OnlyLocal, res.OnlyRemote, res.Changed)
		}
	}
}
