// searchctl is a command-line client for a running ultrasearch server.
//
// Usage:
//
//	searchctl [-addr http://localhost:8080] search <query> [flags]
//	searchctl [-addr ...] suggest <prefix>
//	searchctl [-addr ...] stats
//	searchctl [-addr ...] export [-o file]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	var err error
	switch args[0] {
	case "search":
		err = runSearch(client, *addr, args[1:])
	case "suggest":
		err = runSuggest(client, *addr, args[1:])
	case "stats":
		err = runStats(client, *addr)
	case "export":
		err = runExport(client, *addr, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `searchctl - ultrasearch command-line client

Commands:
  search <query>   run a search (flags: -limit, -type, -fuzzy, -sort, -tags, -language)
  suggest <prefix> fetch query suggestions
  stats            print index statistics
  export           download the index snapshot (flag: -o <file>)

Flags:
`)
	flag.PrintDefaults()
}

func runSearch(client *http.Client, addr string, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	limit := fs.Int("limit", 0, "maximum results")
	docType := fs.String("type", "", "document type filter")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching")
	sortBy := fs.String("sort", "", "sort order (relevance, date, size, alphabetical)")
	tags := fs.String("tags", "", "comma-separated tag filter")
	language := fs.String("language", "", "comma-separated language filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("search: query argument required")
	}

	params := url.Values{}
	params.Set("q", fs.Arg(0))
	if *limit > 0 {
		params.Set("maxResults", strconv.Itoa(*limit))
	}
	if *docType != "" {
		params.Set("type", *docType)
	}
	if *fuzzy {
		params.Set("fuzzy", "true")
	}
	if *sortBy != "" {
		params.Set("sortBy", *sortBy)
	}
	if *tags != "" {
		params.Set("tags", *tags)
	}
	if *language != "" {
		params.Set("language", *language)
	}
	return fetchAndPrint(client, addr+"/api/v1/search?"+params.Encode())
}

func runSuggest(client *http.Client, addr string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("suggest: prefix argument required")
	}
	params := url.Values{}
	params.Set("q", args[0])
	return fetchAndPrint(client, addr+"/api/v1/suggest?"+params.Encode())
}

func runStats(client *http.Client, addr string) error {
	return fetchAndPrint(client, addr+"/api/v1/stats")
}

func runExport(client *http.Client, addr string, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := client.Get(addr + "/api/v1/index/export")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %s: %s", resp.Status, body)
	}

	dst := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return err
	}
	if *out != "" {
		fmt.Fprintf(os.Stderr, "index exported to %s\n", *out)
	}
	return nil
}

func fetchAndPrint(client *http.Client, target string) error {
	resp, err := client.Get(target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var pretty map[string]any
	if err := json.Unmarshal(body, &pretty); err != nil {
		return fmt.Errorf("server returned %s: %s", resp.Status, body)
	}
	formatted, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(formatted))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
