package rainflow

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	webTimeout = 10 * time.Second
)

type HTTPClient interface {
	Get(string) (*http.Response, error)
}

// Shared HTTP Client
var sharedHTTPClient = &http.Client{
	Timeout: webTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	},
}

// SingleFetchWithClient handles the messy business of the HTTP connection
// and is testable with dependency injection, called by SingleFetch
func SingleFetchWithClient(url string, c HTTPClient) (int, []byte, error) {
	resp, err := c.Get(url)
	if err != nil {
		slog.Error("Fetch Error", slog.Any("Error", err))
		return 0, nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Could not read body", slog.Any("Error", err))
		return 0, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("Close Error", slog.Any("Error", err))
			return
		}
	}()

	return resp.StatusCode, body, err
}

// SingleFetch returns the Response Code, raw byte stream body, and error
// This uses a Shared HTTP Client:
// - to reuse existing endpoint connections
// - to avoid stale connections that eat up OS FDs
func SingleFetch(url string) (int, []byte, error) {
	return SingleFetchWithClient(url, sharedHTTPClient)
}

// FetchSeries pulls a remote load series and parses it.
func FetchSeries(url string) ([]float64, error) {
	_, body, err := SingleFetch(url)
	if err != nil {
		return nil, err
	}
	return ParseSeries(bytes.NewReader(body))
}

// ParseSeries streams a newline-delimited load history from the
// reader, skipping whitespace and comments. One value per line;
// a trailing inline comment after the number is tolerated.
func ParseSeries(reader io.Reader) ([]float64, error) {
	var series []float64
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// ignore whitespace and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// cut off any trailing comment
		if pos := strings.IndexAny(line, "#"); pos != -1 {
			line = strings.TrimSpace(line[:pos])
		}

		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			slog.Error("WARNING: Invalid line", slog.String("line", line))
			return nil, fmt.Errorf("invalid sample %q: %w", line, err)
		}
		series = append(series, v)
	}

	if err := scanner.Err(); err != nil {
		slog.Error("Problem scanning input", slog.Any("Error", err))
		return nil, fmt.Errorf("scanning error: %w", err)
	}

	return series, nil
}
