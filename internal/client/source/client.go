package source

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// Client loads target lists from a local file or an http(s) URL.
type Client struct {
	http *resty.Client
}

func NewClient() *Client {
	return &Client{
		http: resty.New(),
	}
}

// Load returns the raw entries of the list, one per non-empty line. Lines
// starting with '#' are comments.
func (c *Client) Load(ctx context.Context, location string) ([]string, error) {
	var (
		body string
		err  error
	)

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		body, err = c.fetch(ctx, location)
	} else {
		body, err = read(location)
	}
	if err != nil {
		return nil, err
	}

	entries := parse(body)

	log.WithFields(log.Fields{
		"location": location,
		"entries":  len(entries),
	}).Debug("url list loaded")

	return entries, nil
}

func (c *Client) fetch(ctx context.Context, location string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(location)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf(
			"fetch url list error status: %d location: %s",
			resp.StatusCode(),
			location,
		)
	}

	return resp.String(), nil
}

func read(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read url list: %w", err)
	}

	return string(content), nil
}

func parse(body string) []string {
	var entries []string

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}

	return entries
}
