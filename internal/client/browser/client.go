package browser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	uc "github.com/Davincible/chromedp-undetected"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

const (
	homeURL        = "https://www.youtube.com"
	redirectSleep  = 3 * time.Second
	refreshTimeout = 2 * time.Minute
)

// Client exports the cookies of a logged-in browser profile so yt-dlp can
// reuse the session.
type Client struct {
	userDataDir string
}

func NewClient(userDataDir string) *Client {
	return &Client{
		userDataDir: userDataDir,
	}
}

// RefreshCookies opens the site with the profile and writes its cookies to
// path in the Netscape format.
func (c *Client) RefreshCookies(parent context.Context, path string) error {
	ctx, cancel, err := uc.New(uc.NewConfig(
		uc.WithNoSandbox(true),
		uc.WithUserDataDir(c.userDataDir),
	))
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, refreshTimeout)
	defer cancelTimeout()

	go func() {
		select {
		case <-parent.Done():
			cancelTimeout()
		case <-ctx.Done():
		}
	}()

	log.WithFields(log.Fields{
		"userDataDir": c.userDataDir,
		"path":        path,
	}).Info("refreshing cookies from browser profile")

	err = chromedp.Run(
		ctx,
		chromedp.Navigate(homeURL),
		chromedp.Sleep(redirectSleep),
		chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := network.GetCookies().Do(ctx)
			if err != nil {
				return err
			}

			return os.WriteFile(path, NetscapeCookies(cookies), 0600)
		}),
	)
	if err != nil {
		return fmt.Errorf("export cookies: %w", err)
	}

	return nil
}

// NetscapeCookies renders cookies in the cookies.txt format curl and yt-dlp read.
func NetscapeCookies(cookies []*network.Cookie) []byte {
	var buffer bytes.Buffer

	buffer.WriteString("# Netscape HTTP Cookie File\n")
	buffer.WriteString("# http://curl.haxx.se/rfc/cookie_spec.html\n")
	buffer.WriteString("# This is a generated file! Do not edit.\n\n")

	boolToString := func(value bool) string {
		if value {
			return "TRUE"
		}
		return "FALSE"
	}

	for _, c := range cookies {
		if c == nil || c.Domain == "" {
			continue
		}

		expires := int64(0)
		if !c.Session && c.Expires > 0 {
			expires = int64(c.Expires)
		}

		buffer.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.Domain,
			boolToString(c.Domain[0] == '.'),
			c.Path,
			boolToString(c.Secure),
			expires,
			c.Name,
			c.Value,
		))
	}

	return buffer.Bytes()
}
