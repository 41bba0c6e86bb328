package bot

import (
	"encoding/json"

	"github.com/nats-io/nats.go"

	"ytgrab/internal/model"
)

const (
	defaultSubject = "ytgrab.downloads"
)

// Publisher is the part of a NATS connection the client needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

type Client struct {
	nc      Publisher
	subject string
}

func NewClient(nc Publisher, subject string) *Client {
	if subject == "" {
		subject = defaultSubject
	}

	return &Client{
		nc:      nc,
		subject: subject,
	}
}

// Connect dials the NATS server at dsn.
func Connect(dsn string) (*nats.Conn, error) {
	return nats.Connect(dsn, nats.Name("ytgrab"))
}

func (c *Client) SendEvent(event model.Event) error {
	marshal, err := json.Marshal(&event)
	if err != nil {
		return err
	}

	err = c.nc.Publish(c.subject, marshal)
	if err != nil {
		return err
	}

	return nil
}
