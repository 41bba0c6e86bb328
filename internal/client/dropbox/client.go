package dropbox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/sharing"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"ytgrab/internal/client/dropbox/model"
)

const (
	chunkSize = 8 * 1024 * 1024
	tokenURL  = "https://api.dropbox.com/oauth2/token"
)

type Client struct {
	refreshToken string
	appKey       string
	appSecret    string
	basePath     string
	tokenURL     string
	removeLocal  bool
	chunkSize    int
	newSession   func(accessToken string) session
}

func NewClient(
	refreshToken string,
	appKey string,
	appSecret string,
	basePath string,
	removeLocal bool,
) *Client {
	return &Client{
		refreshToken: refreshToken,
		appKey:       appKey,
		appSecret:    appSecret,
		basePath:     basePath,
		tokenURL:     tokenURL,
		removeLocal:  removeLocal,
		chunkSize:    chunkSize,
		newSession:   newSDKSession,
	}
}

// PreparePath turns remotePath into an absolute Dropbox path without
// characters Dropbox rejects.
func PreparePath(remotePath string) string {
	remotePath = strings.TrimSpace(remotePath)
	remotePath = filepath.ToSlash(filepath.Clean(remotePath))
	remotePath = strings.ReplaceAll(remotePath, "../", "")
	if !strings.HasPrefix(remotePath, "/") {
		remotePath = "/" + remotePath
	}
	invalidChars := []string{"<", ">", ":", "\"", "|", "?", "*"}
	for _, char := range invalidChars {
		remotePath = strings.ReplaceAll(remotePath, char, "_")
	}
	return remotePath
}

// UploadFile stores localPath under the configured folder and returns the
// remote path. The local copy is removed afterwards when configured to.
func (c *Client) UploadFile(localPath string) (string, error) {
	remotePath := PreparePath(path.Join(c.basePath, filepath.Base(localPath)))

	logFields := log.Fields{
		"localPath":  localPath,
		"remotePath": remotePath,
	}

	log.WithFields(logFields).Info("uploading start ...")

	if err := c.Upload(localPath, remotePath); err != nil {
		return "", err
	}

	log.WithFields(logFields).Info("uploading end ...")

	if c.removeLocal {
		if err := os.Remove(localPath); err != nil {
			log.WithFields(logFields).Error(err)
		}
	}

	return remotePath, nil
}

// session is the part of the Dropbox upload-session API used by Upload.
type session interface {
	Start() (string, error)
	Append(cursor *files.UploadSessionCursor, last bool, chunk []byte) error
	Finish(cursor *files.UploadSessionCursor, remotePath string) error
}

type sdkSession struct {
	client files.Client
}

func newSDKSession(accessToken string) session {
	return sdkSession{client: files.New(dropbox.Config{Token: accessToken})}
}

func (s sdkSession) Start() (string, error) {
	arg := files.NewUploadSessionStartArg()
	arg.Close = false

	res, err := s.client.UploadSessionStart(arg, nil)
	if err != nil {
		return "", err
	}

	return res.SessionId, nil
}

func (s sdkSession) Append(cursor *files.UploadSessionCursor, last bool, chunk []byte) error {
	arg := files.NewUploadSessionAppendArg(cursor)
	arg.Close = last

	return s.client.UploadSessionAppendV2(arg, bytes.NewReader(chunk))
}

func (s sdkSession) Finish(cursor *files.UploadSessionCursor, remotePath string) error {
	_, err := s.client.UploadSessionFinish(&files.UploadSessionFinishArg{
		Cursor: cursor,
		Commit: files.NewCommitInfo(remotePath),
	}, nil)

	return err
}

// Upload sends localPath in chunks through one upload session.
func (c *Client) Upload(localPath string, remotePath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithField("localPath", localPath).Error(err)
		}
	}()

	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	accessToken, err := c.GetAccessToken()
	if err != nil {
		return err
	}

	sess := c.newSession(accessToken)

	sessionID, err := sess.Start()
	if err != nil {
		return fmt.Errorf("start upload session: %w", err)
	}

	cursor := files.NewUploadSessionCursor(sessionID, 0)
	buffer := make([]byte, c.chunkSize)
	size := uint64(fileInfo.Size())

	for cursor.Offset < size {
		n, err := io.ReadFull(file, buffer)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read file: %w", err)
		}
		if n == 0 {
			break
		}

		last := cursor.Offset+uint64(n) >= size
		if err := sess.Append(cursor, last, buffer[:n]); err != nil {
			return fmt.Errorf("append chunk at %d: %w", cursor.Offset, err)
		}

		cursor.Offset += uint64(n)
	}

	if err := sess.Finish(cursor, remotePath); err != nil {
		return fmt.Errorf("finish upload: %w", err)
	}

	return nil
}

func (c *Client) GetAccessToken() (string, error) {
	var accessToken model.AccessToken

	resp, err := resty.New().
		R().
		SetFormData(map[string]string{
			"refresh_token": c.refreshToken,
			"grant_type":    "refresh_token",
			"client_id":     c.appKey,
			"client_secret": c.appSecret,
		}).
		SetResult(&accessToken).
		Post(c.tokenURL)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf(
			"getAccessToken error status: %d body: %s",
			resp.StatusCode(),
			resp.String(),
		)
	}

	return accessToken.Token, nil
}

// GetSharingLink shares the upload folder and returns its link.
func (c *Client) GetSharingLink() (string, error) {
	accessToken, err := c.GetAccessToken()
	if err != nil {
		return "", err
	}

	client := sharing.New(dropbox.Config{
		Token: accessToken,
	})

	args := sharing.NewCreateSharedLinkWithSettingsArg(PreparePath(c.basePath))
	res, err := client.CreateSharedLinkWithSettings(args)
	if err != nil {
		return "", err
	}

	result, ok := res.(*sharing.FolderLinkMetadata)
	if ok {
		return result.Url, nil
	}

	return "", nil
}
