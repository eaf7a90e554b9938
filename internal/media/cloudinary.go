// Package media uploads and deletes hosted images. The API only ever stores
// the resulting URL; everything else about media handling lives with the
// hosting provider.
package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Uploader is the surface handlers depend on. Tests substitute an in-memory
// implementation.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename, folder string) (string, error)
	Delete(ctx context.Context, url, folder string) error
}

// Cloudinary is a thin client for the Cloudinary upload REST API using
// signed requests. No retries: a failed upload fails the whole request.
type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
	HTTP      *http.Client
}

func NewCloudinary(cloudName, apiKey, apiSecret string) *Cloudinary {
	return &Cloudinary{
		CloudName: cloudName,
		APIKey:    apiKey,
		APISecret: apiSecret,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload posts the file to the image upload endpoint and returns the hosted
// secure URL.
func (cl *Cloudinary) Upload(ctx context.Context, file io.Reader, filename, folder string) (string, error) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := cl.sign("folder=" + folder + "&timestamp=" + ts)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	_ = mw.WriteField("api_key", cl.APIKey)
	_ = mw.WriteField("timestamp", ts)
	_ = mw.WriteField("folder", folder)
	_ = mw.WriteField("signature", sig)
	if err := mw.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", cl.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := cl.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cloudinary upload: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.SecureURL == "" {
		return "", errors.New("cloudinary upload: empty secure_url")
	}
	return out.SecureURL, nil
}

// Delete destroys a previously uploaded asset. The public id is recovered
// from the hosted URL the same way the asset was stored: folder/filename
// without the extension.
func (cl *Cloudinary) Delete(ctx context.Context, url, folder string) error {
	publicID := folder + "/" + publicIDFromURL(url)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := cl.sign("public_id=" + publicID + "&timestamp=" + ts)

	form := "public_id=" + publicID + "&timestamp=" + ts + "&api_key=" + cl.APIKey + "&signature=" + sig
	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/destroy", cl.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := cl.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cloudinary destroy: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (cl *Cloudinary) sign(params string) string {
	sum := sha1.Sum([]byte(params + cl.APISecret))
	return hex.EncodeToString(sum[:])
}

func publicIDFromURL(url string) string {
	last := url
	if i := strings.LastIndex(url, "/"); i >= 0 {
		last = url[i+1:]
	}
	if i := strings.Index(last, "."); i >= 0 {
		last = last[:i]
	}
	return last
}
