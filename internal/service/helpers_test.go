package service_test

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"sync"
	"time"

	"ossgate/internal/config"
	"ossgate/internal/service"
)

// fakeClock is a manually advanced clock shared by cache and tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		Provider:  "oss",
		Region:    "oss-cn-hangzhou",
		Bucket:    "house-assets",
		AccessKey: "LTAI-long-lived",
		SecretKey: "long-lived-secret",
	}
}

func testCredentialsConfig() config.CredentialsConfig {
	return config.CredentialsConfig{
		RoleARN:      "acs:ram::1234567890:role/oss-uploader",
		SessionName:  "oss-upload-session",
		Duration:     time.Hour,
		Timeout:      5 * time.Second,
		AllowRead:    true,
		CacheTTL:     55 * time.Minute,
		SafetyMargin: 5 * time.Minute,
	}
}

func testSigningConfig() config.SigningConfig {
	return config.SigningConfig{
		DefaultExpiry:    time.Hour,
		MaxExpiry:        30 * 24 * time.Hour,
		PlaceholderPath:  "real-estate/1754417659021-o6auo17dd.png",
		PlaceholderAsset: "/assets/image/house.jpg",
	}
}

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		AvatarMaxSizeMB:        2,
		PropertyImageMaxSizeMB: 5,
		MaxPropertyImages:      9,
		AvatarPrefix:           "avatars",
		PropertyImagePrefix:    "real-estate",
		SignedURLExpiry:        30 * 24 * time.Hour,
		DefaultOwnerID:         "10001",
	}
}

// createMultipartFile creates a fake multipart file header and content for testing.
func createMultipartFile(filename string, content []byte, contentType string) service.UploadFile {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, _ := writer.CreatePart(h)
	_, _ = part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content) + 1024))
	file, _ := form.File["file"][0].Open()
	return service.UploadFile{File: file, Header: form.File["file"][0]}
}

// jpegContent returns JPEG magic bytes padded to size.
func jpegContent(size int) []byte {
	header := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	if size < len(header) {
		size = len(header)
	}
	return append(header, bytes.Repeat([]byte{0x00}, size-len(header))...)
}

// pngContent returns minimal valid PNG bytes (magic bytes).
func pngContent() []byte {
	// PNG magic bytes: 137 80 78 71 13 10 26 10
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}
