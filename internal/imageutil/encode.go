package imageutil

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EncodeDataURI reads an image file and returns it as a base64 data URI
// suitable for embedding in a chat-completion image part. The MIME type is
// chosen from the file extension; anything that is not JPEG is sent as PNG,
// which is what Simulink screenshots are.
func EncodeDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image '%s': %w", path, err)
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType(path), base64.StdEncoding.EncodeToString(data)), nil
}

func mimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
