package sinks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ivannaranjo/gmedia/internal/utils"
)

func TestFileSinkFinalize(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "media.bin")

	sink, err := NewFileSink(outputPath)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	for _, chunk := range []string{"hello ", "world"} {
		if _, err := sink.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	// Nothing at the destination until finalized.
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Error("Destination file must not exist before Close")
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("Expecting %q, got %q", "hello world", string(data))
	}
	if _, err := os.Stat(filepath.Join(dir, utils.TempDirName)); !os.IsNotExist(err) {
		t.Error("Temp directory must be removed after finalize")
	}
}

func TestFileSinkAbort(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "media.bin")

	sink, err := NewFileSink(outputPath)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	if _, err := sink.Write([]byte("partial")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Error("Destination file must not exist after Abort")
	}
	if _, err := os.Stat(filepath.Join(dir, utils.TempDirName)); !os.IsNotExist(err) {
		t.Error("Temp directory must be cleaned up after Abort")
	}
}

func TestParseS3Path(t *testing.T) {
	testCases := []struct {
		g       string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://bucket/key", "bucket", "key", false},
		{"s3://bucket/nested/key.bin", "bucket", "nested/key.bin", false},
		{"s3://bucket", "", "", true},
		{"s3://bucket/", "", "", true},
		{"/local/path", "", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.g, func(t *testing.T) {
			bucket, key, err := ParseS3Path(tc.g)
			if (err != nil) != tc.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tc.wantErr)
			}
			if bucket != tc.bucket || key != tc.key {
				t.Errorf("Expecting %q/%q, got %q/%q", tc.bucket, tc.key, bucket, key)
			}
		})
	}
}
