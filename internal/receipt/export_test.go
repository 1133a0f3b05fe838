package receipt

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"family-store/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFile() *model.ReceiptFile {
	return &model.ReceiptFile{
		OrderID:  "ORD-1",
		Filename: Filename("ORD-1"),
		Data:     []byte("png-bytes"),
	}
}

// fakePutter records uploads.
type fakePutter struct {
	err    error
	bucket string
	key    string
	ctype  string
	body   []byte
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = *params.Bucket
	f.key = *params.Key
	f.ctype = *params.ContentType
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

// stubExporter returns a canned result.
type stubExporter struct {
	location string
	err      error
	calls    int
}

func (s *stubExporter) Export(context.Context, *model.ReceiptFile) (string, error) {
	s.calls++
	return s.location, s.err
}

func TestDirExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	exp, err := NewDirExporter(dir, zerolog.Nop())
	require.NoError(t, err)

	path, err := exp.Export(context.Background(), testFile())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "FamilyStore_Receipt_ORD-1.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestDirExporter_CancelledContext(t *testing.T) {
	exp, err := NewDirExporter(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = exp.Export(ctx, testFile())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestS3Exporter_Export(t *testing.T) {
	client := &fakePutter{}
	exp := NewS3Exporter(client, "family", "receipts/", zerolog.Nop())

	location, err := exp.Export(context.Background(), testFile())
	require.NoError(t, err)

	assert.Equal(t, "s3://family/receipts/FamilyStore_Receipt_ORD-1.png", location)
	assert.Equal(t, "family", client.bucket)
	assert.Equal(t, "receipts/FamilyStore_Receipt_ORD-1.png", client.key)
	assert.Equal(t, "image/png", client.ctype)
	assert.Equal(t, []byte("png-bytes"), client.body)
}

func TestS3Exporter_Error(t *testing.T) {
	exp := NewS3Exporter(&fakePutter{err: errors.New("access denied")}, "family", "", zerolog.Nop())

	_, err := exp.Export(context.Background(), testFile())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestFallbackExporter(t *testing.T) {
	tests := []struct {
		name             string
		primary          *stubExporter
		secondary        *stubExporter
		expectedLocation string
		expectError      bool
		secondaryCalls   int
	}{
		{
			name:             "Primary succeeds",
			primary:          &stubExporter{location: "s3://a"},
			secondary:        &stubExporter{location: "/tmp/a"},
			expectedLocation: "s3://a",
		},
		{
			name:             "Primary fails, secondary succeeds",
			primary:          &stubExporter{err: errors.New("boom")},
			secondary:        &stubExporter{location: "/tmp/a"},
			expectedLocation: "/tmp/a",
			secondaryCalls:   1,
		},
		{
			name:           "Both fail",
			primary:        &stubExporter{err: errors.New("boom")},
			secondary:      &stubExporter{err: errors.New("disk")},
			expectError:    true,
			secondaryCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := NewFallbackExporter(tt.primary, tt.secondary, zerolog.Nop())

			location, err := exp.Export(context.Background(), testFile())
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedLocation, location)
			}
			assert.Equal(t, tt.secondaryCalls, tt.secondary.calls)
		})
	}
}

func TestFallbackExporter_NilSides(t *testing.T) {
	secondary := &stubExporter{location: "/tmp/a"}
	location, err := NewFallbackExporter(nil, secondary, zerolog.Nop()).Export(context.Background(), testFile())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a", location)

	_, err = NewFallbackExporter(nil, nil, zerolog.Nop()).Export(context.Background(), testFile())
	assert.Error(t, err)
}
