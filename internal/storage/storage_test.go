package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskService_PutURLDelete(t *testing.T) {
	root := t.TempDir()
	svc := NewDiskService(root, "/media/")
	ctx := context.Background()

	ref, err := svc.Put(ctx, "avatars/7/pic.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	require.Equal(t, "avatars/7/pic.png", ref)

	data, err := os.ReadFile(filepath.Join(root, "avatars", "7", "pic.png"))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))

	u, err := svc.URL(ctx, ref, 0)
	require.NoError(t, err)
	require.Equal(t, "/media/avatars/7/pic.png", u)

	require.NoError(t, svc.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(root, "avatars", "7", "pic.png"))
	require.True(t, os.IsNotExist(err))

	// already gone
	require.NoError(t, svc.Delete(ctx, ref))
}

func TestDiskService_KeyCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	svc := NewDiskService(root, "/media")

	ref, err := svc.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"), "")
	require.NoError(t, err)
	require.Equal(t, "etc/passwd", ref)
	_, err = os.Stat(filepath.Join(root, "etc", "passwd"))
	require.NoError(t, err)

	_, err = svc.Put(context.Background(), "  ", strings.NewReader("x"), "")
	require.Error(t, err)
}

func TestParseS3Ref(t *testing.T) {
	tests := []struct {
		ref    string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://media/avatars/1.png", "media", "avatars/1.png", true},
		{"s3://media//avatars/1.png", "media", "avatars/1.png", true},
		{"s3://media", "", "", false},
		{"s3:///key", "", "", false},
		{"avatars/1.png", "", "", false},
	}
	for _, tc := range tests {
		bucket, key, err := parseS3Ref(tc.ref)
		if !tc.ok {
			require.Error(t, err, tc.ref)
			continue
		}
		require.NoError(t, err, tc.ref)
		require.Equal(t, tc.bucket, bucket)
		require.Equal(t, tc.key, key)
	}
}
