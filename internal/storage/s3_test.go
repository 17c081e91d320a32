package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory bucket. listPageSize forces pagination.
type fakeS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	listPageSize int
	getErr       error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), listPageSize: 1}
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			all = append(all, k)
		}
	}
	// map order is random; sort so the continuation token is stable
	slices.Sort(all)

	start := 0
	if in.ContinuationToken != nil {
		for i, k := range all {
			if k == *in.ContinuationToken {
				start = i
				break
			}
		}
	}
	end := min(start+f.listPageSize, len(all))

	out := &s3.ListObjectsV2Output{}
	for _, k := range all[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(all) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(all[end])
	}
	return out, nil
}

func TestS3Store_Contract(t *testing.T) {
	runStoreContract(t, newS3Store(newFakeS3(), "vault", "loandesk/"))
}

func TestS3Store_KeysStripPrefixAndIgnoreOthers(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	fake.objects["other/x"] = []byte("1")
	s := newS3Store(fake, "vault", "loandesk/")

	require.NoError(t, s.Set(ctx, KeyUsers, []byte("[]")))
	require.NoError(t, s.Set(ctx, KeySessions, []byte("[]")))
	require.NoError(t, s.Set(ctx, KeyApplications, []byte("[]")))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyApplications, KeySessions, KeyUsers}, keys)
	assert.Contains(t, fake.objects, "loandesk/"+KeyUsers)
}

func TestS3Store_GetErrorWrapped(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = errors.New("access denied")
	s := newS3Store(fake, "vault", "")

	_, err := s.Get(context.Background(), "k")
	require.ErrorContains(t, err, "failed to get object[k]")
}
