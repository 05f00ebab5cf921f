package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutAPI struct {
	got  *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.got = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.body = string(b)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Put_Success(t *testing.T) {
	api := &fakePutAPI{}
	s := newS3Store(api, S3Options{Bucket: "media", Region: "ap-south-1"})

	url, err := s.Put(context.Background(), "/avatars/a.png", strings.NewReader("png"), 3, "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "https://media.s3.ap-south-1.amazonaws.com/avatars/a.png" {
		t.Fatalf("url = %q", url)
	}
	if aws.ToString(api.got.Bucket) != "media" || aws.ToString(api.got.Key) != "avatars/a.png" {
		t.Fatalf("bucket/key = %q/%q", aws.ToString(api.got.Bucket), aws.ToString(api.got.Key))
	}
	if aws.ToString(api.got.ContentType) != "image/png" {
		t.Fatalf("content type = %q", aws.ToString(api.got.ContentType))
	}
	if aws.ToInt64(api.got.ContentLength) != 3 || api.body != "png" {
		t.Fatalf("length=%d body=%q", aws.ToInt64(api.got.ContentLength), api.body)
	}
	if aws.ToString(api.got.CacheControl) == "" {
		t.Fatalf("cache control not set")
	}
}

func TestS3Store_Put_DefaultsContentType(t *testing.T) {
	api := &fakePutAPI{}
	s := newS3Store(api, S3Options{Bucket: "b"})
	if _, err := s.Put(context.Background(), "k", strings.NewReader("x"), -1, ""); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if aws.ToString(api.got.ContentType) != "application/octet-stream" {
		t.Fatalf("content type = %q", aws.ToString(api.got.ContentType))
	}
	if api.got.ContentLength != nil {
		t.Fatalf("unknown size should leave ContentLength nil")
	}
}

func TestS3Store_Put_Errors(t *testing.T) {
	s := newS3Store(&fakePutAPI{}, S3Options{Bucket: "b"})
	if _, err := s.Put(context.Background(), "  /", strings.NewReader(""), 0, ""); err == nil {
		t.Fatalf("expected error for empty key")
	}

	boom := errors.New("boom")
	s = newS3Store(&fakePutAPI{err: boom}, S3Options{Bucket: "b"})
	_, err := s.Put(context.Background(), "k", strings.NewReader("x"), 1, "text/plain")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestS3Store_URL(t *testing.T) {
	cases := []struct {
		name string
		opts S3Options
		want string
	}{
		{"public base", S3Options{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"}, "https://cdn.example.com/x/y.png"},
		{"custom endpoint", S3Options{Bucket: "b", Endpoint: "http://localhost:9000"}, "http://localhost:9000/b/x/y.png"},
		{"no region", S3Options{Bucket: "b"}, "https://b.s3.amazonaws.com/x/y.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newS3Store(&fakePutAPI{}, tc.opts)
			if got := s.URL("x/y.png"); got != tc.want {
				t.Fatalf("URL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), S3Options{}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}
