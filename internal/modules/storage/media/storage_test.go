package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/embracingthegirlchild/site/internal/config"
)

func TestIsRemote(t *testing.T) {
	cases := map[string]bool{
		"https://res.cloudinary.com/x/image.jpg": true,
		"HTTP://example.org/a.png":               true,
		"post_images/a.png":                      false,
		"/media/post_images/a.png":               false,
		"":                                       false,
	}
	for ref, want := range cases {
		if got := IsRemote(ref); got != want {
			t.Fatalf("IsRemote(%q) = %v, want %v", ref, got, want)
		}
	}
}

func TestURL(t *testing.T) {
	if got := URL("post_images/a.png"); got != "/media/post_images/a.png" {
		t.Fatalf("URL = %q", got)
	}
	if got := URL("https://cdn.example.org/a.png"); got != "https://cdn.example.org/a.png" {
		t.Fatalf("URL = %q", got)
	}
	if got := URL("../../etc/passwd"); got != "/media/etc/passwd" {
		t.Fatalf("URL = %q", got)
	}
}

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"girl child.jpg":     "girl_child.jpg",
		"../../secret.png":   "secret.png",
		`C:\photos\café.jpg`: "caf.jpg",
		"...":                "upload.dat",
	}
	for in, want := range cases {
		if got := SafeFileName(in); got != want {
			t.Fatalf("SafeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLocalSaveAddsSuffixOnCollision(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(root)
	ctx := context.Background()

	first, err := store.Save(ctx, Object{Key: "post_images/girl.jpg", Data: []byte("one")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first != "post_images/girl.jpg" {
		t.Fatalf("first ref = %q", first)
	}

	second, err := store.Save(ctx, Object{Key: "post_images/girl.jpg", Data: []byte("two")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !regexp.MustCompile(`^post_images/girl_[a-zA-Z0-9]{7}\.jpg$`).MatchString(second) {
		t.Fatalf("second ref = %q", second)
	}

	data, err := os.ReadFile(filepath.Join(root, "post_images", "girl.jpg"))
	if err != nil || string(data) != "one" {
		t.Fatalf("original file changed: %q %v", data, err)
	}
}

func TestLocalSaveOverwrite(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(root)
	ctx := context.Background()

	for _, body := range []string{"one", "two"} {
		ref, err := store.Save(ctx, Object{Key: "post_images/a.png", Data: []byte(body), Overwrite: true})
		if err != nil || ref != "post_images/a.png" {
			t.Fatalf("Save = %q, %v", ref, err)
		}
	}
	data, _ := os.ReadFile(filepath.Join(root, "post_images", "a.png"))
	if string(data) != "two" {
		t.Fatalf("content = %q", data)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	return &s3.PutObjectOutput{}, nil
}

func TestS3SaveUsesPrefixAndPublicURL(t *testing.T) {
	api := &fakeS3{}
	store := &S3{
		client: api,
		cfg:    config.S3Config{Bucket: "media", Region: "eu-west-1"},
		prefix: "embracingthegirlchild",
	}
	ref, err := store.Save(context.Background(), Object{
		Key: "post_images/a.png", Data: []byte("x"), ContentType: "image/png", Overwrite: true,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := aws.ToString(api.input.Key); got != "embracingthegirlchild/post_images/a.png" {
		t.Fatalf("key = %q", got)
	}
	if ref != "https://media.s3.eu-west-1.amazonaws.com/embracingthegirlchild/post_images/a.png" {
		t.Fatalf("ref = %q", ref)
	}
}

func TestNewReportsMissingCredentials(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Media.Cloudinary.CloudName = "demo"
	_, err := New(cfg, config.BackendCloudinary)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestDetectContentType(t *testing.T) {
	if got := DetectContentType("a.png", nil); got != "image/png" {
		t.Fatalf("content type = %q", got)
	}
	if got := DetectContentType("noext", []byte("\xff\xd8\xff\xe0")); got != "image/jpeg" {
		t.Fatalf("content type = %q", got)
	}
}
