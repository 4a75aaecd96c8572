package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/embracingthegirlchild/site/internal/config"
)

// Cloudinary uploads images to a Cloudinary account. The object key maps to
// folder and public id; the extension is left to Cloudinary.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	prefix string
}

func NewCloudinary(cfg config.CloudinaryConfig, prefix string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, prefix: prefix}, nil
}

func (c *Cloudinary) Name() string { return config.BackendCloudinary }

func (c *Cloudinary) Save(ctx context.Context, obj Object) (string, error) {
	key := prefixed(c.prefix, obj.Key)
	folder, file := path.Split(key)
	publicID := strings.TrimSuffix(file, path.Ext(file))
	if publicID == "" {
		return "", errors.New("empty object key")
	}

	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(obj.Data), uploader.UploadParams{
		PublicID:       publicID,
		Folder:         strings.TrimSuffix(folder, "/"),
		Overwrite:      api.Bool(obj.Overwrite),
		UniqueFilename: api.Bool(!obj.Overwrite),
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload %s: %w", key, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload %s: %s", key, resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload %s: empty url in response", key)
	}
	return resp.SecureURL, nil
}
