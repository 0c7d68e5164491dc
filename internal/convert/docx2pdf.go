// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/engagement-letters/internal/container"
)

// DefaultImage is the container image used when none is configured. It
// reads a .docx on stdin and writes the PDF to stdout.
const DefaultImage = "docx2pdf:latest"

// ContainerConverter prints letters by piping them through a docx2pdf
// container image. It depends on a container.Runtime (docker or podman)
// injected at construction time.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
}

// NewContainerConverter creates a converter that runs image on rt. It
// verifies that the image exists locally before returning.
func NewContainerConverter(ctx context.Context, rt container.Runtime, image string) (*ContainerConverter, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("%s image not available in %s: %w", image, rt.Name(), err)
	}
	return &ContainerConverter{runtime: rt, image: image}, nil
}

// Convert implements Converter.
func (c *ContainerConverter) Convert(ctx context.Context, docxPath, pdfPath string) error {
	in, err := os.Open(docxPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", docxPath, err)
	}
	defer in.Close()

	out, err := os.Create(pdfPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", pdfPath, err)
	}
	if err := c.runtime.Run(ctx, c.image, nil, in, out); err != nil {
		out.Close()
		os.Remove(pdfPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(pdfPath)
		return fmt.Errorf("writing %s: %w", pdfPath, err)
	}
	return nil
}
